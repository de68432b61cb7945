package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// UnavailableError means no response was received from the backend:
// connection refused, DNS failure, timeout or an unreadable body.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("inference backend unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// RejectedError means the backend answered with a non-2xx status.
type RejectedError struct {
	StatusCode int
	Body       []byte
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("inference backend responded with status %d", e.StatusCode)
}

// Details returns the backend body as raw JSON when it is valid JSON and as
// a plain string otherwise.
func (e *RejectedError) Details() any {
	if len(e.Body) == 0 {
		return e.Error()
	}

	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}

	return string(e.Body)
}
