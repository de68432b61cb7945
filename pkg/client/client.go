// Package client talks to the VeriScan relay over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/veriscan-ai/veriscan/internal/types"
)

const (
	imageField       = "image"
	defaultTimeout   = 90 * time.Second
	maxResponseBytes = 4 << 20

	// Shown when the relay gives no usable error message.
	GenericFailureMessage = "Detection failed"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// APIError is returned for any non-2xx relay response.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	apiURL     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New returns a client for the relay detect endpoint, for example
// http://localhost:5000/api/detect.
func New(apiURL string, opts ...Option) *Client {
	c := &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Detect uploads one image and decodes the verdict.
func (c *Client) Detect(ctx context.Context, filename, contentType string, content []byte) (*types.DetectionResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, imageField, quoteEscaper.Replace(filename)))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, payload)
	}

	result := &types.DetectionResult{}
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, fmt.Errorf("failed to decode detection result: %w", err)
	}

	return result, nil
}

// Health checks the relay's /health endpoint, resolved relative to the
// detect URL (.../api/detect -> .../health).
func (c *Client) Health(ctx context.Context) error {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	healthURL := base.ResolveReference(&url.URL{Path: "../health"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var health types.HealthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<10)).Decode(&health); err != nil || resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: "relay is unhealthy"}
	}
	if health.Status != types.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("relay reported status %q", health.Status)}
	}

	return nil
}

func newAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: GenericFailureMessage}

	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		apiErr.Details = body.Details
	}

	return apiErr
}
