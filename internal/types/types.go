package types

import "encoding/json"

const (
	VerdictReal        = "Real"
	VerdictAIGenerated = "AI-Generated"
)

const (
	StatusOK = "ok"
)

const (
	ErrNoImageUploaded      = "No image uploaded"
	ErrImageTooLarge        = "Image exceeds the 10 MiB upload limit"
	ErrUnsupportedImageType = "Unsupported image type"
	ErrInferenceFailed      = "Model inference failed"
)

// DetectionResult is the shape the inference backend is expected to return.
// The relay itself never decodes it; clients do.
type DetectionResult struct {
	Verdict    string          `json:"verdict"`
	Confidence float64         `json:"confidence"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

func (r DetectionResult) IsReal() bool {
	return r.Verdict == VerdictReal
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Upload is a single in-memory image received by the relay.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (u *Upload) Size() int64 {
	return int64(len(u.Content))
}
