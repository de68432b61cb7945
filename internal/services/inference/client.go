package inference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/veriscan-ai/veriscan/internal/config"
	"github.com/veriscan-ai/veriscan/internal/types"
	"github.com/veriscan-ai/veriscan/internal/utils/hashutil"

	"go.uber.org/zap"
)

const (
	ImageField      = "image"
	RequestIDHeader = "X-Request-ID"

	maxResponseSize = 16 << 20
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg *config.InferenceConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("inference"),
	}
}

func (c *Client) URL() string {
	return c.url
}

// Detect forwards upload to the backend as a multipart form and returns the
// backend's JSON body untouched. Exactly one request is made; failures are
// reported as *UnavailableError or *RejectedError.
func (c *Client) Detect(ctx context.Context, upload *types.Upload, requestID string) ([]byte, error) {
	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("filename", upload.Filename),
		zap.Int64("size", upload.Size()),
		zap.String("fingerprint", hashutil.Fingerprint(upload.Content)),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("inference request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := readLimited(resp.Body, maxResponseSize)
	if err != nil {
		log.Warn("failed to read inference response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &UnavailableError{Err: err}
	}

	log.Info("inference request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Body: payload}
	}

	return payload, nil
}

// CheckHealth probes the backend's /health endpoint, which sits next to the
// detect endpoint (http://host/detect -> http://host/health).
func (c *Client) CheckHealth(ctx context.Context) error {
	healthURL, err := siblingURL(c.url, "health")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))

	if resp.StatusCode != http.StatusOK {
		return &RejectedError{StatusCode: resp.StatusCode}
	}

	return nil
}

func encodeUpload(upload *types.Upload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename := upload.Filename
	if filename == "" {
		filename = ImageField
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		ImageField, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}

	if _, err := part.Write(upload.Content); err != nil {
		return nil, "", fmt.Errorf("copy image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}

	return data, nil
}

func siblingURL(raw, name string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid inference url: %w", err)
	}

	u.Path = path.Join(path.Dir(u.Path), name)
	u.RawQuery = ""
	return u.String(), nil
}
