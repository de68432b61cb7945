package cmd

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veriscan-ai/veriscan/internal/app"
	"github.com/veriscan-ai/veriscan/internal/config"
	"github.com/veriscan-ai/veriscan/internal/server"
	"github.com/veriscan-ai/veriscan/internal/types"
	"github.com/veriscan-ai/veriscan/internal/ui"
	"github.com/veriscan-ai/veriscan/pkg/client"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newRelay starts a relay in front of a backend that always answers with
// status and body.
func newRelay(t *testing.T, status int, body string) (string, *int32) {
	t.Helper()

	var calls int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Port:          5000,
		Host:          "127.0.0.1",
		Environment:   config.EnvironmentTest,
		AllowOrigins:  []string{"*"},
		MaxUploadSize: config.DefaultMaxUploadSize,
		Inference: &config.InferenceConfig{
			URL:     backend.URL + "/detect",
			Timeout: 5 * time.Second,
		},
	}

	a, err := app.NewApp(cfg, app.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	s, err := server.NewServer(cfg)
	require.NoError(t, err)
	s.SetupRoutes(a)

	relay := httptest.NewServer(s.Handler())
	t.Cleanup(relay.Close)

	return relay.URL + "/api/detect", &calls
}

func writePNG(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 20))))

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newSession(t *testing.T, apiURL string) *ui.Session {
	t.Helper()

	session := ui.NewSession(client.New(apiURL), ui.WithPreviewDir(t.TempDir()))
	t.Cleanup(func() { session.Close() })
	return session
}

func TestDetect_PrintsVerdict(t *testing.T) {
	apiURL, calls := newRelay(t, http.StatusOK, `{"verdict":"Real","confidence":92.5,"raw":{"real":0.925}}`)
	session := newSession(t, apiURL)

	var out bytes.Buffer
	err := detect(context.Background(), session, writePNG(t), &out, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Contains(t, out.String(), "photo.png")
	assert.Contains(t, out.String(), "image/png")
	assert.Contains(t, out.String(), "Preview: ")
	assert.Contains(t, out.String(), "Verdict: Real\n")
	assert.Contains(t, out.String(), "Confidence: 92.5%\n")
	assert.Contains(t, out.String(), "authentic capture")
}

func TestDetect_BackendFailureShowsRelayError(t *testing.T) {
	apiURL, _ := newRelay(t, http.StatusServiceUnavailable, `{"detail":"model loading"}`)
	session := newSession(t, apiURL)

	var out bytes.Buffer
	err := detect(context.Background(), session, writePNG(t), &out, nil)
	require.Error(t, err)

	assert.Contains(t, out.String(), "Error: "+types.ErrInferenceFailed+"\n")
	assert.NotContains(t, out.String(), "Verdict:")
	assert.Equal(t, types.ErrInferenceFailed, session.State().Error)
}

func TestDetect_MissingFile(t *testing.T) {
	apiURL, calls := newRelay(t, http.StatusOK, `{}`)
	session := newSession(t, apiURL)

	var out bytes.Buffer
	err := detect(context.Background(), session, filepath.Join(t.TempDir(), "missing.png"), &out, nil)
	require.Error(t, err)

	assert.Empty(t, out.String())
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestRender(t *testing.T) {
	t.Run("ai generated", func(t *testing.T) {
		var out bytes.Buffer
		err := render(&out, ui.State{Result: &types.DetectionResult{Verdict: types.VerdictAIGenerated, Confidence: 71}})
		require.NoError(t, err)

		assert.Equal(t, "Verdict: AI-Generated\nConfidence: 71%\nThe image exhibits artifacts consistent with AI synthesis.\n", out.String())
	})

	t.Run("error", func(t *testing.T) {
		var out bytes.Buffer
		err := render(&out, ui.State{Error: client.GenericFailureMessage})
		require.EqualError(t, err, client.GenericFailureMessage)

		assert.Equal(t, "Error: Detection failed\n", out.String())
	})

	t.Run("nothing yet", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, render(&out, ui.State{}))
		assert.Empty(t, out.String())
	})
}
