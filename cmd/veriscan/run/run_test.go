package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veriscan-ai/veriscan/internal/config"
)

func TestLoadConfig_FlagDefaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, config.DefaultHost, cfg.Host)
	assert.Equal(t, config.DefaultInferenceURL, cfg.Inference.URL)
	assert.Equal(t, config.DefaultInferenceTimeout, cfg.Inference.Timeout)
	assert.Equal(t, int64(config.DefaultMaxUploadSize), cfg.MaxUploadSize)
	assert.True(t, cfg.Inference.CheckHealth)
	assert.False(t, cfg.StrictContentType)
}

func TestLoadConfig_UnprefixedEnv(t *testing.T) {
	t.Setenv("PORT", "6123")
	t.Setenv("PYTHON_SERVICE_URL", "http://model:8000/detect")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6123, cfg.Port)
	assert.Equal(t, "http://model:8000/detect", cfg.Inference.URL)
}

func TestLoadConfig_PrefixedEnvWins(t *testing.T) {
	t.Setenv("PORT", "6123")
	t.Setenv("VERISCAN_PORT", "7001")
	t.Setenv("VERISCAN_INFERENCE_TIMEOUT", "15s")
	t.Setenv("VERISCAN_STRICT_CONTENT_TYPE", "true")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.Inference.Timeout)
	assert.True(t, cfg.StrictContentType)
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("VERISCAN_PORT", "7001")

	flags := Cmd.Flags()
	require.NoError(t, flags.Set("port", "7500"))
	t.Cleanup(func() {
		flags.Set("port", "5000")
		flags.Lookup("port").Changed = false
	})

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7500, cfg.Port)
}
