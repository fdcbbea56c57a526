package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.Equal(t, "v1beta", cfg.GeminiAPIVersion)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryBaseDelay())
	assert.Equal(t, 800*time.Millisecond, cfg.SaveDebounce())
}

func TestLoadClampsBadValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MAX_RETRIES", "-5")
	t.Setenv("EXPORT_WEBP_QUALITY", "500")
	t.Setenv("SAVE_DEBOUNCE_MS", "-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 80, cfg.ExportWebPQuality)
	assert.Equal(t, 800*time.Millisecond, cfg.SaveDebounce())
}

func TestLoadLowercasesLogLevel(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LOG_LEVEL", " DEBUG ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
