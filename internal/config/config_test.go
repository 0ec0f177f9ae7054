package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, float32(0.3), cfg.Gemini.Temperature)
	assert.Equal(t, int64(10485760), cfg.Upload.MaxFileSize)
	assert.Equal(t, 5, cfg.Ranker.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Ranker.DocTimeout)
	assert.Equal(t, 30000, cfg.Ranker.MaxPromptChars)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("RANKER_CONCURRENCY", "10")
	t.Setenv("RANKER_DOC_TIMEOUT", "30s")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 10, cfg.Ranker.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Ranker.DocTimeout)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("RANKER_CONCURRENCY", "not-a-number")
	t.Setenv("RANKER_DOC_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 5, cfg.Ranker.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Ranker.DocTimeout)
}
