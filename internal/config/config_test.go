package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "browser", cfg.Scrape.Engine)
	assert.Equal(t, 45, cfg.Scrape.TimeoutSecs)
	assert.True(t, cfg.Scrape.Browser.Headless)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
	assert.NotEmpty(t, cfg.Cache.Path)
	assert.Equal(t, 200, cfg.Crawl.MaxPages)
	assert.Equal(t, "llama3-8b-8192", cfg.Groq.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Groq.BaseURL)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PAGESIFT_GROQ_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("PAGESIFT_LOG_LEVEL", "debug")
	t.Setenv("PAGESIFT_SCRAPE_ENGINE", "http")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Groq.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http", cfg.Scrape.Engine)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "console"})
	require.Error(t, err)
}

func TestInitLogger_JSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
}
