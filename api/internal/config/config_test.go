package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.HTTP.Addr())
	assert.Equal(t, "http://127.0.0.1:8010", cfg.LanguageTool.URL)
	assert.Equal(t, 30*time.Second, cfg.LanguageTool.Timeout)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Len(t, cfg.CORS.Origins(), 4)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LANGUAGETOOL_URL", "http://lt.internal:8010")
	t.Setenv("LANGUAGETOOL_TIMEOUT", "5s")
	t.Setenv("ENABLE_LLM", "false")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "http://lt.internal:8010", cfg.LanguageTool.URL)
	assert.Equal(t, 5*time.Second, cfg.LanguageTool.Timeout)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORS.Origins())
}

func TestLLMActive(t *testing.T) {
	tests := []struct {
		name string
		cfg  LLMConfig
		want bool
	}{
		{"enabled with key", LLMConfig{Enabled: true, APIKey: "k"}, true},
		{"enabled without key", LLMConfig{Enabled: true, APIKey: ""}, false},
		{"enabled with blank key", LLMConfig{Enabled: true, APIKey: "   "}, false},
		{"disabled with key", LLMConfig{Enabled: false, APIKey: "k"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Active())
		})
	}
}

func TestMissingExplicitConfigFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	require.Error(t, err)
}
