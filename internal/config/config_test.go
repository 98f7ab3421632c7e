package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_MAX_OUTPUT_TOKENS",
		"LLM_REASONING_EFFORT", "LLM_TIMEOUT_SECONDS", "OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
		"OPENAI_COMPAT_API_KEY", "OPENAI_COMPAT_BASE_URL", "PROMPT_CATALOG_PATH", "CORS_ALLOWED_ORIGIN",
		"SENTRY_DSN", "LANGFUSE_PUBLIC_KEY", "LANGFUSE_SECRET_KEY", "LANGFUSE_HOST", "LANGFUSE_ENABLED",
		"CLOUDWATCH_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o", cfg.LLMModel)
	assert.InDelta(t, 0.3, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 10000, cfg.LLMMaxOutputTokens)
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "*", cfg.CORSAllowedOrigin)
	assert.Equal(t, "https://cloud.langfuse.com", cfg.LangfuseHost)
	assert.False(t, cfg.LangfuseEnabled)
	assert.False(t, cfg.CloudWatchEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("LLM_MODEL", "claude-sonnet-4-5")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_MAX_OUTPUT_TOKENS", "2000")
	t.Setenv("LLM_TIMEOUT_SECONDS", "30")
	t.Setenv("LANGFUSE_ENABLED", "true")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.CloudWatchEnabled)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLMModel)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 2000, cfg.LLMMaxOutputTokens)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.LangfuseEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_TEMPERATURE", "warm")
	t.Setenv("LLM_MAX_OUTPUT_TOKENS", "lots")
	t.Setenv("LANGFUSE_ENABLED", "maybe")

	cfg := Load()
	assert.InDelta(t, DefaultTemperature, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, DefaultMaxOutputTokens, cfg.LLMMaxOutputTokens)
	assert.False(t, cfg.LangfuseEnabled)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	cfg.LLMTemperature = 3
	cfg.LLMMaxOutputTokens = 0
	cfg.LangfuseEnabled = true
	cfg.LLMProvider = "openai-compatible"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_TEMPERATURE")
	assert.Contains(t, err.Error(), "LLM_MAX_OUTPUT_TOKENS")
	assert.Contains(t, err.Error(), "LANGFUSE_ENABLED")
	assert.Contains(t, err.Error(), "OPENAI_COMPAT_BASE_URL")
}

func TestValidate_Provider(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		provider string
		wantErr  bool
	}{
		{"", false},
		{"openai", false},
		{"gemini", false},
		{"anthropic", false},
		{"bogus", true},
		{"mistral", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Load()
			cfg.LLMProvider = tt.provider

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "LLM_PROVIDER")
				return
			}
			assert.NoError(t, err)
		})
	}
}
