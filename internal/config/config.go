package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
// The service is stateless: no database, no auth secrets.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Completion gateway
	LLMProvider        string  // openai, gemini, anthropic, openai-compatible; empty infers from model
	LLMModel           string  // model identifier sent to the provider
	LLMTemperature     float64 // sampling temperature
	LLMMaxOutputTokens int     // maximum completion size
	LLMReasoningEffort string  // reasoning effort for reasoning-capable OpenAI models
	LLMTimeout         time.Duration

	// LLM API Keys
	OpenAIAPIKey        string // OpenAI API key for GPT models
	GeminiAPIKey        string // Google Gemini API key
	AnthropicAPIKey     string // Anthropic API key for Claude models
	OpenAICompatAPIKey  string // key for an OpenAI-compatible endpoint
	OpenAICompatBaseURL string // base URL of an OpenAI-compatible endpoint

	// Prompt catalog override; empty uses the embedded catalog
	PromptCatalogPath string

	// HTTP
	CORSAllowedOrigin string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
	CloudWatchEnabled bool   // Publish custom metrics (production only unless forced)
}

// Defaults for the completion gateway
const (
	DefaultModel           = "gpt-4o"
	DefaultTemperature     = 0.3
	DefaultMaxOutputTokens = 10000
	DefaultTimeoutSeconds  = 120
)

// knownProviders are the accepted LLM_PROVIDER values; empty infers from the model
var knownProviders = map[string]bool{
	"openai":            true,
	"gemini":            true,
	"anthropic":         true,
	"openai-compatible": true,
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "development")
	return &Config{
		Environment:         env,
		Port:                getEnv("PORT", "8080"),
		LLMProvider:         strings.ToLower(getEnv("LLM_PROVIDER", "")),
		LLMModel:            getEnv("LLM_MODEL", DefaultModel),
		LLMTemperature:      getEnvFloat("LLM_TEMPERATURE", DefaultTemperature),
		LLMMaxOutputTokens:  getEnvInt("LLM_MAX_OUTPUT_TOKENS", DefaultMaxOutputTokens),
		LLMReasoningEffort:  getEnv("LLM_REASONING_EFFORT", ""),
		LLMTimeout:          time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", DefaultTimeoutSeconds)) * time.Second,
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		OpenAICompatAPIKey:  getEnv("OPENAI_COMPAT_API_KEY", ""),
		OpenAICompatBaseURL: getEnv("OPENAI_COMPAT_BASE_URL", ""),
		PromptCatalogPath:   getEnv("PROMPT_CATALOG_PATH", ""),
		CORSAllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:   getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:   getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:        getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:     getEnvBool("LANGFUSE_ENABLED", false),
		CloudWatchEnabled:   getEnvBool("CLOUDWATCH_ENABLED", env == "production"),
	}
}

// Validate reports every out-of-range setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLMTemperature))
	}
	if c.LLMMaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_OUTPUT_TOKENS must be positive, got %d", c.LLMMaxOutputTokens))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive, got %v", c.LLMTimeout))
	}
	if c.LLMModel == "" {
		errs = append(errs, errors.New("LLM_MODEL must not be empty"))
	}
	if c.LangfuseEnabled && (c.LangfusePublicKey == "" || c.LangfuseSecretKey == "") {
		errs = append(errs, errors.New("LANGFUSE_ENABLED requires LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY"))
	}
	if c.LLMProvider != "" && !knownProviders[c.LLMProvider] {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of openai, gemini, anthropic, openai-compatible, got %q", c.LLMProvider))
	}
	if c.LLMProvider == "openai-compatible" && c.OpenAICompatBaseURL == "" {
		errs = append(errs, errors.New("LLM_PROVIDER=openai-compatible requires OPENAI_COMPAT_BASE_URL"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
