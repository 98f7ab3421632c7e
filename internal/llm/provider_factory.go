package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrUnknownProvider is returned for a provider name the factory cannot build
var ErrUnknownProvider = errors.New("unknown provider")

// oSeriesPattern matches OpenAI reasoning models such as o3 or o4-mini
var oSeriesPattern = regexp.MustCompile(`^o\d`)

// FactoryConfig carries credentials and client settings for every provider
type FactoryConfig struct {
	OpenAIAPIKey    string
	GeminiAPIKey    string
	AnthropicAPIKey string
	CompatAPIKey    string
	CompatBaseURL   string
	Timeout         time.Duration
}

// ProviderFactory creates providers based on model name or explicit provider choice
type ProviderFactory struct {
	cfg FactoryConfig
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg FactoryConfig) *ProviderFactory {
	return &ProviderFactory{cfg: cfg}
}

// GetProvider returns the appropriate provider for the given model/provider name
func (f *ProviderFactory) GetProvider(ctx context.Context, model, providerName string) (Provider, error) {
	// If provider is explicitly specified, use that
	if providerName != "" {
		return f.getProviderByName(ctx, providerName)
	}

	// Otherwise, infer from model name
	return f.getProviderByName(ctx, f.InferProvider(model))
}

// InferProvider maps a model identifier to the provider that serves it
func (f *ProviderFactory) InferProvider(model string) string {
	modelLower := strings.ToLower(model)

	switch {
	case strings.HasPrefix(modelLower, "gpt-"),
		strings.HasPrefix(modelLower, "chatgpt-"),
		oSeriesPattern.MatchString(modelLower):
		return ProviderOpenAI
	case strings.HasPrefix(modelLower, "gemini-"):
		return ProviderGemini
	case strings.HasPrefix(modelLower, "claude-"):
		return ProviderAnthropic
	case f.cfg.CompatBaseURL != "":
		return ProviderOpenAICompatible
	default:
		// Default to OpenAI for unknown models
		return ProviderOpenAI
	}
}

// getProviderByName creates a provider by explicit name
func (f *ProviderFactory) getProviderByName(ctx context.Context, providerName string) (Provider, error) {
	opts := ClientOptions{Timeout: f.cfg.Timeout}

	switch strings.ToLower(providerName) {
	case ProviderOpenAI:
		if f.cfg.OpenAIAPIKey == "" {
			return nil, missingKeyError(ProviderOpenAI, "OPENAI_API_KEY")
		}
		return NewOpenAIProvider(f.cfg.OpenAIAPIKey, opts), nil

	case ProviderGemini:
		if f.cfg.GeminiAPIKey == "" {
			return nil, missingKeyError(ProviderGemini, "GEMINI_API_KEY")
		}
		provider, err := NewGeminiProvider(ctx, f.cfg.GeminiAPIKey, opts)
		if err != nil {
			return nil, err
		}
		return provider, nil

	case ProviderAnthropic:
		if f.cfg.AnthropicAPIKey == "" {
			return nil, missingKeyError(ProviderAnthropic, "ANTHROPIC_API_KEY")
		}
		return NewAnthropicProvider(f.cfg.AnthropicAPIKey, opts), nil

	case ProviderOpenAICompatible:
		if f.cfg.CompatBaseURL == "" {
			return nil, fmt.Errorf("%s requires OPENAI_COMPAT_BASE_URL", ProviderOpenAICompatible)
		}
		opts.BaseURL = f.cfg.CompatBaseURL
		return NewCompatProvider(f.cfg.CompatAPIKey, opts), nil

	default:
		return nil, fmt.Errorf("%w: %s (allowed: %s, %s, %s, %s)", ErrUnknownProvider, providerName,
			ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderOpenAICompatible)
	}
}
