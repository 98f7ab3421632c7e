package llm

import (
	"context"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
)

// Provider defines the interface for LLM completion providers.
// Every call is single-shot: providers never retry and never stream.
type Provider interface {
	// Complete sends the composed messages and returns the generated text.
	// Failures are *GatewayError values classified by kind.
	Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// CompletionRequest contains everything a provider needs for one completion
type CompletionRequest struct {
	Model           string
	Messages        []models.Message
	Temperature     float64
	MaxOutputTokens int
	ReasoningEffort string
}

// Usage reports token consumption for one completion
type Usage struct {
	InputTokens     int64 `json:"inputTokens"`
	OutputTokens    int64 `json:"outputTokens"`
	ReasoningTokens int64 `json:"reasoningTokens,omitempty"`
	TotalTokens     int64 `json:"totalTokens"`
}

// CompletionResponse is the generated text, passed back unmodified
type CompletionResponse struct {
	Text  string
	Model string
	Usage Usage
}

// kickoffMessage is the trailing user turn for providers that require the
// conversation to end on a user message
const kickoffMessage = "Write the document now, following all of the instructions above."

// Provider names
const (
	ProviderOpenAI           = "openai"
	ProviderGemini           = "gemini"
	ProviderAnthropic        = "anthropic"
	ProviderOpenAICompatible = "openai-compatible"
)

// maxErrorMessageChars bounds vendor error text surfaced to callers
const maxErrorMessageChars = 300

// truncate truncates a string to maxLen bytes
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
