package services

import (
	"strings"

	"github.com/Conceptual-Machines/scribe-api/internal/config"
	"github.com/Conceptual-Machines/scribe-api/internal/llm"
	"github.com/Conceptual-Machines/scribe-api/internal/models"
)

// Reasoning effort constants
const (
	reasoningEffortMinimal = "minimal"
	reasoningEffortLow     = "low"
	reasoningEffortMedium  = "medium"
	reasoningEffortHigh    = "high"
)

// LLMParameters contains the completion settings applied to every generation
type LLMParameters struct {
	Provider        string  // explicit provider; empty infers from the model
	Model           string  // model identifier sent to the provider
	Temperature     float64 // 0.3 keeps product copy on-message
	MaxOutputTokens int     // upper bound on the generated document
	ReasoningEffort string  // only used by reasoning-capable OpenAI models
}

// GetLLMParameters derives completion parameters from configuration
func GetLLMParameters(cfg *config.Config) LLMParameters {
	return LLMParameters{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		Temperature:     cfg.LLMTemperature,
		MaxOutputTokens: cfg.LLMMaxOutputTokens,
		ReasoningEffort: GetReasoningEffort(cfg.LLMReasoningEffort),
	}
}

// GetReasoningEffort normalizes a configured reasoning mode.
// GPT-5 supports: minimal (fastest), low, medium, high (most thorough)
func GetReasoningEffort(reasoningMode string) string {
	switch strings.ToLower(strings.TrimSpace(reasoningMode)) {
	case reasoningEffortHigh:
		return reasoningEffortHigh
	case reasoningEffortMedium, "med":
		return reasoningEffortMedium
	case reasoningEffortMinimal, "min":
		return reasoningEffortMinimal
	default:
		return reasoningEffortLow
	}
}

// CompletionRequest builds the provider request for a composed prompt
func (p LLMParameters) CompletionRequest(messages []models.Message) *llm.CompletionRequest {
	return &llm.CompletionRequest{
		Model:           p.Model,
		Messages:        messages,
		Temperature:     p.Temperature,
		MaxOutputTokens: p.MaxOutputTokens,
		ReasoningEffort: p.ReasoningEffort,
	}
}
