package llm

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/getsentry/sentry-go"
	goopenai "github.com/sashabaranov/go-openai"
)

// CompatProvider talks to any endpoint that speaks the OpenAI Chat Completions
// protocol (vLLM, Ollama, OpenRouter, Azure-style gateways)
type CompatProvider struct {
	client *goopenai.Client
}

// NewCompatProvider creates a provider for an OpenAI-compatible base URL
func NewCompatProvider(apiKey string, opts ClientOptions) *CompatProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return &CompatProvider{client: goopenai.NewClientWithConfig(cfg)}
}

// Name returns the provider name
func (p *CompatProvider) Name() string {
	return ProviderOpenAICompatible
}

// Complete implements single-shot generation using the Chat Completions API
func (p *CompatProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	startTime := time.Now()
	log.Printf("📝 COMPAT COMPLETION STARTED (Model: %s, messages: %d)", request.Model, len(request.Messages))

	transaction := sentry.StartTransaction(ctx, "compat.complete")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", ProviderOpenAICompatible)

	span := transaction.StartChild("compat.api_call")
	resp, err := p.client.CreateChatCompletion(ctx, buildChatRequest(request))
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ COMPAT REQUEST FAILED after %v", apiDuration)
		transaction.SetTag("success", "false")
		return nil, classifyCompatError(err)
	}

	log.Printf("⏱️  COMPAT API CALL COMPLETED in %v", apiDuration)

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		transaction.SetTag("success", "false")
		return nil, emptyCompletionError(ProviderOpenAICompatible)
	}

	usage := Usage{
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
		TotalTokens:  int64(resp.Usage.TotalTokens),
	}
	log.Printf("📊 USAGE: input=%d, output=%d, total=%d", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)

	transaction.SetTag("success", "true")
	return &CompletionResponse{Text: resp.Choices[0].Message.Content, Model: request.Model, Usage: usage}, nil
}

func buildChatRequest(request *CompletionRequest) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(request.Messages)+1)
	for _, msg := range request.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    compatRole(msg.Role),
			Content: msg.Content,
		})
	}
	if len(messages) == 0 || messages[len(messages)-1].Role != goopenai.ChatMessageRoleUser {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleUser,
			Content: kickoffMessage,
		})
	}

	return goopenai.ChatCompletionRequest{
		Model:       request.Model,
		Messages:    messages,
		Temperature: float32(request.Temperature),
		MaxTokens:   request.MaxOutputTokens,
	}
}

func compatRole(role models.Role) string {
	switch role {
	case models.RoleSystem:
		return goopenai.ChatMessageRoleSystem
	case models.RoleAssistant:
		return goopenai.ChatMessageRoleAssistant
	default:
		return goopenai.ChatMessageRoleUser
	}
}

func classifyCompatError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return newStatusError(ProviderOpenAICompatible, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return newStatusError(ProviderOpenAICompatible, reqErr.HTTPStatusCode, string(reqErr.Body), err)
	}
	return classifyTransport(ProviderOpenAICompatible, err)
}
