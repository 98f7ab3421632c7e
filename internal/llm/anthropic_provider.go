package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/getsentry/sentry-go"
)

// defaultAnthropicMaxTokens is used when the request carries no limit; the Messages API requires one
const defaultAnthropicMaxTokens = 4096

// AnthropicProvider implements the Provider interface using Anthropic's Messages API
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey string, opts ClientOptions) *AnthropicProvider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	client := anthropic.NewClient(reqOpts...)
	return &AnthropicProvider{client: &client}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// Complete implements single-shot generation using the Messages API
func (p *AnthropicProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	startTime := time.Now()
	log.Printf("📝 ANTHROPIC COMPLETION STARTED (Model: %s, messages: %d)", request.Model, len(request.Messages))

	transaction := sentry.StartTransaction(ctx, "anthropic.complete")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", ProviderAnthropic)

	params := p.buildMessageParams(request)

	span := transaction.StartChild("anthropic.api_call")
	message, err := p.client.Messages.New(ctx, params)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ ANTHROPIC REQUEST FAILED after %v", apiDuration)
		transaction.SetTag("success", "false")
		return nil, classifyAnthropicError(err)
	}

	log.Printf("⏱️  ANTHROPIC API CALL COMPLETED in %v", apiDuration)

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		transaction.SetTag("success", "false")
		return nil, emptyCompletionError(ProviderAnthropic)
	}

	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
		TotalTokens:  message.Usage.InputTokens + message.Usage.OutputTokens,
	}
	log.Printf("📊 USAGE: input=%d, output=%d", usage.InputTokens, usage.OutputTokens)

	transaction.SetTag("success", "true")
	return &CompletionResponse{Text: text.String(), Model: request.Model, Usage: usage}, nil
}

// buildMessageParams folds the system and assistant context into system blocks.
// The conversation must open on a user turn, so it carries the user messages
// followed by the kickoff.
func (p *AnthropicProvider) buildMessageParams(request *CompletionRequest) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, msg := range request.Messages {
		switch msg.Role {
		case models.RoleSystem, models.RoleAssistant:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(kickoffMessage)))

	maxTokens := int64(request.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(request.Model),
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    messages,
		Temperature: anthropic.Float(request.Temperature),
	}
}

type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var body anthropicErrorBody
		message := ""
		if json.Unmarshal([]byte(apiErr.RawJSON()), &body) == nil {
			message = body.Error.Message
		}
		return newStatusError(ProviderAnthropic, apiErr.StatusCode, message, err)
	}
	return classifyTransport(ProviderAnthropic, err)
}
