package llm

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	// Reasoning effort levels
	reasoningNone    = "none"
	reasoningMinimal = "minimal"
	reasoningLow     = "low"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"
	reasoningMin     = "min"
	reasoningMed     = "med"
)

// modelsWithReasoning lists models that accept the reasoning parameter.
// They reject temperature, so it is only sent to the others.
var modelsWithReasoning = map[string]bool{
	// GPT-5 base
	"gpt-5":      true,
	"gpt-5-mini": true,
	"gpt-5-nano": true,
	// GPT-5.1
	"gpt-5.1":      true,
	"gpt-5.1-mini": true,
	"gpt-5.1-nano": true,
	// o-series
	"o3":      true,
	"o3-mini": true,
	"o4-mini": true,
}

// ClientOptions tunes the SDK client a provider builds
type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, opts ClientOptions) *OpenAIProvider {
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

	client := openai.NewClient(reqOpts...)
	return &OpenAIProvider{client: &client}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Complete implements single-shot generation using OpenAI's Responses API
func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	startTime := time.Now()
	log.Printf("📝 OPENAI COMPLETION STARTED (Model: %s, messages: %d)", request.Model, len(request.Messages))

	transaction := sentry.StartTransaction(ctx, "openai.complete")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", ProviderOpenAI)

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Responses.New(ctx, params)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v", apiDuration)
		transaction.SetTag("success", "false")
		return nil, classifyOpenAIError(err)
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		transaction.SetTag("success", "false")
		return nil, emptyCompletionError(ProviderOpenAI)
	}

	usage := Usage{
		InputTokens:     resp.Usage.InputTokens,
		OutputTokens:    resp.Usage.OutputTokens,
		ReasoningTokens: resp.Usage.OutputTokensDetails.ReasoningTokens,
		TotalTokens:     resp.Usage.TotalTokens,
	}
	log.Printf("📊 USAGE: input=%d, output=%d, reasoning=%d, total=%d",
		usage.InputTokens, usage.OutputTokens, usage.ReasoningTokens, usage.TotalTokens)

	transaction.SetTag("success", "true")
	return &CompletionResponse{Text: text, Model: request.Model, Usage: usage}, nil
}

// buildRequestParams converts a CompletionRequest to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(request *CompletionRequest) responses.ResponseNewParams {
	inputItems := make(responses.ResponseInputParam, 0, len(request.Messages))
	for _, msg := range request.Messages {
		inputItems = append(inputItems,
			responses.ResponseInputItemParamOfMessage(msg.Content, openAIRole(msg.Role)),
		)
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
	}

	if request.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(request.MaxOutputTokens))
	}

	// Only include Reasoning parameter for models that support it
	if modelsWithReasoning[request.Model] {
		params.Reasoning = shared.ReasoningParam{
			Effort: reasoningEffort(request.ReasoningEffort),
		}
	} else {
		params.Temperature = openai.Float(request.Temperature)
	}

	return params
}

func openAIRole(role models.Role) responses.EasyInputMessageRole {
	switch role {
	case models.RoleSystem:
		return responses.EasyInputMessageRoleSystem
	case models.RoleAssistant:
		return responses.EasyInputMessageRoleAssistant
	default:
		return responses.EasyInputMessageRoleUser
	}
}

func reasoningEffort(mode string) shared.ReasoningEffort {
	switch strings.ToLower(mode) {
	case reasoningNone, reasoningMinimal, reasoningMin, reasoningLow:
		return shared.ReasoningEffortLow
	case reasoningHigh:
		return shared.ReasoningEffortHigh
	case reasoningMedium, reasoningMed:
		return shared.ReasoningEffortMedium
	default:
		return shared.ReasoningEffortLow
	}
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return newStatusError(ProviderOpenAI, apiErr.StatusCode, apiErr.Message, err)
	}
	return classifyTransport(ProviderOpenAI, err)
}
