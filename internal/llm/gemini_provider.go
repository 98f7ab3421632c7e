package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string, opts ClientOptions) (*GeminiProvider, error) {
	httpOptions := genai.HTTPOptions{BaseURL: opts.BaseURL}
	if opts.Timeout > 0 {
		timeout := opts.Timeout
		httpOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Complete implements single-shot generation using Gemini's API
func (p *GeminiProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	startTime := time.Now()
	log.Printf("📝 GEMINI COMPLETION STARTED (Model: %s, messages: %d)", request.Model, len(request.Messages))

	transaction := sentry.StartTransaction(ctx, "gemini.complete")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", ProviderGemini)

	system, contents := p.buildGeminiContents(request.Messages)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(request.Temperature)),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if request.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxOutputTokens)
	}

	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v", apiDuration)
		transaction.SetTag("success", "false")
		return nil, classifyGeminiError(err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	text := result.Text()
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(text))
	if strings.TrimSpace(text) == "" {
		transaction.SetTag("success", "false")
		return nil, emptyCompletionError(ProviderGemini)
	}

	// Output tokens include thinking tokens, matching the OpenAI accounting
	var usage Usage
	if result.UsageMetadata != nil {
		usage = Usage{
			InputTokens:     int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens:    int64(result.UsageMetadata.CandidatesTokenCount + result.UsageMetadata.ThoughtsTokenCount),
			ReasoningTokens: int64(result.UsageMetadata.ThoughtsTokenCount),
			TotalTokens:     int64(result.UsageMetadata.TotalTokenCount),
		}
		log.Printf("📊 USAGE: input=%d, output=%d, total=%d",
			usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	}

	transaction.SetTag("success", "true")
	return &CompletionResponse{Text: text, Model: request.Model, Usage: usage}, nil
}

// buildGeminiContents splits messages into the system instruction and the
// conversation. Assistant turns become model turns and a user turn closes
// the conversation.
func (p *GeminiProvider) buildGeminiContents(messages []models.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			system = append(system, msg.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(contents) == 0 || contents[len(contents)-1].Role != genai.RoleUser {
		contents = append(contents, genai.NewContentFromText(kickoffMessage, genai.RoleUser))
	}

	return strings.Join(system, "\n\n"), contents
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return newStatusError(ProviderGemini, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return newStatusError(ProviderGemini, apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return classifyTransport(ProviderGemini, err)
}
