package services

import (
	"context"
	"errors"
	"time"

	"github.com/Conceptual-Machines/scribe-api/internal/llm"
	"github.com/Conceptual-Machines/scribe-api/internal/logger"
	"github.com/Conceptual-Machines/scribe-api/internal/metrics"
	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/Conceptual-Machines/scribe-api/internal/observability"
	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
)

// ProviderResolver returns the provider that serves a model
type ProviderResolver interface {
	GetProvider(ctx context.Context, model, providerName string) (llm.Provider, error)
}

// StaticProvider resolves every request to one provider built at startup
type StaticProvider struct {
	Provider llm.Provider
}

func (s StaticProvider) GetProvider(_ context.Context, _, _ string) (llm.Provider, error) {
	return s.Provider, nil
}

// GenerationMetadata describes how a document was produced
type GenerationMetadata struct {
	Template     models.Template     `json:"template"`
	Personality  models.Personality  `json:"personality"`
	OutputFormat models.OutputFormat `json:"outputFormat"`
	Tone         models.Tone         `json:"tone"`
	Length       models.Length       `json:"length"`
	WordTarget   int                 `json:"wordTarget"`
	Complexity   int                 `json:"complexity"`
	Model        string              `json:"model"`
	Provider     string              `json:"provider"`
	Usage        llm.Usage           `json:"usage"`
	CostUSD      float64             `json:"costUsd"`
	DurationMs   int64               `json:"durationMs"`
}

// GenerationResult is the generated document, passed through unmodified
type GenerationResult struct {
	Content  string             `json:"content"`
	Metadata GenerationMetadata `json:"metadata"`
}

// GenerationService runs normalize, compose and complete for one request
type GenerationService struct {
	composer  *prompt.Composer
	providers ProviderResolver
	params    LLMParameters

	sentryMetrics *metrics.SentryMetrics
	cloudwatch    *metrics.Client
	langfuse      *observability.LangfuseClient
}

// GenerationServiceOption customises optional collaborators
type GenerationServiceOption func(*GenerationService)

// WithSentryMetrics records compose and completion spans in Sentry
func WithSentryMetrics(m *metrics.SentryMetrics) GenerationServiceOption {
	return func(s *GenerationService) { s.sentryMetrics = m }
}

// WithCloudWatch publishes generation metrics to CloudWatch
func WithCloudWatch(c *metrics.Client) GenerationServiceOption {
	return func(s *GenerationService) { s.cloudwatch = c }
}

// WithLangfuse traces every completion in Langfuse
func WithLangfuse(c *observability.LangfuseClient) GenerationServiceOption {
	return func(s *GenerationService) { s.langfuse = c }
}

// NewGenerationService creates a generation service
func NewGenerationService(
	composer *prompt.Composer, providers ProviderResolver, params LLMParameters, opts ...GenerationServiceOption,
) *GenerationService {
	s := &GenerationService{
		composer:      composer,
		providers:     providers,
		params:        params,
		sentryMetrics: metrics.NewSentryMetrics(false),
		langfuse:      observability.Disabled(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cloudwatch == nil {
		s.cloudwatch = &metrics.Client{}
	}
	return s
}

// Parameters returns the completion parameters in use
func (s *GenerationService) Parameters() LLMParameters {
	return s.params
}

// Compose normalizes the request and builds the prompt messages without calling a provider
func (s *GenerationService) Compose(ctx context.Context, raw models.GenerationRequest) (prompt.NormalizedRequest, []models.Message, error) {
	start := time.Now()
	req, messages, err := s.composer.ComposeRequest(raw)
	if err != nil {
		return req, nil, err
	}

	s.sentryMetrics.RecordCompose(ctx, string(req.Template), len(messages), promptChars(messages), time.Since(start))
	return req, messages, nil
}

// Generate produces one document. Validation failures are returned before
// any provider is contacted. Gateway failures are *llm.GatewayError values.
func (s *GenerationService) Generate(ctx context.Context, raw models.GenerationRequest) (*GenerationResult, error) {
	start := time.Now()

	req, messages, err := s.Compose(ctx, raw)
	if err != nil {
		return nil, err
	}

	fields := logger.Fields{
		"template":     string(req.Template),
		"personality":  string(req.Personality),
		"output":       string(req.OutputFormat),
		"prompt_chars": promptChars(messages),
		"model":        s.params.Model,
	}

	provider, err := s.providers.GetProvider(ctx, s.params.Model, s.params.Provider)
	if err != nil {
		s.recordFailure(ctx, req, s.params.Provider, time.Since(start), err)
		return nil, err
	}
	fields["provider"] = provider.Name()
	logger.Info("Generation started", fields)

	trace := s.langfuse.StartTrace(ctx, "generate", map[string]interface{}{
		"template":    string(req.Template),
		"personality": string(req.Personality),
		"format":      string(req.OutputFormat),
	})

	generation := trace.Generation("completion", map[string]interface{}{
		"provider":    provider.Name(),
		"temperature": s.params.Temperature,
		"max_tokens":  s.params.MaxOutputTokens,
	})
	defer generation.Finish()

	resp, err := provider.Complete(ctx, s.params.CompletionRequest(messages))
	duration := time.Since(start)
	if err != nil {
		generation.LogFailure(s.params.Model, messages, err)
		s.recordFailure(ctx, req, provider.Name(), duration, err)
		trace.Finish(nil, err)
		return nil, err
	}

	generation.LogCompletion(s.params.Model, messages, resp)
	s.recordSuccess(ctx, req, provider.Name(), duration, resp)
	trace.Finish(map[string]interface{}{
		"provider":      provider.Name(),
		"output_chars":  len(resp.Text),
		"output_tokens": resp.Usage.OutputTokens,
	}, nil)

	return &GenerationResult{
		Content: resp.Text,
		Metadata: GenerationMetadata{
			Template:     req.Template,
			Personality:  req.Personality,
			OutputFormat: req.OutputFormat,
			Tone:         req.Tone,
			Length:       req.Length,
			WordTarget:   req.WordTarget(),
			Complexity:   req.Complexity,
			Model:        s.params.Model,
			Provider:     provider.Name(),
			Usage:        resp.Usage,
			CostUSD:      observability.CalculateCost(s.params.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens),
			DurationMs:   duration.Milliseconds(),
		},
	}, nil
}

func (s *GenerationService) recordSuccess(
	ctx context.Context, req prompt.NormalizedRequest, provider string, duration time.Duration, resp *llm.CompletionResponse,
) {
	usage := resp.Usage
	logger.LogGeneration(ctx, provider, s.params.Model, duration, usage.InputTokens, usage.OutputTokens, logger.Fields{
		"template":      string(req.Template),
		"output_chars":  len(resp.Text),
		"reasoning":     usage.ReasoningTokens,
		"estimated_usd": observability.FormatCost(observability.CalculateCost(s.params.Model, usage.InputTokens, usage.OutputTokens)),
	})

	s.sentryMetrics.RecordTokenUsage(ctx, provider, s.params.Model,
		usage.InputTokens, usage.OutputTokens, usage.ReasoningTokens, usage.TotalTokens)
	s.sentryMetrics.RecordGenerationDuration(ctx, string(req.Template), duration, true)

	s.cloudwatch.RecordTokenUsage(provider, s.params.Model,
		usage.InputTokens, usage.OutputTokens, usage.ReasoningTokens, usage.TotalTokens)
	s.cloudwatch.RecordGenerationDuration(string(req.Template), duration, true)
}

func (s *GenerationService) recordFailure(
	ctx context.Context, req prompt.NormalizedRequest, provider string, duration time.Duration, err error,
) {
	kind := string(llm.KindUnknown)
	var gwErr *llm.GatewayError
	if errors.As(err, &gwErr) {
		kind = string(gwErr.Kind)
		provider = gwErr.Provider
	}

	logger.Warn("Generation failed", logger.Fields{
		"template":    string(req.Template),
		"provider":    provider,
		"model":       s.params.Model,
		"error_kind":  kind,
		"duration_ms": duration.Milliseconds(),
	})

	s.sentryMetrics.RecordGenerationDuration(ctx, string(req.Template), duration, false)
	s.cloudwatch.RecordGenerationDuration(string(req.Template), duration, false)
	s.cloudwatch.RecordGatewayError(provider, kind)
}

func promptChars(messages []models.Message) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}
