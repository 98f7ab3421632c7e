package cli

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/scribe-api/internal/config"
	"github.com/Conceptual-Machines/scribe-api/internal/llm"
	"github.com/Conceptual-Machines/scribe-api/internal/logger"
	"github.com/Conceptual-Machines/scribe-api/internal/metrics"
	"github.com/Conceptual-Machines/scribe-api/internal/observability"
	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
	"github.com/Conceptual-Machines/scribe-api/internal/services"
)

// application holds the process-wide collaborators of the server
type application struct {
	catalog       *prompt.Catalog
	service       *services.GenerationService
	providerName  string
	sentryMetrics *metrics.SentryMetrics
	cloudwatch    *metrics.Client
	langfuse      *observability.LangfuseClient
}

// loadComposer builds the prompt composer from the embedded catalog or the configured override
func loadComposer(cfg *config.Config) (*prompt.Composer, error) {
	catalog, err := prompt.LoadCatalog(cfg.PromptCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt catalog: %w", err)
	}
	return prompt.NewComposer(catalog), nil
}

func newProviderFactory(cfg *config.Config) *llm.ProviderFactory {
	return llm.NewProviderFactory(llm.FactoryConfig{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		CompatAPIKey:    cfg.OpenAICompatAPIKey,
		CompatBaseURL:   cfg.OpenAICompatBaseURL,
		Timeout:         cfg.LLMTimeout,
	})
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	composer, err := loadComposer(cfg)
	if err != nil {
		return nil, err
	}

	factory := newProviderFactory(cfg)
	params := services.GetLLMParameters(cfg)

	// Build the client once so missing credentials stop the process before it serves traffic
	provider, err := factory.GetProvider(ctx, params.Model, params.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	providerName := provider.Name()

	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled)
	if err != nil {
		logger.Warn("CloudWatch metrics disabled", logger.Fields{"error": err.Error()})
		cloudwatch = &metrics.Client{}
	}

	app := &application{
		catalog:       composer.Catalog(),
		providerName:  providerName,
		sentryMetrics: metrics.NewSentryMetrics(cfg.SentryDSN != ""),
		cloudwatch:    cloudwatch,
		langfuse:      observability.InitializeLangfuse(context.Background(), cfg),
	}

	app.service = services.NewGenerationService(composer, services.StaticProvider{Provider: provider}, params,
		services.WithSentryMetrics(app.sentryMetrics),
		services.WithCloudWatch(app.cloudwatch),
		services.WithLangfuse(app.langfuse),
	)

	logger.Info("Generation pipeline ready", logger.Fields{
		"provider":      providerName,
		"model":         params.Model,
		"templates":     len(app.catalog.Templates()),
		"personalities": len(app.catalog.Personalities()),
	})

	return app, nil
}

// Close drains buffered telemetry
func (a *application) Close() {
	a.langfuse.Flush()
	a.cloudwatch.Wait()
}
