package observability

import (
	"context"
	"log"
	"time"

	"github.com/Conceptual-Machines/scribe-api/internal/config"
	"github.com/Conceptual-Machines/scribe-api/internal/llm"
	"github.com/Conceptual-Machines/scribe-api/internal/models"
	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
)

// levelError marks failed generations in the Langfuse UI
const levelError = model.ObservationLevel("ERROR")

// LangfuseClient wraps the Langfuse client with our configuration
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
	ctx     context.Context
}

// InitializeLangfuse builds the Langfuse client. The SDK reads LANGFUSE_HOST,
// LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY from the environment.
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)")
		return Disabled()
	}

	lf := langfuse.New(ctx)
	log.Printf("✅ Langfuse initialized (host: %s)", cfg.LangfuseHost)

	return &LangfuseClient{
		client:  lf,
		enabled: true,
		ctx:     ctx,
	}
}

// Disabled returns a client whose traces are all no-ops
func Disabled() *LangfuseClient {
	return &LangfuseClient{enabled: false, ctx: context.Background()}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Flush sends every queued event; called on shutdown
func (c *LangfuseClient) Flush() {
	if c.IsEnabled() {
		c.client.Flush(c.ctx)
	}
}

// StartTrace starts a new trace in Langfuse
func (c *LangfuseClient) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{enabled: false, ctx: ctx}
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return &Trace{enabled: false, ctx: ctx}
	}

	return &Trace{
		trace:    trace,
		metadata: metadata,
		enabled:  true,
		ctx:      ctx,
		client:   c.client,
	}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace    *model.Trace
	metadata map[string]interface{}
	enabled  bool
	ctx      context.Context
	client   *langfuse.Langfuse
}

// Enabled reports whether the trace is recorded
func (t *Trace) Enabled() bool {
	return t.enabled
}

// Generation creates a new generation span within the trace
func (t *Trace) Generation(name string, metadata map[string]interface{}) *Generation {
	if !t.enabled {
		return &Generation{enabled: false}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		StartTime: &now,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return &Generation{enabled: false}
	}

	return &Generation{
		generation: gen,
		enabled:    true,
		client:     t.client,
	}
}

// Finish records the outcome on the trace. Langfuse upserts traces by ID, so
// sending the trace again updates the entry created by StartTrace.
func (t *Trace) Finish(output map[string]interface{}, err error) {
	if !t.enabled || t.client == nil {
		return
	}

	t.trace.Output, t.trace.Metadata = traceOutcome(t.metadata, output, err)
	if _, upsertErr := t.client.Trace(t.trace); upsertErr != nil {
		log.Printf("⚠️  Failed to update Langfuse trace: %v", upsertErr)
	}
}

// traceOutcome merges the final status into the trace metadata. Failed traces carry no output.
func traceOutcome(metadata, output map[string]interface{}, err error) (interface{}, map[string]interface{}) {
	merged := make(map[string]interface{}, len(metadata)+2)
	for k, v := range metadata {
		merged[k] = v
	}

	if err != nil {
		merged["status"] = "error"
		merged["error"] = err.Error()
		return nil, merged
	}
	merged["status"] = "success"
	return output, merged
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	client     *langfuse.Langfuse
}

// Metadata adds metadata to the generation
func (g *Generation) Metadata(metadata map[string]interface{}) {
	if !g.enabled || g.generation == nil {
		return
	}
	md, ok := g.generation.Metadata.(map[string]interface{})
	if !ok || md == nil {
		md = make(map[string]interface{}, len(metadata))
	}
	for k, v := range metadata {
		md[k] = v
	}
	g.generation.Metadata = md
}

// LogCompletion records the composed messages, the generated text, the
// token usage and the estimated cost on the generation
func (g *Generation) LogCompletion(modelName string, input []models.Message, resp *llm.CompletionResponse) {
	if !g.enabled || g.generation == nil {
		return
	}

	cost := CalculateCost(modelName, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	g.generation.Model = modelName
	g.generation.Input = input
	g.generation.Output = resp.Text
	g.generation.Usage = model.Usage{
		Input:     int(resp.Usage.InputTokens),
		Output:    int(resp.Usage.OutputTokens),
		Total:     int(resp.Usage.TotalTokens),
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}
	g.Metadata(map[string]interface{}{
		"cost_usd":         cost,
		"reasoning_tokens": resp.Usage.ReasoningTokens,
	})
}

// LogFailure marks the generation as failed with the error text
func (g *Generation) LogFailure(modelName string, input []models.Message, err error) {
	if !g.enabled || g.generation == nil {
		return
	}

	g.generation.Model = modelName
	g.generation.Input = input
	g.generation.Level = levelError
	g.Metadata(map[string]interface{}{"error": err.Error()})
}

// Finish completes the generation and queues it for sending
func (g *Generation) Finish() {
	if g.enabled && g.generation != nil && g.client != nil {
		now := time.Now()
		g.generation.EndTime = &now
		if _, err := g.client.GenerationEnd(g.generation); err != nil {
			log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
		}
	}
}
