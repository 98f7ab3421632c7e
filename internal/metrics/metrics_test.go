package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(
	_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options),
) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func (f *fakeCloudWatch) metricNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, input := range f.inputs {
		for _, d := range input.MetricData {
			names = append(names, aws.ToString(d.MetricName))
		}
	}
	return names
}

func dimensionValue(dims []types.Dimension, name string) string {
	for _, d := range dims {
		if aws.ToString(d.Name) == name {
			return aws.ToString(d.Value)
		}
	}
	return ""
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := NewClient(context.Background(), "development", false)
	require.NoError(t, err)
	assert.False(t, client.Enabled())

	// Recording on a disabled client is a no-op
	client.RecordAPIRequest("/generate", 200, time.Second)
	client.RecordTokenUsage("openai", "gpt-4o", 1, 2, 0, 3)
	client.Wait()
}

func TestClient_RecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantMetric string
	}{
		{"success", 200, "APIRequests"},
		{"client error", 400, "APIRequests"},
		{"server error", 502, "APIErrors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCloudWatch{}
			client := newClientWithAPI(fake, "production")

			client.RecordAPIRequest("/generate", tt.statusCode, 250*time.Millisecond)
			client.Wait()

			assert.Equal(t, []string{tt.wantMetric, "APILatency"}, fake.metricNames())
			require.Len(t, fake.inputs, 1)
			assert.Equal(t, namespace, aws.ToString(fake.inputs[0].Namespace))
			latency := fake.inputs[0].MetricData[1]
			assert.InDelta(t, 250, aws.ToFloat64(latency.Value), 1e-9)
			assert.Equal(t, "/generate", dimensionValue(latency.Dimensions, "Endpoint"))
			assert.Equal(t, "production", dimensionValue(latency.Dimensions, "Environment"))
		})
	}
}

func TestClient_RecordTokenUsage(t *testing.T) {
	fake := &fakeCloudWatch{}
	client := newClientWithAPI(fake, "production")

	client.RecordTokenUsage("openai", "gpt-4o", 100, 50, 0, 150)
	client.Wait()
	assert.Equal(t, []string{"LLMTokens/Total", "LLMTokens/Input", "LLMTokens/Output"}, fake.metricNames())

	fake = &fakeCloudWatch{}
	client = newClientWithAPI(fake, "production")
	client.RecordTokenUsage("openai", "gpt-5-mini", 100, 50, 20, 150)
	client.Wait()
	assert.Contains(t, fake.metricNames(), "LLMTokens/Reasoning")
	assert.Equal(t, "gpt-5-mini", dimensionValue(fake.inputs[0].MetricData[0].Dimensions, "Model"))
}

func TestClient_RecordGenerationAndErrors(t *testing.T) {
	fake := &fakeCloudWatch{err: errors.New("throttled")}
	client := newClientWithAPI(fake, "production")

	client.RecordGenerationDuration("release-notes", 2*time.Second, false)
	client.RecordGatewayError("anthropic", "rate_limit")
	client.Wait()

	assert.ElementsMatch(t, []string{"GenerationDuration", "GatewayErrors"}, fake.metricNames())
}

func TestSentryMetrics_NoopWithoutClient(t *testing.T) {
	m := NewSentryMetrics(true)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordAPIRequest(ctx, "/generate", 200, time.Millisecond)
		m.RecordTokenUsage(ctx, "gemini", "gemini-2.5-flash", 1, 2, 0, 3)
		m.RecordGenerationDuration(ctx, "feature-announcement", time.Millisecond, true)
		m.RecordCompose(ctx, "feature-announcement", 3, 1200, time.Millisecond)
	})

	disabled := NewSentryMetrics(false)
	assert.NotPanics(t, func() {
		disabled.RecordAPIRequest(ctx, "/generate", 500, time.Millisecond)
	})
}
