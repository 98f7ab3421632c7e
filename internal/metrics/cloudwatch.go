package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Scribe/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricDataAPI is the slice of the CloudWatch client the metrics client uses
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      putMetricDataAPI
	enabled     bool
	environment string
	pending     sync.WaitGroup
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string, enabled bool) (*Client, error) {
	if !enabled {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return newClientWithAPI(cloudwatch.NewFromConfig(cfg), environment), nil
}

func newClientWithAPI(api putMetricDataAPI, environment string) *Client {
	return &Client{
		client:      api,
		enabled:     true,
		environment: environment,
	}
}

// Enabled reports whether metrics are published
func (m *Client) Enabled() bool {
	return m.enabled
}

// Wait blocks until every in-flight publish has finished
func (m *Client) Wait() {
	m.pending.Wait()
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	metricName := "APIRequests"
	if statusCode >= httpStatusServerError {
		metricName = "APIErrors"
	}
	dimensions := m.dimensions("Endpoint", endpoint)

	m.publish(
		datum(metricName, 1, types.StandardUnitCount, dimensions),
		datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
	)
}

// RecordTokenUsage records completion token usage per provider and model
func (m *Client) RecordTokenUsage(provider, model string, inputTokens, outputTokens, reasoningTokens, totalTokens int64) {
	if !m.enabled {
		return
	}

	dimensions := append(m.dimensions("Provider", provider), types.Dimension{
		Name:  aws.String("Model"),
		Value: aws.String(model),
	})

	data := []types.MetricDatum{
		datum("LLMTokens/Total", float64(totalTokens), types.StandardUnitCount, dimensions),
		datum("LLMTokens/Input", float64(inputTokens), types.StandardUnitCount, dimensions),
		datum("LLMTokens/Output", float64(outputTokens), types.StandardUnitCount, dimensions),
	}
	// Reasoning tokens only exist for reasoning-capable models
	if reasoningTokens > 0 {
		data = append(data, datum("LLMTokens/Reasoning", float64(reasoningTokens), types.StandardUnitCount, dimensions))
	}

	m.publish(data...)
}

// RecordGenerationDuration records generation request duration per template
func (m *Client) RecordGenerationDuration(template string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	dimensions := append(m.dimensions("Template", template), types.Dimension{
		Name:  aws.String("Success"),
		Value: aws.String(boolToString(success)),
	})

	m.publish(datum("GenerationDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions))
}

// RecordGatewayError counts completion failures by kind
func (m *Client) RecordGatewayError(provider, kind string) {
	if !m.enabled {
		return
	}

	dimensions := append(m.dimensions("Provider", provider), types.Dimension{
		Name:  aws.String("Kind"),
		Value: aws.String(kind),
	})

	m.publish(datum("GatewayErrors", 1, types.StandardUnitCount, dimensions))
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

// publish sends the data in the background so request latency is unaffected
func (m *Client) publish(data ...types.MetricDatum) {
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		if err := m.putMetrics(data); err != nil {
			log.Printf("Failed to record %d CloudWatch metrics: %v", len(data), err)
		}
	}()
}

// putMetrics sends a batch of metrics to CloudWatch
func (m *Client) putMetrics(data []types.MetricDatum) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})

	return err
}

func datum(metricName string, value float64, unit types.StandardUnit, dimensions []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(metricName),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	}
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
