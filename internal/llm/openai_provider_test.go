package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openAIResponseJSON = `{
  "id": "resp_123",
  "object": "response",
  "created_at": 1700000000,
  "model": "gpt-4o",
  "status": "completed",
  "output": [{
    "type": "message",
    "id": "msg_123",
    "role": "assistant",
    "status": "completed",
    "content": [{"type": "output_text", "text": "# Release notes\nDark mode is here.", "annotations": []}]
  }],
  "usage": {
    "input_tokens": 120,
    "input_tokens_details": {"cached_tokens": 0},
    "output_tokens": 40,
    "output_tokens_details": {"reasoning_tokens": 8},
    "total_tokens": 160
  }
}`

func TestNewOpenAIProvider(t *testing.T) {
	provider := NewOpenAIProvider("test-api-key", ClientOptions{})
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.NotNil(t, provider.client)
}

func TestOpenAIProvider_BuildRequestParams(t *testing.T) {
	provider := NewOpenAIProvider("test-key", ClientOptions{})

	tests := []struct {
		name    string
		request *CompletionRequest
		checks  func(t *testing.T, request *CompletionRequest)
	}{
		{
			name: "standard model sends temperature",
			request: &CompletionRequest{
				Model:           "gpt-4o",
				Messages:        composedMessages(),
				Temperature:     0.3,
				MaxOutputTokens: 10000,
			},
			checks: func(t *testing.T, request *CompletionRequest) {
				t.Helper()
				params := provider.buildRequestParams(request)
				assert.Equal(t, "gpt-4o", params.Model)
				assert.Len(t, params.Input.OfInputItemList, 3)
				require.True(t, params.Temperature.Valid())
				assert.InDelta(t, 0.3, params.Temperature.Value, 1e-9)
				assert.Equal(t, int64(10000), params.MaxOutputTokens.Value)
				assert.Empty(t, params.Reasoning.Effort)
			},
		},
		{
			name: "reasoning model omits temperature",
			request: &CompletionRequest{
				Model:           "gpt-5-mini",
				Messages:        composedMessages(),
				Temperature:     0.3,
				ReasoningEffort: "high",
			},
			checks: func(t *testing.T, request *CompletionRequest) {
				t.Helper()
				params := provider.buildRequestParams(request)
				assert.False(t, params.Temperature.Valid())
				assert.False(t, params.MaxOutputTokens.Valid())
				assert.Equal(t, "high", string(params.Reasoning.Effort))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checks(t, tt.request)
		})
	}
}

func TestReasoningEffort(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"", "low"},
		{"none", "low"},
		{"min", "low"},
		{"med", "medium"},
		{"MEDIUM", "medium"},
		{"high", "high"},
		{"bogus", "low"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.want, string(reasoningEffort(tt.mode)))
		})
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAIResponseJSON))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", ClientOptions{BaseURL: server.URL, Timeout: 5 * time.Second})
	resp, err := provider.Complete(context.Background(), &CompletionRequest{
		Model:           "gpt-4o",
		Messages:        composedMessages(),
		Temperature:     0.3,
		MaxOutputTokens: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, "# Release notes\nDark mode is here.", resp.Text)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 40, ReasoningTokens: 8, TotalTokens: 160}, resp.Usage)

	require.NotNil(t, captured)
	assert.Equal(t, "gpt-4o", captured["model"])
	input, ok := captured["input"].([]any)
	require.True(t, ok)
	require.Len(t, input, 3)
	first, ok := input[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are a product writer.", first["content"])
	second, ok := input[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "assistant", second["role"])
}

func TestOpenAIProvider_CompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded","param":null}}`,
			want:   ErrRateLimit,
		},
		{
			name:   "bad key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key","param":null}}`,
			want:   ErrAuthentication,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":{"message":"The server had an error","type":"server_error","code":null,"param":null}}`,
			want:   ErrServiceUnavailable,
		},
		{
			name:   "unknown model",
			status: http.StatusNotFound,
			body:   `{"error":{"message":"The model does not exist","type":"invalid_request_error","code":"model_not_found","param":null}}`,
			want:   ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := NewOpenAIProvider("test-key", ClientOptions{BaseURL: server.URL})
			_, err := provider.Complete(context.Background(), &CompletionRequest{Model: "gpt-4o", Messages: composedMessages()})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var gwErr *GatewayError
			require.True(t, errors.As(err, &gwErr))
			assert.Equal(t, tt.status, gwErr.StatusCode)
			assert.Equal(t, ProviderOpenAI, gwErr.Provider)
			assert.Equal(t, int32(1), calls.Load(), "providers never retry")
		})
	}
}

func TestOpenAIProvider_EmptyOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"resp_1","object":"response","model":"gpt-4o","status":"completed","output":[]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", ClientOptions{BaseURL: server.URL})
	_, err := provider.Complete(context.Background(), &CompletionRequest{Model: "gpt-4o", Messages: composedMessages()})
	assert.ErrorIs(t, err, ErrUnknown)
}
