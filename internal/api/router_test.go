package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/scribe-api/internal/config"
	"github.com/Conceptual-Machines/scribe-api/internal/llm"
	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
	"github.com/Conceptual-Machines/scribe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockProvider is a test implementation of the llm.Provider interface
type MockProvider struct {
	completeFunc func(ctx context.Context, request *llm.CompletionRequest) (*llm.CompletionResponse, error)
	calls        int
}

func (m *MockProvider) Name() string {
	return llm.ProviderOpenAI
}

func (m *MockProvider) Complete(ctx context.Context, request *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls++
	if m.completeFunc != nil {
		return m.completeFunc(ctx, request)
	}
	return &llm.CompletionResponse{
		Text:  "# Dark mode is here",
		Model: request.Model,
		Usage: llm.Usage{InputTokens: 800, OutputTokens: 200, TotalTokens: 1000},
	}, nil
}

type staticResolver struct {
	provider llm.Provider
}

func (r staticResolver) GetProvider(_ context.Context, _, _ string) (llm.Provider, error) {
	return r.provider, nil
}

func setupTestRouter(t *testing.T, provider *MockProvider) *gin.Engine {
	t.Helper()
	catalog, err := prompt.DefaultCatalog()
	require.NoError(t, err)

	params := services.LLMParameters{Model: "gpt-4o", Temperature: 0.3, MaxOutputTokens: 10000, ReasoningEffort: "low"}
	service := services.NewGenerationService(prompt.NewComposer(catalog), staticResolver{provider: provider}, params)

	return SetupRouter(Dependencies{
		Config:       &config.Config{CORSAllowedOrigin: "*"},
		Version:      "test",
		Service:      service,
		Catalog:      catalog,
		ProviderName: llm.ProviderOpenAI,
	})
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validBody = `{
	"schemaVersion": 3,
	"template": "release-notes",
	"personality": "steve-jobs",
	"context": "Version 2.0 ships dark mode.",
	"keywords": ["alpha", "beta"],
	"length": "short"
}`

func TestGenerate_Success(t *testing.T) {
	for _, path := range []string{"/generate", "/api/generate"} {
		t.Run(path, func(t *testing.T) {
			provider := &MockProvider{}
			router := setupTestRouter(t, provider)

			w := postJSON(router, path, validBody)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			assert.Equal(t, true, response["success"])
			assert.Equal(t, "# Dark mode is here", response["text"])
			assert.Equal(t, response["text"], response["content"])
			assert.NotEmpty(t, response["request_id"])
			assert.Equal(t, w.Header().Get("X-Request-ID"), response["request_id"])

			metadata, ok := response["metadata"].(map[string]interface{})
			require.True(t, ok, "Response should have 'metadata' object")
			assert.Equal(t, "release-notes", metadata["template"])
			assert.Equal(t, "steve-jobs", metadata["personality"])
			assert.InDelta(t, 250, metadata["wordTarget"], 0)
			assert.Equal(t, "gpt-4o", metadata["model"])
			assert.Equal(t, 1, provider.calls)
		})
	}
}

func TestGenerate_ClientErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields bool
	}{
		{"malformed json", `{"template": `, false},
		{"empty body", ``, false},
		{"unknown template", `{"template": "haiku", "personality": "steve-jobs", "context": "x"}`, true},
		{"missing context", `{"template": "release-notes", "personality": "steve-jobs"}`, true},
		{"complexity out of range", `{"template": "release-notes", "personality": "shreyas", "context": "x", "complexity": 9}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{}
			router := setupTestRouter(t, provider)

			w := postJSON(router, "/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response["error"])
			if tt.wantFields {
				assert.NotEmpty(t, response["fields"])
			}
			assert.Zero(t, provider.calls, "provider must not be contacted for invalid requests")
		})
	}
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	provider := &MockProvider{}
	router := setupTestRouter(t, provider)

	huge := `{"template": "release-notes", "personality": "steve-jobs", "context": "` +
		strings.Repeat("a", 2<<20) + `"}`

	w := postJSON(router, "/generate", huge)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, provider.calls)
}

func TestGenerate_GatewayErrors(t *testing.T) {
	tests := []struct {
		kind       llm.ErrorKind
		wantStatus int
	}{
		{llm.KindAuthentication, http.StatusBadGateway},
		{llm.KindRateLimit, http.StatusBadGateway},
		{llm.KindServiceUnavailable, http.StatusBadGateway},
		{llm.KindInvalidRequest, http.StatusBadGateway},
		{llm.KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			provider := &MockProvider{
				completeFunc: func(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
					return nil, &llm.GatewayError{Kind: tt.kind, Provider: llm.ProviderOpenAI, Message: "upstream said no"}
				},
			}
			router := setupTestRouter(t, provider)

			w := postJSON(router, "/generate", validBody)
			assert.Equal(t, tt.wantStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, string(tt.kind), response["kind"])
			assert.Contains(t, response["error"], "upstream said no")
			assert.NotContains(t, w.Body.String(), "dark mode")
		})
	}
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	router := setupTestRouter(t, &MockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error": "Method Not Allowed"}`, w.Body.String())
}

func TestGenerate_Preflight(t *testing.T) {
	router := setupTestRouter(t, &MockProvider{})

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "https://docs.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestRequestID_PropagatesWellFormedHeader(t *testing.T) {
	router := setupTestRouter(t, &MockProvider{})
	const id = "5f0c8f0e-6a55-4c7e-9d2b-0d8e3f1f9a10"

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(validBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get("X-Request-ID"))
}

func TestHealthAndCatalog(t *testing.T) {
	router := setupTestRouter(t, &MockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	llmInfo := health["llm"].(map[string]interface{})
	assert.Equal(t, "openai", llmInfo["provider"])
	assert.Equal(t, "gpt-4o", llmInfo["model"])

	req = httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var catalog struct {
		Templates     []map[string]interface{} `json:"templates"`
		Personalities []map[string]interface{} `json:"personalities"`
		Lengths       []map[string]interface{} `json:"lengths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	assert.Len(t, catalog.Templates, 3)
	assert.Len(t, catalog.Personalities, 3)
	assert.Equal(t, "release-notes", catalog.Templates[0]["key"])
	assert.NotEmpty(t, catalog.Personalities[0]["displayName"])
	assert.InDelta(t, 1000, catalog.Lengths[2]["wordTarget"], 0)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t, &MockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "test", response["version"])
	assert.Contains(t, response, "system")
}
