package invoker_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/invoker"
	claude "docextract/internal/invoker/claude"
)

func newClaudeTestInvoker(serverURL string) *claude.Invoker {
	return claude.NewInvokerWithEndpoint(&config.ProviderConfig{APIKey: "test-claude-key"}, serverURL)
}

func TestClaudeInvoker_Invoke_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-claude-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(1000), reqBody["max_tokens"])

		content := reqBody["messages"].([]interface{})[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)
		img := content[0].(map[string]interface{})
		assert.Equal(t, "image", img["type"])
		source := img["source"].(map[string]interface{})
		assert.Equal(t, "image/png", source["media_type"])
		assert.Equal(t, "iVBORw0KGgo=", source["data"])
		assert.Equal(t, invoker.ExtractionPrompt, content[1].(map[string]interface{})["text"])

		_, _ = w.Write([]byte(`{
			"content":[{"type":"text","text":"{\"total\":"},{"type":"text","text":"42}"}],
			"stop_reason":"end_turn",
			"usage":{"input_tokens":1500,"output_tokens":12}
		}`))
	}))
	defer server.Close()

	out, err := newClaudeTestInvoker(server.URL).Invoke(context.Background(), pngInput("claude-sonnet-4-20250514"))

	require.NoError(t, err)
	assert.Equal(t, `{"total":42}`, out.Text)
	assert.Equal(t, domain.TokenUsage{PromptTokens: 1500, CompletionTokens: 12, TotalTokens: 1512}, out.Usage)
}

func TestClaudeInvoker_Invoke_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	_, err := newClaudeTestInvoker(server.URL).Invoke(context.Background(), pngInput("claude-sonnet-4-20250514"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestClaudeInvoker_Invoke_RateLimitedDefaultRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newClaudeTestInvoker(server.URL).Invoke(context.Background(), pngInput("claude-sonnet-4-20250514"))

	var rlErr *invoker.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, float64(60), rlErr.RetryAfter.Seconds())
	assert.Contains(t, err.Error(), "rate_limit_error")
}
