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
	openai "docextract/internal/invoker/openai"
	"docextract/internal/port"
)

func newOpenAITestInvoker(serverURL string) *openai.Invoker {
	cfg := &config.ProviderConfig{
		APIKey:      "test-openai-key",
		TimeoutSecs: 30,
		MaxTokens:   1000,
	}
	return openai.NewInvokerWithEndpoint(cfg, serverURL)
}

func pngInput(model string) port.InvokeInput {
	return port.InvokeInput{
		Model:   model,
		Payload: domain.RasterPayload{Data: "iVBORw0KGgo=", MediaType: "image/png"},
	}
}

func TestOpenAIInvoker_Invoke_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		assert.Equal(t, float64(1000), reqBody["max_tokens"])
		assert.Equal(t, "json_object", reqBody["response_format"].(map[string]interface{})["type"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)

		textBlock := content[0].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], invoker.DateOfBirthKey)

		imgBlock := content[1].(map[string]interface{})
		assert.Equal(t, "image_url", imgBlock["type"])
		url := imgBlock["image_url"].(map[string]interface{})["url"]
		assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", url)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"{\"name\":\"Jane\"}"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":812,"completion_tokens":40,"total_tokens":852}
		}`))
	}))
	defer server.Close()

	inv := newOpenAITestInvoker(server.URL)

	out, err := inv.Invoke(context.Background(), pngInput("gpt-4o-mini"))

	require.NoError(t, err)
	assert.Equal(t, `{"name":"Jane"}`, out.Text)
	assert.Equal(t, domain.TokenUsage{PromptTokens: 812, CompletionTokens: 40, TotalTokens: 852}, out.Usage)
}

func TestOpenAIInvoker_Invoke_MissingUsageDefaultsToZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	out, err := newOpenAITestInvoker(server.URL).Invoke(context.Background(), pngInput("gpt-4o"))

	require.NoError(t, err)
	assert.Equal(t, domain.TokenUsage{}, out.Usage)
}

func TestOpenAIInvoker_Invoke_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image"}}`))
	}))
	defer server.Close()

	out, err := newOpenAITestInvoker(server.URL).Invoke(context.Background(), pngInput("gpt-4o"))

	assert.Nil(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Invalid image")
}

func TestOpenAIInvoker_Invoke_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newOpenAITestInvoker(server.URL).Invoke(context.Background(), pngInput("gpt-4o"))

	var rlErr *invoker.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, float64(7), rlErr.RetryAfter.Seconds())
}

func TestOpenAIInvoker_Invoke_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newOpenAITestInvoker(server.URL).Invoke(context.Background(), pngInput("gpt-4o"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIInvoker_Invoke_NonJSONContentIsReturnedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"I cannot read this."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	out, err := newOpenAITestInvoker(server.URL).Invoke(context.Background(), pngInput("gpt-4o"))

	require.NoError(t, err)
	assert.Equal(t, "I cannot read this.", out.Text)
}
