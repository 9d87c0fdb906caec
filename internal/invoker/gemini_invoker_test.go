package invoker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/config"
	"docextract/internal/domain"
	gemini "docextract/internal/invoker/gemini"
)

func TestGeminiInvoker_Invoke_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		parts := reqBody["contents"].([]interface{})[0].(map[string]interface{})["parts"].([]interface{})
		inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "image/png", inline["mime_type"])
		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])

		_, _ = w.Write([]byte(`{
			"candidates":[{"content":{"parts":[{"text":"{\"date_of_buuurth\":\"01-01-1990\"}"}]},"finishReason":"STOP"}],
			"usageMetadata":{"promptTokenCount":300,"candidatesTokenCount":20,"totalTokenCount":320}
		}`))
	}))
	defer server.Close()

	inv := gemini.NewInvokerWithEndpoint(&config.ProviderConfig{APIKey: "test-gemini-key"}, server.URL+"/")

	out, err := inv.Invoke(context.Background(), pngInput("gemini-2.0-flash"))

	require.NoError(t, err)
	assert.Equal(t, `{"date_of_buuurth":"01-01-1990"}`, out.Text)
	assert.Equal(t, domain.TokenUsage{PromptTokens: 300, CompletionTokens: 20, TotalTokens: 320}, out.Usage)
}

func TestGeminiInvoker_Invoke_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	inv := gemini.NewInvokerWithEndpoint(&config.ProviderConfig{APIKey: "k"}, server.URL)

	_, err := inv.Invoke(context.Background(), pngInput("gemini-2.0-flash"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiInvoker_Invoke_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`internal`))
	}))
	defer server.Close()

	inv := gemini.NewInvokerWithEndpoint(&config.ProviderConfig{APIKey: "k"}, server.URL)

	_, err := inv.Invoke(context.Background(), pngInput("gemini-2.0-flash"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API error (status 500)")
}
