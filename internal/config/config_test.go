package config_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/config"
	"docextract/internal/domain"
)

func TestParseModels_Default(t *testing.T) {
	models, err := config.ParseModels(config.DefaultModels)

	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.Equal(t, config.ModelConfig{ID: "gpt-4-turbo", Provider: "openai"}, models[0])
	assert.Equal(t, config.ModelConfig{ID: "gpt-4o-mini", Provider: "openai"}, models[1])
	assert.Equal(t, config.ModelConfig{ID: "gpt-4o", Provider: "openai"}, models[2])
}

func TestParseModels_IDWithColon(t *testing.T) {
	models, err := config.ParseModels(" bedrock:anthropic.claude-3-5-sonnet-20240620-v1:0 , OLLAMA:llava:13b")

	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "bedrock", models[0].Provider)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", models[0].ID)
	assert.Equal(t, "ollama", models[1].Provider)
	assert.Equal(t, "llava:13b", models[1].ID)
}

func TestParseModels_Empty(t *testing.T) {
	_, err := config.ParseModels(" , ")

	assert.ErrorIs(t, err, domain.ErrInvalidModelConfig)
}

func TestParseModels_MissingProvider(t *testing.T) {
	_, err := config.ParseModels("gpt-4o")

	assert.ErrorIs(t, err, domain.ErrInvalidModelConfig)
}

func TestParseModels_Duplicate(t *testing.T) {
	_, err := config.ParseModels("openai:gpt-4o,openai:gpt-4o")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidModelConfig)
	assert.Contains(t, err.Error(), "gpt-4o")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(20*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, "model_logs.txt", cfg.AttemptLog.Path)
	assert.Len(t, cfg.Models, 3)
	assert.Equal(t, 1000, cfg.Providers.OpenAI.MaxTokens)
	assert.Equal(t, "http://localhost:11434", cfg.Providers.Ollama.Endpoint)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCEXTRACT_MODELS", "claude:claude-sonnet-4-20250514,gemini:gemini-2.0-flash")
	t.Setenv("DOCEXTRACT_PROVIDERS_CLAUDE_API_KEY", "sk-ant-test")
	t.Setenv("DOCEXTRACT_ATTEMPT_LOG_PATH", "/tmp/attempts.jsonl")
	t.Setenv("DOCEXTRACT_CORS_ALLOWED_ORIGINS", "https://app.example.com, http://localhost:3000")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Len(t, cfg.Models, 2)
	assert.Equal(t, "claude", cfg.Models[0].Provider)
	assert.Equal(t, "sk-ant-test", cfg.Providers.Claude.APIKey)
	assert.Equal(t, "/tmp/attempts.jsonl", cfg.AttemptLog.Path)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_InvalidModels(t *testing.T) {
	t.Setenv("DOCEXTRACT_MODELS", "openai:gpt-4o,openai:gpt-4o")

	_, err := config.Load()

	assert.ErrorIs(t, err, domain.ErrInvalidModelConfig)
}

func TestProvidersConfig_Get(t *testing.T) {
	p := config.ProvidersConfig{Gemini: config.ProviderConfig{APIKey: "gk"}}

	assert.Equal(t, "gk", p.Get("gemini").APIKey)
	assert.NotNil(t, p.Get("bedrock"))
	assert.Nil(t, p.Get("mistral"))
}

func TestProviderConfig_Timeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, (&config.ProviderConfig{}).Timeout(5*time.Second))
	assert.Equal(t, 30*time.Second, (&config.ProviderConfig{TimeoutSecs: 30}).Timeout(5*time.Second))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, config.ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, config.ParseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelInfo, config.ParseLogLevel("nonsense"))
}

func TestSetupLoggerWithWriters_Fanout(t *testing.T) {
	var console, file bytes.Buffer
	logger := config.SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Info("service.Extract: attempt finished", "model", "gpt-4o")
	logger.Debug("hidden")

	assert.Contains(t, console.String(), "model=gpt-4o")
	assert.Contains(t, file.String(), `"model":"gpt-4o"`)
	assert.NotContains(t, console.String(), "hidden")
}
