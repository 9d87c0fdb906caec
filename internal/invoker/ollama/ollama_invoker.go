package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"

	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/invoker"
	"docextract/internal/port"
)

// generator is the subset of llms.Model the invoker needs.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Invoker implements port.ModelInvoker against a local Ollama server through langchaingo.
// The model is chosen per call, so one invoker serves every configured Ollama model.
type Invoker struct {
	llm       generator
	maxTokens int
}

// NewInvoker creates an Ollama-backed invoker. cfg.Endpoint is the Ollama server URL.
func NewInvoker(cfg *config.ProviderConfig) (*Invoker, error) {
	llm, err := lcollama.New(
		lcollama.WithServerURL(cfg.Endpoint),
		lcollama.WithFormat("json"),
		lcollama.WithHTTPClient(&http.Client{Timeout: cfg.Timeout(300 * time.Second)}),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}
	return NewInvokerWithModel(llm, cfg.MaxTokens), nil
}

// NewInvokerWithModel wraps an existing langchaingo model (for testing).
func NewInvokerWithModel(llm generator, maxTokens int) *Invoker {
	return &Invoker{llm: llm, maxTokens: maxTokens}
}

func (p *Invoker) Invoke(ctx context.Context, input port.InvokeInput) (*port.Completion, error) {
	image, err := base64.StdEncoding.DecodeString(input.Payload.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	callOpts := []llms.CallOption{llms.WithModel(input.Model)}
	if p.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(p.maxTokens))
	}

	resp, err := p.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(input.Payload.MediaType, image),
				llms.TextPart(invoker.ExtractionPrompt),
			},
		},
	}, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from ollama: no choices")
	}

	choice := resp.Choices[0]
	return &port.Completion{
		Text:  choice.Content,
		Usage: usageFromInfo(choice.GenerationInfo),
	}, nil
}

func usageFromInfo(info map[string]any) domain.TokenUsage {
	usage := domain.TokenUsage{
		PromptTokens:     intFromInfo(info, "PromptTokens"),
		CompletionTokens: intFromInfo(info, "CompletionTokens"),
		TotalTokens:      intFromInfo(info, "TotalTokens"),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return usage
}

func intFromInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
