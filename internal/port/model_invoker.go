package port

import (
	"context"

	"docextract/internal/domain"
)

// InvokeInput carries the data for one extraction call to one model.
type InvokeInput struct {
	Model   string
	Payload domain.RasterPayload
}

// Completion is the raw text a model returned, plus its token usage.
type Completion struct {
	Text  string
	Usage domain.TokenUsage
}

// ModelInvoker abstracts a vision-capable LLM provider.
type ModelInvoker interface {
	Invoke(ctx context.Context, input InvokeInput) (*Completion, error)
}

// ModelBinding pairs a configured model id with the invoker that serves it.
type ModelBinding struct {
	Model   string
	Invoker ModelInvoker
}
