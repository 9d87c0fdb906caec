package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"docextract/internal/domain"
	"docextract/internal/normalizer"
	"docextract/internal/port"
)

// ExtractionService defines the document extraction contract.
type ExtractionService interface {
	Extract(ctx context.Context, doc *domain.UploadedDocument) (*domain.ExtractionResult, error)
}

type requestIDKey struct{}

// WithRequestID attaches a request id that Extract stamps on every log record.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

type extractionService struct {
	models     []port.ModelBinding
	rasterizer port.Rasterizer
	log        port.AttemptLog
	logger     *slog.Logger
	now        func() time.Time
}

// NewExtractionService creates an ExtractionService that queries models in the given order.
// The model list must be non-empty with unique ids.
func NewExtractionService(
	models []port.ModelBinding,
	rasterizer port.Rasterizer,
	log port.AttemptLog,
	logger *slog.Logger,
) (ExtractionService, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("%w: no models configured", domain.ErrInvalidModelConfig)
	}
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if m.Model == "" || m.Invoker == nil {
			return nil, fmt.Errorf("%w: incomplete model binding %q", domain.ErrInvalidModelConfig, m.Model)
		}
		if seen[m.Model] {
			return nil, fmt.Errorf("%w: duplicate model %q", domain.ErrInvalidModelConfig, m.Model)
		}
		seen[m.Model] = true
	}

	return &extractionService{
		models:     append([]port.ModelBinding(nil), models...),
		rasterizer: rasterizer,
		log:        log,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *extractionService) Extract(ctx context.Context, doc *domain.UploadedDocument) (*domain.ExtractionResult, error) {
	if doc == nil || doc.Path == "" {
		return nil, domain.ErrNoDocument
	}
	defer s.cleanup(doc.Path)

	requestID := requestIDFrom(ctx)

	payload, err := s.rasterizer.Rasterize(ctx, doc.Path, doc.MediaType)
	if err != nil {
		s.logger.Error("extraction.Extract: rasterization failed",
			"request_id", requestID, "media_type", doc.MediaType, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrRasterizationFailed, err)
	}

	result := &domain.ExtractionResult{
		RequestID: requestID,
		Aggregate: make(domain.AggregatedResult, 0, len(s.models)),
	}

	for _, binding := range s.models {
		attempt := s.attempt(ctx, binding, payload)
		rec := attempt.Record(requestID, s.now())

		// Appends outlive a client disconnect; invocations do not.
		if err := s.log.Append(context.WithoutCancel(ctx), rec); err != nil {
			s.logger.Warn("extraction.Extract: failed to append attempt log",
				"request_id", requestID, "model", binding.Model, "error", err)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("attempt log write failed for model %s: %v", binding.Model, err))
		}

		s.logger.Info("extraction.Extract: model attempt finished",
			"request_id", requestID, "model", binding.Model, "kind", rec.Kind, "elapsed", attempt.Elapsed)
		result.Aggregate = append(result.Aggregate, rec)
	}

	return result, nil
}

// attempt runs one model end to end. It always returns a finalized attempt;
// invoker errors and panics become invocation failures.
func (s *extractionService) attempt(ctx context.Context, binding port.ModelBinding, payload *domain.RasterPayload) *domain.ModelAttempt {
	attempt := &domain.ModelAttempt{Model: binding.Model, StartedAt: s.now()}

	start := time.Now()
	completion, err := safeInvoke(ctx, binding, payload)
	attempt.Elapsed = time.Since(start)

	if err != nil {
		attempt.Failure = &domain.ExtractionFailure{
			Kind:    domain.AttemptInvocationFailure,
			Message: err.Error(),
		}
		return attempt
	}

	attempt.Usage = completion.Usage
	parsed := normalizer.Normalize(completion.Text)
	if parsed.Failure != nil {
		attempt.Failure = parsed.Failure
		return attempt
	}
	attempt.Extraction = parsed.Data
	return attempt
}

func safeInvoke(ctx context.Context, binding port.ModelBinding, payload *domain.RasterPayload) (out *port.Completion, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("model %s panicked: %v", binding.Model, r)
		}
	}()

	out, err = binding.Invoker.Invoke(ctx, port.InvokeInput{Model: binding.Model, Payload: *payload})
	if err == nil && out == nil {
		err = errors.New("invoker returned no completion")
	}
	return out, err
}

func (s *extractionService) cleanup(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("extraction.cleanup: failed to remove uploaded document", "path", path, "error", err)
	}
}
