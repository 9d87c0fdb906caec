package port

import (
	"context"

	"docextract/internal/domain"
)

// AttemptLog is an append-only store of model attempt records.
type AttemptLog interface {
	Append(ctx context.Context, rec domain.LogRecord) error
}
