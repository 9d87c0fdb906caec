package attemptlog

import (
	"context"
	"errors"

	"docextract/internal/domain"
	"docextract/internal/port"
)

// Multi fans a record out to every sink. All sinks are attempted; failures are joined.
type Multi []port.AttemptLog

func (m Multi) Append(ctx context.Context, rec domain.LogRecord) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
