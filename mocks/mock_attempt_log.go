package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docextract/internal/domain"
)

// MockAttemptLog is a mock implementation of port.AttemptLog.
type MockAttemptLog struct {
	mock.Mock
}

func (m *MockAttemptLog) Append(ctx context.Context, rec domain.LogRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
