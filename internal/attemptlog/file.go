package attemptlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"docextract/internal/domain"
)

// FileLog appends one JSON object per line to a local file.
// Each record is written with a single Write under a mutex, so concurrent
// requests never interleave within a line.
type FileLog struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// OpenFileLog opens (or creates) the log file in append mode.
func OpenFileLog(path string) (*FileLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating attempt log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening attempt log: %w", err)
	}
	return &FileLog{f: f, path: path}, nil
}

// Path returns the file the log writes to.
func (l *FileLog) Path() string { return l.path }

func (l *FileLog) Append(_ context.Context, rec domain.LogRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding attempt record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return fmt.Errorf("attempt log %s is closed", l.path)
	}
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("writing attempt log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Appends after Close fail.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
