package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"docextract/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Timestamp",
	"Request ID",
	"Model",
	"Kind",
	"Response Time (ms)",
	"Prompt Tokens",
	"Completion Tokens",
	"Total Tokens",
	"Error",
	"Response",
}

// Writer wraps csv.Writer for exporting attempt records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of attempt records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.LogRecord) error {
	for i := range records {
		if err := w.csv.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// recordToRow converts a single record to a row. Timing and token columns stay
// empty for invocation failures, which never reached the model.
func recordToRow(rec *domain.LogRecord) []string {
	row := make([]string, len(columns))

	row[0] = rec.Timestamp.UTC().Format(time.RFC3339Nano)
	row[1] = rec.RequestID
	row[2] = rec.Model
	row[3] = string(rec.Kind)
	if rec.ResponseTimeMs != nil {
		row[4] = strconv.FormatInt(*rec.ResponseTimeMs, 10)
	}
	if rec.Tokens != nil {
		row[5] = strconv.Itoa(rec.Tokens.PromptTokens)
		row[6] = strconv.Itoa(rec.Tokens.CompletionTokens)
		row[7] = strconv.Itoa(rec.Tokens.TotalTokens)
	}
	row[8] = rec.Error
	if rec.Response != nil {
		if b, err := json.Marshal(rec.Response); err == nil {
			row[9] = string(b)
		}
	}

	return row
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _, collapses
// consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_prefix}_{YYYY-MM-DD}.csv for the given day.
func BuildFilename(prefix string, day time.Time) string {
	return fmt.Sprintf("%s_%s.csv", SanitizeFilename(prefix), day.Format("2006-01-02"))
}
