package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docextract/internal/domain"
	"docextract/internal/report"
)

func ms(v int64) *int64 { return &v }

func sampleRecords() []domain.LogRecord {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return []domain.LogRecord{
		{Timestamp: ts, Model: "gpt-4o", Kind: domain.AttemptSuccess, ResponseTimeMs: ms(1000),
			Tokens: &domain.TokenUsage{PromptTokens: 90, CompletionTokens: 10, TotalTokens: 100}},
		{Timestamp: ts, Model: "gpt-4o-mini", Kind: domain.AttemptInvocationFailure, Error: "status 500"},
		{Timestamp: ts, Model: "gpt-4o", Kind: domain.AttemptParseFailure, ResponseTimeMs: ms(3000),
			Tokens:   &domain.TokenUsage{TotalTokens: 50},
			Response: map[string]any{"error": domain.ParseFailureTag, "originalResponse": "nope"}},
	}
}

func TestSummarize(t *testing.T) {
	got := report.Summarize(sampleRecords())

	require.Len(t, got, 2)
	assert.Equal(t, report.ModelSummary{
		Model: "gpt-4o", Attempts: 2, Successes: 1, ParseFailures: 1, AvgResponseMs: 2000, TotalTokens: 150,
	}, got[0])
	assert.Equal(t, report.ModelSummary{
		Model: "gpt-4o-mini", Attempts: 1, InvocationFailures: 1,
	}, got[1])
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, report.Summarize(nil))
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteWorkbook(&buf, sampleRecords(), 2))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows(report.SummarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 3)
	assert.Equal(t, "Model", summary[0][0])
	assert.Equal(t, []string{"gpt-4o", "2", "1", "1", "0", "2000", "150"}, summary[1])
	assert.Equal(t, "gpt-4o-mini", summary[2][0])
	last := summary[len(summary)-1]
	assert.Equal(t, []string{"Skipped lines", "2"}, last)

	attempts, err := f.GetRows(report.AttemptsSheet)
	require.NoError(t, err)
	require.Len(t, attempts, 4)
	assert.Equal(t, "invocation_failure", attempts[2][3])
	assert.Equal(t, "status 500", attempts[2][len(attempts[2])-1])
	assert.Equal(t, domain.ParseFailureTag, attempts[3][8])
}

func TestSummarizeFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "model_logs.txt")
	lines := strings.Join([]string{
		`{"timestamp":"2026-03-14T09:00:00Z","model":"gpt-4o","kind":"success","responseTimeMs":10,"tokens":{"promptTokens":1,"completionTokens":1,"totalTokens":2},"response":{}}`,
		`garbage`,
		`{"timestamp":"2026-03-14T09:00:01Z","model":"claude-sonnet-4-20250514","kind":"invocation_failure","error":"timeout"}`,
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(logPath, []byte(lines), 0o644))
	outPath := filepath.Join(dir, "report.xlsx")

	stats, err := report.SummarizeFile(logPath, outPath)

	require.NoError(t, err)
	assert.Equal(t, report.Stats{Records: 2, Skipped: 1, Models: 2}, stats)
	assert.FileExists(t, outPath)
}

func TestSummarizeFile_MissingLog(t *testing.T) {
	_, err := report.SummarizeFile(filepath.Join(t.TempDir(), "nope.txt"), filepath.Join(t.TempDir(), "r.xlsx"))

	assert.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "model_logs.txt")
	lines := `{"timestamp":"2026-03-14T09:00:00Z","model":"gpt-4o","kind":"success","responseTimeMs":10,"response":{"a":"b"}}` + "\n" +
		"{broken\n"
	require.NoError(t, os.WriteFile(logPath, []byte(lines), 0o644))
	outPath := filepath.Join(dir, "attempts.csv")

	stats, err := report.ExportCSV(logPath, outPath)

	require.NoError(t, err)
	assert.Equal(t, report.Stats{Records: 1, Skipped: 1, Models: 1}, stats)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(data), "gpt-4o,success,10")
}
