// Package report turns an attempt log into an operator-facing xlsx workbook.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"docextract/internal/attemptlog"
	"docextract/internal/csvexport"
	"docextract/internal/domain"
)

const (
	SummarySheet  = "Summary"
	AttemptsSheet = "Attempts"
)

// ModelSummary aggregates every logged attempt for one model.
type ModelSummary struct {
	Model              string
	Attempts           int
	Successes          int
	ParseFailures      int
	InvocationFailures int
	AvgResponseMs      float64
	TotalTokens        int
}

// Stats describes one summarize run.
type Stats struct {
	Records int
	Skipped int
	Models  int
}

// Summarize groups records by model, in order of first appearance.
// Average response time only counts attempts that carry timing.
func Summarize(records []domain.LogRecord) []ModelSummary {
	var out []ModelSummary
	index := map[string]int{}
	timed := map[string]int{}
	totalMs := map[string]int64{}

	for _, rec := range records {
		i, ok := index[rec.Model]
		if !ok {
			i = len(out)
			index[rec.Model] = i
			out = append(out, ModelSummary{Model: rec.Model})
		}
		s := &out[i]
		s.Attempts++
		switch rec.Kind {
		case domain.AttemptSuccess:
			s.Successes++
		case domain.AttemptParseFailure:
			s.ParseFailures++
		case domain.AttemptInvocationFailure:
			s.InvocationFailures++
		}
		if rec.ResponseTimeMs != nil {
			timed[rec.Model]++
			totalMs[rec.Model] += *rec.ResponseTimeMs
		}
		if rec.Tokens != nil {
			s.TotalTokens += rec.Tokens.TotalTokens
		}
	}

	for i := range out {
		if n := timed[out[i].Model]; n > 0 {
			out[i].AvgResponseMs = float64(totalMs[out[i].Model]) / float64(n)
		}
	}
	return out
}

// WriteWorkbook renders the summary and per-attempt sheets to w.
func WriteWorkbook(w io.Writer, records []domain.LogRecord, skipped int) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(AttemptsSheet); err != nil {
		return fmt.Errorf("create attempts sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	summary := [][]interface{}{{"Model", "Attempts", "Successes", "Parse failures", "Invocation failures", "Avg response (ms)", "Total tokens"}}
	for _, s := range Summarize(records) {
		summary = append(summary, []interface{}{
			s.Model, s.Attempts, s.Successes, s.ParseFailures, s.InvocationFailures, s.AvgResponseMs, s.TotalTokens,
		})
	}
	summary = append(summary, []interface{}{}, []interface{}{"Skipped lines", skipped})
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}

	attempts := [][]interface{}{{"Timestamp", "Request ID", "Model", "Kind", "Response (ms)", "Prompt tokens", "Completion tokens", "Total tokens", "Error"}}
	for _, rec := range records {
		row := []interface{}{rec.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"), rec.RequestID, rec.Model, string(rec.Kind)}
		if rec.ResponseTimeMs != nil {
			row = append(row, *rec.ResponseTimeMs)
		} else {
			row = append(row, "")
		}
		if rec.Tokens != nil {
			row = append(row, rec.Tokens.PromptTokens, rec.Tokens.CompletionTokens, rec.Tokens.TotalTokens)
		} else {
			row = append(row, "", "", "")
		}
		row = append(row, recordError(rec))
		attempts = append(attempts, row)
	}
	if err := writeRows(f, AttemptsSheet, attempts); err != nil {
		return err
	}

	for _, sheet := range []string{SummarySheet, AttemptsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SummarizeFile reads an attempt log from logPath and writes the workbook to outPath.
func SummarizeFile(logPath, outPath string) (Stats, error) {
	records, skipped, err := readLog(logPath)
	if err != nil {
		return Stats{}, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("create report: %w", err)
	}
	if err := WriteWorkbook(out, records, skipped); err != nil {
		_ = out.Close()
		return Stats{}, err
	}
	if err := out.Close(); err != nil {
		return Stats{}, fmt.Errorf("close report: %w", err)
	}

	return Stats{Records: len(records), Skipped: skipped, Models: len(Summarize(records))}, nil
}

// ExportCSV reads an attempt log from logPath and writes every record as CSV to outPath.
// The file starts with a UTF-8 BOM so spreadsheet tools detect the encoding.
func ExportCSV(logPath, outPath string) (Stats, error) {
	records, skipped, err := readLog(logPath)
	if err != nil {
		return Stats{}, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("create export: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := out.Write(csvexport.BOM); err != nil {
		return Stats{}, fmt.Errorf("write export: %w", err)
	}
	w := csvexport.NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return Stats{}, fmt.Errorf("write export: %w", err)
	}
	if err := w.WriteRecords(records); err != nil {
		return Stats{}, fmt.Errorf("write export: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Stats{}, fmt.Errorf("write export: %w", err)
	}
	if err := out.Close(); err != nil {
		return Stats{}, fmt.Errorf("close export: %w", err)
	}

	return Stats{Records: len(records), Skipped: skipped, Models: len(Summarize(records))}, nil
}

func readLog(logPath string) ([]domain.LogRecord, int, error) {
	in, err := os.Open(logPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open attempt log: %w", err)
	}
	defer func() { _ = in.Close() }()
	return attemptlog.ReadRecords(in)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func recordError(rec domain.LogRecord) string {
	if rec.Error != "" {
		return rec.Error
	}
	if rec.Kind == domain.AttemptParseFailure {
		if tag, ok := rec.Response["error"].(string); ok {
			return tag
		}
	}
	return ""
}
