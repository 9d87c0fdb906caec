package attemptlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"docextract/internal/domain"
)

const maxLineBytes = 16 << 20

// ReadRecords parses a JSON-lines attempt log. Blank lines are ignored and lines that
// do not decode are counted in skipped rather than failing the read.
func ReadRecords(r io.Reader) (records []domain.LogRecord, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec domain.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.Model == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, skipped, fmt.Errorf("reading attempt log: %w", err)
	}
	return records, skipped, nil
}
