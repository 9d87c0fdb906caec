// Package normalizer turns raw model completions into structured extractions.
package normalizer

import (
	"bytes"
	"encoding/json"
	"strings"

	"docextract/internal/domain"
)

// Result is the outcome of normalizing one completion. Exactly one field is set.
type Result struct {
	Data    map[string]any
	Failure *domain.ExtractionFailure
}

// Normalize parses text as a JSON object. Anything else, including valid JSON whose top level
// is not an object, becomes a parse failure that carries the original text verbatim.
func Normalize(text string) Result {
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(stripFence(text))))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil || data == nil || dec.More() {
		return Result{Failure: &domain.ExtractionFailure{
			Kind:             domain.AttemptParseFailure,
			Message:          domain.ParseFailureTag,
			OriginalResponse: text,
		}}
	}
	return Result{Data: data}
}

// stripFence removes surrounding whitespace and a single ```json ... ``` fence.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}
