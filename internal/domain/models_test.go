package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/domain"
)

var stamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRecord_EmptyExtractionKeepsResponse(t *testing.T) {
	attempt := &domain.ModelAttempt{Model: "gpt-4o", Extraction: map[string]any{}, Elapsed: 40 * time.Millisecond}

	rec := attempt.Record("req-1", stamp)

	require.NotNil(t, rec.Response)
	assert.Empty(t, rec.Response)
	out := decode(t, rec)
	assert.Equal(t, "success", out["kind"])
	require.Contains(t, out, "response")
	assert.Equal(t, map[string]any{}, out["response"])
}

func TestLogRecord_MarshalNilResponseOnSuccess(t *testing.T) {
	rec := domain.LogRecord{Timestamp: stamp, Model: "gpt-4o", Kind: domain.AttemptSuccess}

	out := decode(t, rec)

	assert.Equal(t, map[string]any{}, out["response"])
}

func TestLogRecord_MarshalInvocationFailureOmitsResponse(t *testing.T) {
	attempt := &domain.ModelAttempt{
		Model:   "gpt-4o",
		Failure: &domain.ExtractionFailure{Kind: domain.AttemptInvocationFailure, Message: "boom"},
	}

	out := decode(t, attempt.Record("req-1", stamp))

	assert.NotContains(t, out, "response")
	assert.NotContains(t, out, "responseTimeMs")
	assert.NotContains(t, out, "tokens")
	assert.Equal(t, "boom", out["error"])
	assert.Equal(t, "invocation_failure", out["kind"])
}

func TestLogRecord_MarshalParseFailure(t *testing.T) {
	attempt := &domain.ModelAttempt{
		Model: "gpt-4o",
		Failure: &domain.ExtractionFailure{
			Kind:             domain.AttemptParseFailure,
			Message:          domain.ParseFailureTag,
			OriginalResponse: "not json",
		},
	}

	out := decode(t, attempt.Record("", stamp))

	assert.Equal(t, map[string]any{
		"error":            domain.ParseFailureTag,
		"originalResponse": "not json",
	}, out["response"])
	assert.NotContains(t, out, "requestId")
}

func TestLogRecord_RoundTripKeepsFields(t *testing.T) {
	ms := int64(12)
	rec := domain.LogRecord{
		Timestamp:      stamp,
		RequestID:      "req-9",
		Model:          "claude",
		Kind:           domain.AttemptSuccess,
		ResponseTimeMs: &ms,
		Tokens:         &domain.TokenUsage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
		Response:       map[string]any{"total": "10"},
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	var back domain.LogRecord
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.True(t, rec.Timestamp.Equal(back.Timestamp))
	back.Timestamp = rec.Timestamp
	assert.Equal(t, rec, back)
}

func TestAggregatedResult_EmptyExtractionEntry(t *testing.T) {
	agg := domain.AggregatedResult{
		(&domain.ModelAttempt{Model: "a", Extraction: map[string]any{}}).Record("r", stamp),
	}

	out := decode(t, agg)

	entry, ok := out["a"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{}, entry["response"])
}
