package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// UploadedDocument is a file received from a client and parked on local disk for the
// duration of one extraction request. The request lifecycle owns Path and removes it.
type UploadedDocument struct {
	Path         string
	MediaType    string
	Size         int64
	OriginalName string
}

// RasterPayload is the base64-encoded single image sent to every model.
type RasterPayload struct {
	Data      string
	MediaType string
}

// DataURI renders the payload as a data: URI for providers that take image URLs.
func (p RasterPayload) DataURI() string {
	return "data:" + p.MediaType + ";base64," + p.Data
}

// TokenUsage holds upstream token counters. Missing counters stay zero.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// ExtractionFailure describes why a model produced no usable extraction.
// OriginalResponse is only set for parse failures.
type ExtractionFailure struct {
	Kind             AttemptKind
	Message          string
	OriginalResponse string
}

// ModelAttempt is the finalized outcome of one (request, model) pair.
// Exactly one of Extraction and Failure is set.
type ModelAttempt struct {
	Model      string
	StartedAt  time.Time
	Elapsed    time.Duration
	Usage      TokenUsage
	Extraction map[string]any
	Failure    *ExtractionFailure
}

// Kind reports the outcome classification of the attempt.
func (a *ModelAttempt) Kind() AttemptKind {
	if a.Failure != nil {
		return a.Failure.Kind
	}
	return AttemptSuccess
}

// Record converts the attempt into its log representation, stamped at the given time.
func (a *ModelAttempt) Record(requestID string, at time.Time) LogRecord {
	rec := LogRecord{
		Timestamp: at.UTC(),
		RequestID: requestID,
		Model:     a.Model,
		Kind:      a.Kind(),
	}

	if a.Failure != nil && a.Failure.Kind == AttemptInvocationFailure {
		rec.Error = a.Failure.Message
		return rec
	}

	elapsed := a.Elapsed.Milliseconds()
	usage := a.Usage
	rec.ResponseTimeMs = &elapsed
	rec.Tokens = &usage

	if a.Failure != nil {
		rec.Response = map[string]any{
			"error":            a.Failure.Message,
			"originalResponse": a.Failure.OriginalResponse,
		}
		return rec
	}
	rec.Response = a.Extraction
	if rec.Response == nil {
		rec.Response = map[string]any{}
	}
	return rec
}

// LogRecord is one line of the append-only attempt log. It is also the per-model entry
// returned to the caller.
type LogRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	RequestID      string         `json:"requestId,omitempty"`
	Model          string         `json:"model"`
	Kind           AttemptKind    `json:"kind"`
	ResponseTimeMs *int64         `json:"responseTimeMs,omitempty"`
	Tokens         *TokenUsage    `json:"tokens,omitempty"`
	Response       map[string]any `json:"response,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// MarshalJSON always writes response for records that reached a model response,
// including an empty extraction. Invocation failures carry error only.
func (r LogRecord) MarshalJSON() ([]byte, error) {
	type plain LogRecord
	if r.Kind == AttemptInvocationFailure {
		return json.Marshal(plain(r))
	}
	resp := r.Response
	if resp == nil {
		resp = map[string]any{}
	}
	return json.Marshal(struct {
		plain
		Response map[string]any `json:"response"`
	}{plain(r), resp})
}

// AggregatedResult holds one LogRecord per configured model, in configured order.
type AggregatedResult []LogRecord

// Get returns the entry for a model.
func (r AggregatedResult) Get(model string) (LogRecord, bool) {
	for _, rec := range r {
		if rec.Model == model {
			return rec, true
		}
	}
	return LogRecord{}, false
}

// Models lists the model ids in aggregate order.
func (r AggregatedResult) Models() []string {
	ids := make([]string, 0, len(r))
	for _, rec := range r {
		ids = append(ids, rec.Model)
	}
	return ids
}

// MarshalJSON encodes the aggregate as an object keyed by model id, preserving order.
func (r AggregatedResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.Model)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExtractionResult is the success payload of one extraction request.
type ExtractionResult struct {
	RequestID string
	Aggregate AggregatedResult
	Warnings  []string
}
