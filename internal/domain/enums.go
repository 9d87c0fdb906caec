package domain

import (
	"mime"
	"strings"
)

const (
	MediaTypePDF = "application/pdf"
	MediaTypePNG = "image/png"
)

// IsPDF reports whether a declared media type denotes a PDF. Parameters are ignored.
func IsPDF(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mt == MediaTypePDF
}

// AttemptKind classifies a model attempt.
type AttemptKind string

const (
	AttemptSuccess           AttemptKind = "success"
	AttemptInvocationFailure AttemptKind = "invocation_failure"
	AttemptParseFailure      AttemptKind = "parse_failure"
)

// ParseFailureTag is the fixed error tag recorded when a model's output is not a JSON object.
const ParseFailureTag = "Failed to parse LLM response"
