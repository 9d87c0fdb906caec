package handler

import "time"

// Swagger type definitions for API documentation.

// AttemptRecord documents one model's entry in an extraction response.
type AttemptRecord struct {
	Timestamp      time.Time              `json:"timestamp" example:"2026-03-14T09:26:53Z"`
	RequestID      string                 `json:"requestId" example:"3f0c9a52-5d2e-4d7a-9a43-0c1b8e6c2f11"`
	Model          string                 `json:"model" example:"gpt-4o"`
	Kind           string                 `json:"kind" example:"success" enums:"success,invocation_failure,parse_failure"`
	ResponseTimeMs int64                  `json:"responseTimeMs,omitempty" example:"2840"`
	Tokens         *TokenUsageBody        `json:"tokens,omitempty"`
	Response       map[string]interface{} `json:"response,omitempty" swaggertype:"object"`
	Error          string                 `json:"error,omitempty" example:"openai API error (status 401): invalid api key"`
}

// TokenUsageBody documents upstream token counters.
type TokenUsageBody struct {
	PromptTokens     int `json:"promptTokens" example:"812"`
	CompletionTokens int `json:"completionTokens" example:"64"`
	TotalTokens      int `json:"totalTokens" example:"876"`
}

// ExtractionResponse is the success envelope; data is keyed by model id.
type ExtractionResponse struct {
	Success   bool                     `json:"success" example:"true"`
	Data      map[string]AttemptRecord `json:"data"`
	Warnings  []string                 `json:"warnings,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// ErrorResponseBody is the error envelope.
type ErrorResponseBody struct {
	Success   bool      `json:"success" example:"false"`
	Error     APIError  `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
