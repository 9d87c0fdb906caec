package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docextract/internal/domain"
	"docextract/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError holds error details in the response.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}, warnings ...string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Warnings:  warnings,
		Timestamp: time.Now().UTC(),
	})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	apiErr := &APIError{Code: code, Message: msg}
	if status >= 500 {
		apiErr.RequestID = middleware.GetRequestID(c)
	}
	c.JSON(status, APIResponse{
		Success:   false,
		Error:     apiErr,
		Timestamp: time.Now().UTC(),
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Server-side failures carry the error text as a diagnostic message.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNoDocument):
		return http.StatusBadRequest, "NO_DOCUMENT", "No file uploaded"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrRasterizationFailed):
		return http.StatusInternalServerError, "RASTERIZATION_FAILED", err.Error()
	case errors.Is(err, domain.ErrInvalidModelConfig):
		return http.StatusInternalServerError, "INVALID_MODEL_CONFIG", err.Error()
	default:
		return http.StatusInternalServerError, "EXTRACTION_FAILED", err.Error()
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Server-side failures are logged through logger.
func HandleError(c *gin.Context, logger *slog.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		logger.Error("handler: request failed",
			"request_id", middleware.GetRequestID(c), "code", code, "error", err)
	}
	RespondError(c, status, code, msg)
}
