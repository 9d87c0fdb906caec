package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/middleware"
	"docextract/internal/service"
)

// multipart framing on top of the file itself
const multipartOverhead = 1 << 20

// ExtractionHandler accepts document uploads and returns per-model extractions.
type ExtractionHandler struct {
	svc       service.ExtractionService
	uploadDir string
	maxBytes  int64
	logger    *slog.Logger
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(svc service.ExtractionService, cfg *config.UploadConfig, logger *slog.Logger) *ExtractionHandler {
	return &ExtractionHandler{
		svc:       svc,
		uploadDir: cfg.Dir,
		maxBytes:  cfg.MaxBytes(),
		logger:    logger,
	}
}

// Extract handles POST /api/v1/extractions and POST /upload
// @Summary Extract structured data from a document
// @Description Upload one image or PDF; every configured model extracts it to JSON. The response holds one entry per model, in configured order.
// @Tags extractions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to extract (image or PDF)"
// @Success 200 {object} ExtractionResponse "Per-model results"
// @Failure 400 {object} ErrorResponseBody "No file uploaded"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Rasterization or extraction failed"
// @Router /extractions [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, h.logger, domain.ErrFileTooLarge)
			return
		}
		HandleError(c, h.logger, domain.ErrNoDocument)
		return
	}
	_ = file.Close()

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		HandleError(c, h.logger, domain.ErrFileTooLarge)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	dst := filepath.Join(h.uploadDir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(header, dst); err != nil {
		_ = os.Remove(dst)
		h.logger.Error("extractionHandler.Extract: failed to save upload", "path", dst, "error", err)
		RespondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "failed to store uploaded file")
		return
	}

	doc := &domain.UploadedDocument{
		Path:         dst,
		MediaType:    declaredMediaType(header.Header.Get("Content-Type"), ext),
		Size:         header.Size,
		OriginalName: header.Filename,
	}

	ctx := service.WithRequestID(c.Request.Context(), middleware.GetRequestID(c))
	result, err := h.svc.Extract(ctx, doc)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, result.Aggregate, result.Warnings...)
}

// declaredMediaType trusts the client's part header, falling back to the file extension.
func declaredMediaType(header, ext string) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	if header != "" {
		return header
	}
	return "application/octet-stream"
}
