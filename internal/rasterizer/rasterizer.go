package rasterizer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"docextract/internal/domain"
	"docextract/internal/port"
)

// PageCounter reports the number of pages in a PDF file, failing on malformed input.
type PageCounter func(path string) (int, error)

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithPageCounter replaces the PDF preflight (for testing).
func WithPageCounter(pc PageCounter) Option {
	return func(r *Rasterizer) { r.countPages = pc }
}

// Rasterizer implements port.Rasterizer. Images pass through untouched; PDFs are rendered
// by a PageRenderer and captured as a single PNG.
type Rasterizer struct {
	renderer   port.PageRenderer
	countPages PageCounter
	logger     *slog.Logger
}

// New creates a Rasterizer backed by the given renderer.
func New(renderer port.PageRenderer, logger *slog.Logger, opts ...Option) *Rasterizer {
	r := &Rasterizer{
		renderer:   renderer,
		countPages: PDFPageCount,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Rasterizer) Rasterize(ctx context.Context, path, mediaType string) (*domain.RasterPayload, error) {
	if !domain.IsPDF(mediaType) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading document: %w", err)
		}
		return &domain.RasterPayload{
			Data:      base64.StdEncoding.EncodeToString(data),
			MediaType: mediaType,
		}, nil
	}

	pages, err := r.countPages(path)
	if err != nil {
		return nil, fmt.Errorf("validating pdf: %w", err)
	}
	if pages > 1 {
		r.logger.Warn("rasterizer.Rasterize: multi-page pdf, only the first render is captured",
			"path", path, "pages", pages)
	}

	docURL, err := fileURL(path)
	if err != nil {
		return nil, err
	}

	shot, err := r.renderer.Render(ctx, docURL)
	if err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	if len(shot) == 0 {
		return nil, fmt.Errorf("rendering pdf: empty screenshot")
	}

	return &domain.RasterPayload{
		Data:      base64.StdEncoding.EncodeToString(shot),
		MediaType: domain.MediaTypePNG,
	}, nil
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving document path: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
