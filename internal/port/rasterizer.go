package port

import (
	"context"

	"docextract/internal/domain"
)

// Rasterizer turns an uploaded document into a single image payload.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, mediaType string) (*domain.RasterPayload, error)
}

// PageRenderer renders a document URL and returns raw screenshot bytes.
type PageRenderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}
