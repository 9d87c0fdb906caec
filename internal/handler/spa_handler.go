package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// SPAHandler serves a built frontend, falling back to index.html for client-side routes.
type SPAHandler struct {
	root string
}

// NewSPAHandler creates a new SPAHandler rooted at dir.
func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{root: dir}
}

// Serve is registered as the engine's NoRoute handler.
func (h *SPAHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
		return
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
		return
	}

	candidate := filepath.Join(h.root, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		c.File(candidate)
		return
	}
	c.File(filepath.Join(h.root, "index.html"))
}
