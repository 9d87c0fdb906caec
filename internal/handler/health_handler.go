package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	uploadDir string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(uploadDir string) *HealthHandler {
	return &HealthHandler{uploadDir: uploadDir}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	f, err := os.CreateTemp(h.uploadDir, ".readyz-*")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "upload directory not writable"})
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
