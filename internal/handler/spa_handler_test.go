package handler_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/handler"
)

func newSPAEngine(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	r := gin.New()
	r.NoRoute(handler.NewSPAHandler(dir).Serve)
	return r
}

func TestSPAHandler(t *testing.T) {
	r := newSPAEngine(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"asset", http.MethodGet, "/assets/app.js", http.StatusOK, "console.log(1)"},
		{"client route", http.MethodGet, "/results/123", http.StatusOK, "<html>app</html>"},
		{"unknown api route", http.MethodGet, "/api/v1/nope", http.StatusNotFound, ""},
		{"post", http.MethodPost, "/anything", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
