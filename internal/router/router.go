package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "docextract/docs" // registers the OpenAPI document
	"docextract/internal/handler"
	"docextract/internal/middleware"
)

// Options holds the optional parts of the engine.
type Options struct {
	AllowedOrigins []string
	StaticDir      string
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger *slog.Logger,
	extractH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
	opts Options,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.POST("/extractions", extractH.Extract)

	// Path the bundled frontend posts to.
	r.POST("/upload", extractH.Extract)

	if opts.StaticDir != "" {
		r.NoRoute(handler.NewSPAHandler(opts.StaticDir).Serve)
	}

	return r
}
