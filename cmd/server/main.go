package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"docextract/internal/attemptlog"
	"docextract/internal/config"
	"docextract/internal/handler"
	"docextract/internal/invoker"
	"docextract/internal/invoker/bedrock"
	"docextract/internal/invoker/claude"
	"docextract/internal/invoker/gemini"
	"docextract/internal/invoker/ollama"
	"docextract/internal/invoker/openai"
	"docextract/internal/port"
	"docextract/internal/rasterizer"
	"docextract/internal/router"
	"docextract/internal/service"
	s3storage "docextract/internal/storage/s3"
)

const shutdownGrace = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog := config.SetupLogger(cfg.Log)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	registerProviders()
	bindings, err := invoker.NewBindings(cfg.Models, &cfg.Providers)
	if err != nil {
		return fmt.Errorf("failed to initialize model invokers: %w", err)
	}

	// Attempt log: local JSON lines, optionally mirrored to S3
	fileLog, err := attemptlog.OpenFileLog(cfg.AttemptLog.Path)
	if err != nil {
		return fmt.Errorf("failed to open attempt log: %w", err)
	}
	defer func() { _ = fileLog.Close() }()

	var attempts port.AttemptLog = fileLog
	if cfg.AttemptLog.ArchiveBucket != "" {
		store, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		attempts = attemptlog.Multi{
			fileLog,
			attemptlog.NewArchive(store, cfg.AttemptLog.ArchiveBucket, cfg.AttemptLog.ArchivePrefix),
		}
		logger.Info("main: archiving attempt records", "bucket", cfg.AttemptLog.ArchiveBucket)
	}

	raster := rasterizer.New(rasterizer.NewChromeRenderer(&cfg.Raster), logger)

	extractSvc, err := service.NewExtractionService(bindings, raster, attempts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction service: %w", err)
	}

	extractH := handler.NewExtractionHandler(extractSvc, &cfg.Upload, logger)
	healthH := handler.NewHealthHandler(cfg.Upload.Dir)

	r := router.Setup(logger, extractH, healthH, router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	models := make([]string, 0, len(bindings))
	for _, b := range bindings {
		models = append(models, b.Model)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("main: server starting", "addr", srv.Addr, "models", models)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("main: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func registerProviders() {
	invoker.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return openai.NewInvoker(cfg), nil
	})
	invoker.RegisterProvider("claude", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return claude.NewInvoker(cfg), nil
	})
	invoker.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		return gemini.NewInvoker(cfg), nil
	})
	invoker.RegisterProvider("ollama", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		inv, err := ollama.NewInvoker(cfg)
		if err != nil {
			return nil, err
		}
		return inv, nil
	})
	invoker.RegisterProvider("bedrock", func(cfg *config.ProviderConfig) (port.ModelInvoker, error) {
		inv, err := bedrock.NewInvoker(cfg)
		if err != nil {
			return nil, err
		}
		return inv, nil
	})
}
