package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httphandlers "connwatch/internal/handlers/http"
	"connwatch/internal/infrastructure/livetail"
	"connwatch/internal/infrastructure/middleware"
	"connwatch/internal/infrastructure/status"
	"connwatch/pkg/config"
	"connwatch/pkg/logger"
	"connwatch/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configFlag := flag.String("config", "", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	configPath := config.ResolvePath(*configFlag)
	cfg, loadErr := config.Load(configPath)

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	if loadErr != nil {
		log.Warnw("failed to load config, using defaults", "path", configPath, "error", loadErr)
	}
	for _, note := range cfg.Sanitize() {
		log.Warnw("config value repaired", "note", note)
	}

	// Initialize tracing
	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "connwatch-viewer",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Errorw("failed to shut down tracer provider", "error", err)
		}
	}()

	// Initialize status reader and live log tail
	reader := status.NewReader(cfg.Monitor.StatusPath, cfg.Web.StatusMaxAge.Std(), log)
	hub := livetail.NewHub(log)
	follower := livetail.NewFollower(cfg.Monitor.LogPath, time.Second, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, follower)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// Host allow-list first, then rate limiting, then request logging
	router.Use(middleware.NewAllowlistMiddleware(cfg.Web.AllowedHosts, log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	router.Use(middleware.RequestLoggingMiddleware(logger.NewContextLogger(zapLogger)))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	// Setup viewer routes
	handler := httphandlers.NewViewerHandler(cfg, reader, hub, log)
	handler.SetupRoutes(router)

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Web.Address,
		Handler:      router,
		ReadTimeout:  cfg.Web.ReadTimeout.Std(),
		WriteTimeout: cfg.Web.WriteTimeout.Std(),
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting connection viewer on %s", cfg.Web.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down connection viewer...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout.Std())
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	log.Info("Connection viewer stopped")
}
