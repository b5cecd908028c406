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

	"connwatch/internal/core/ports"
	"connwatch/internal/core/services"
	archiver "connwatch/internal/infrastructure/archive"
	"connwatch/internal/infrastructure/logfile"
	"connwatch/internal/infrastructure/monitoring"
	"connwatch/internal/infrastructure/notify"
	"connwatch/internal/infrastructure/probe"
	"connwatch/internal/infrastructure/reliability"
	"connwatch/internal/infrastructure/status"
	"connwatch/pkg/archive"
	"connwatch/pkg/circuitbreaker"
	"connwatch/pkg/config"
	"connwatch/pkg/logger"
	"connwatch/pkg/tracing"
	"connwatch/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configFlag := flag.String("config", "", "path to config file")
	flag.Parse()

	// A .env file can supply CONNWATCH_* overrides during development.
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
		ServiceName: "connwatch-monitor",
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

	// Initialize notifier
	var notifier ports.Notifier = notify.NopNotifier{}
	if cfg.Notify.Enabled {
		creds, err := notify.LoadCredentials(cfg.Notify.CredentialsPath)
		if err != nil {
			log.Warnw("pushover notifications disabled", "error", err)
		} else {
			pushover := notify.NewPushoverNotifier(creds, cfg.Notify.Timeout.Std(), log)
			notifier = reliability.NewReliableNotifier(pushover, circuitbreaker.DefaultConfig(), log)
			log.Infow("Pushover notifications enabled", "user", utils.MaskSensitive(creds.User, 4))
		}
	}

	// Initialize probe pipeline
	translog := logfile.NewWriter(cfg.Monitor.LogPath)
	pinger := probe.NewPinger(cfg.Monitor.PingHost, cfg.Monitor.Pings, cfg.Monitor.PingTimeout.Std(), probe.ExecRunner{}, log)
	resolver := probe.NewResolver(cfg.Monitor.DNSHost, cfg.Monitor.DNSTimeout.Std(), log)
	sampler := probe.NewSampler(pinger, resolver, translog, log)

	// Initialize tracker and sinks
	tracker := services.NewHealthTracker(services.TrackerConfig{
		PingHost:             cfg.Monitor.PingHost,
		Trigger:              cfg.Monitor.Trigger,
		DNSTrigger:           cfg.Monitor.DNSTrigger,
		LatencyThresholdMs:   cfg.Monitor.LatencyThresholdMs,
		LossThresholdPercent: cfg.Monitor.LossThresholdPercent,
		DisplayLocation:      cfg.DisplayLocation(),
	}, log)

	publisher := status.NewPublisher(cfg.Monitor.StatusPath, log)
	collector := monitoring.NewPrometheusCollector()

	loop := services.NewLoop(
		cfg.Monitor.Interval.Std(),
		sampler,
		tracker,
		translog,
		notifier,
		publisher,
		collector,
		log,
	)

	if err := translog.Append(true, "Starting Internet Monitor Service"); err != nil {
		log.Errorw("failed to write startup entry", "path", cfg.Monitor.LogPath, "error", err)
	}

	// Prometheus metrics endpoint
	var metricsSrv *http.Server
	if cfg.Monitoring.PrometheusEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Monitoring.PrometheusAddress, Handler: mux}
		go func() {
			log.Infof("Prometheus metrics listening on %s", cfg.Monitoring.PrometheusAddress)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "error", err)
			}
		}()
	}

	// Run the monitor loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Log archiving
	if cfg.Archive.Enabled {
		storage, err := archive.NewFileStorage(cfg.ArchiveDir())
		if err != nil {
			log.Warnw("log archiving disabled", "dir", cfg.ArchiveDir(), "error", err)
		} else {
			sched := archiver.NewScheduler(archive.NewService(storage), cfg.Monitor.LogPath, archiver.Config{
				Interval:      cfg.Archive.Interval.Std(),
				RetentionDays: cfg.Archive.RetentionDays,
			}, log)
			go sched.Start(ctx)
			log.Infof("Log archiving enabled, snapshot every %s, keeping %d days", cfg.Archive.Interval, cfg.Archive.RetentionDays)
		}
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- loop.Run(ctx)
	}()

	log.Infof("Starting internet monitor, pinging %s every %s", cfg.Monitor.PingHost, cfg.Monitor.Interval)

	// Wait for shutdown signal or loop failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalw("monitor loop failed", "error", err)
		}
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
		cancel()
		<-runErr
	}

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("Error during metrics server shutdown", "error", err)
		}
	}

	log.Info("Internet monitor stopped")
}
