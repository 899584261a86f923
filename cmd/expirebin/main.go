package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expirebin/engine/internal/api"
	httpapi "github.com/expirebin/engine/internal/api/http"
	"github.com/expirebin/engine/internal/config"
	"github.com/expirebin/engine/internal/logger"
	"github.com/expirebin/engine/internal/metrics"
	"github.com/expirebin/engine/internal/tracing"
	"github.com/expirebin/engine/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "expirebin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Rotation:   cfg.Logging.Rotation,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	}); err != nil {
		return err
	}

	log := logger.WithComponent("main")
	log.Info().Str("version", version.String()).Msg("Starting expirebin")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tracingConfig := tracing.DefaultTracingConfig()
	tracingConfig.Enabled = cfg.Metrics.TracingEnabled
	tracingConfig.Endpoint = cfg.Metrics.TracingEndpoint
	tracingConfig.ServiceVersion = version.Get().Version
	tracingProvider, err := tracing.NewProvider(tracingConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := tracingProvider.Shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Error shutting down tracing")
		}
	}()

	// Metrics
	var collector *metrics.Collector
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, collector.GetRegistry())
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	server, err := api.NewServer(api.Config{
		HTTPAddr:  cfg.Server.HTTPAddr,
		AuthToken: cfg.Server.AuthToken,
		TLS: httpapi.TLSConfig{
			Enabled:  cfg.Server.TLSEnabled,
			CertFile: cfg.Server.TLSCertFile,
			KeyFile:  cfg.Server.TLSKeyFile,
		},
		DataDir:       cfg.Storage.DataDir,
		ReaperEnabled: cfg.Reaper.Enabled,
		ReapInterval:  cfg.Reaper.Interval,
	}, collector)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info().
		Str("http_addr", cfg.Server.HTTPAddr).
		Str("data_dir", cfg.Storage.DataDir).
		Bool("reaper", cfg.Reaper.Enabled).
		Msg("expirebin ready")

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Error stopping server")
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Error stopping metrics server")
		}
	}

	log.Info().Msg("expirebin stopped")
	return nil
}
