package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	fetchadapter "github.com/couchcryptid/waterflow-etl/internal/adapter/fetch"
	httpadapter "github.com/couchcryptid/waterflow-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/waterflow-etl/internal/adapter/kafka"
	"github.com/couchcryptid/waterflow-etl/internal/config"
	"github.com/couchcryptid/waterflow-etl/internal/observability"
	"github.com/couchcryptid/waterflow-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		logger.Error("failed to load geometry sources", "error", err)
		os.Exit(1)
	}

	fetcher := fetchadapter.NewClient(cfg.FetchTimeout, logger)
	reconciler := pipeline.NewReconciler(fetcher, cfg.TableURL, sources, logger, metrics)
	loader := pipeline.NewLoader(reconciler, logger, metrics)

	// Kafka sink is feature-flagged; without it the snapshot is only
	// served over HTTP.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, loader, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Kick off the one-shot load; /features callers arriving earlier wait
	// on the same run.
	go func() {
		features, err := loader.Get(ctx)
		if err != nil {
			logger.Error("flow feature load failed", "error", err)
			return
		}
		if writer == nil {
			return
		}
		if err := writer.PublishFeatures(ctx, features); err != nil {
			logger.Error("kafka publish failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
