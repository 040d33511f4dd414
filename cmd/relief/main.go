package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/couchcryptid/storm-relief-allocator/internal/adapter/allocator"
	httpadapter "github.com/couchcryptid/storm-relief-allocator/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-relief-allocator/internal/adapter/kafka"
	"github.com/couchcryptid/storm-relief-allocator/internal/config"
	"github.com/couchcryptid/storm-relief-allocator/internal/observability"
	"github.com/couchcryptid/storm-relief-allocator/internal/pipeline"
	"github.com/couchcryptid/storm-relief-allocator/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := allocator.NewClient(cfg.AllocatorURL, cfg.AllocatorTimeout, metrics, logger)

	// Outcome publishing is feature-flagged via KAFKA_BROKERS.
	var publisher pipeline.OutcomePublisher
	var writer *kafkaadapter.Writer
	if cfg.PublishEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.PublishEnabled.Set(1)
		logger.Info("outcome publishing enabled", "topic", cfg.KafkaOutcomeTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("outcome publishing disabled")
	}

	store := session.NewStore(session.Inputs{
		Supplies: strconv.FormatFloat(cfg.DefaultSupplies, 'f', -1, 64),
	})
	p := pipeline.New(client, store, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("allocation form ready", "addr", cfg.HTTPAddr, "allocator_url", client.Endpoint())

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
