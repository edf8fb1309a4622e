// Command worker runs the background bulk re-embedding consumer: it drains
// index tasks enqueued by domain.IndexQueue and ingests each CV through the
// same extract -> chunk -> embed -> store path the HTTP API uses for
// synchronous uploads.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cvqa/retrieval-engine/internal/adapter/observability"
	"github.com/cvqa/retrieval-engine/internal/adapter/queue/redpanda"
	"github.com/cvqa/retrieval-engine/internal/app"
	"github.com/cvqa/retrieval-engine/internal/config"
	"github.com/cvqa/retrieval-engine/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.SetAppEnv(cfg.AppEnv)
	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker", slog.String("env", cfg.AppEnv))

	ctx := context.Background()
	ingest, _, err := app.BuildIngestService(ctx, cfg)
	if err != nil {
		slog.Error("wiring failed", slog.Any("error", err))
		os.Exit(1)
	}

	dlq, err := redpanda.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		slog.Error("dlq producer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer dlq.Close()

	retryCfg := retryConfigFromAppConfig(cfg)

	consumer, err := redpanda.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, ingest, dlq, retryCfg)
	if err != nil {
		slog.Error("consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer consumer.Close()

	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("background indexer started", slog.Any("brokers", cfg.KafkaBrokers), slog.String("group", cfg.KafkaConsumerGroup))
		errCh <- consumer.Run(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("signal received, shutting down", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			slog.Error("consumer stopped with error", slog.Any("error", err))
		}
	}
	cancel()
	slog.Info("worker stopped")
}

// retryConfigFromAppConfig maps the env-configured retry knobs onto the
// domain's retryable/non-retryable error taxonomy.
func retryConfigFromAppConfig(cfg config.Config) domain.RetryConfig {
	base := domain.DefaultRetryConfig()
	c := cfg.GetRetryConfig()
	return domain.RetryConfig{
		MaxRetries:         c.MaxRetries,
		InitialDelay:       c.InitialDelay,
		MaxDelay:           c.MaxDelay,
		Multiplier:         c.Multiplier,
		Jitter:             c.Jitter,
		RetryableErrors:    base.RetryableErrors,
		NonRetryableErrors: base.NonRetryableErrors,
	}
}
