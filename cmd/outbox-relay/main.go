// Package main provides the outbox relay entry point.
// Publishes escalation alerts written to the outbox table.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/app"
	"github.com/dorost/consult-engine/internal/config"
	"github.com/dorost/consult-engine/internal/infrastructure/postgres"
	"github.com/dorost/consult-engine/internal/infrastructure/redpanda"
	"github.com/dorost/consult-engine/internal/observability/metrics"
	"github.com/dorost/consult-engine/internal/observability/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	brokers := cfg.Brokers()
	if cfg.DatabaseURL == "" || len(brokers) == 0 {
		logger.Fatal("DATABASE_URL and KAFKA_BROKERS are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tcfg := tracing.DefaultConfig("outbox-relay")
	tcfg.ServiceVersion = app.Version
	tcfg.Environment = cfg.Env
	tcfg.OTLPEndpoint = cfg.OTLPEndpoint
	tcfg.SampleRate = cfg.TraceSampleRate
	tp, err := tracing.Init(ctx, tcfg)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}
	defer tp.Shutdown(context.Background())

	m := metrics.New(prometheus.NewRegistry())

	// Connect to database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("connected to database")

	producerCfg := redpanda.DefaultProducerConfig()
	producerCfg.Brokers = brokers
	producerCfg.OnProduced = func(string) { m.IncProduced() }
	producer, err := redpanda.NewProducer(producerCfg, logger)
	if err != nil {
		logger.Fatal("producer creation failed", zap.Error(err))
	}
	defer producer.Close()
	logger.Info("connected to Redpanda", zap.Strings("brokers", brokers))

	outboxCfg := postgres.DefaultOutboxConfig()
	outboxCfg.DeadLetterTopic = redpanda.TopicDeadLetter
	outboxCfg.OnPending = m.SetOutboxPending
	outbox := postgres.NewOutbox(pool, producer, outboxCfg, logger)

	outbox.Start(ctx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	defer srv.Close()

	<-ctx.Done()
	logger.Info("shutting down")
	outbox.Stop()
}
