// Package main provides the triage worker entry point.
// Consumes consultation requests, runs them through the consultation service
// and publishes results.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/api/handlers"
	"github.com/dorost/consult-engine/internal/app"
	"github.com/dorost/consult-engine/internal/config"
	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/internal/infrastructure/postgres"
	"github.com/dorost/consult-engine/internal/infrastructure/redpanda"
	"github.com/dorost/consult-engine/internal/observability/metrics"
	"github.com/dorost/consult-engine/internal/observability/tracing"
	"github.com/dorost/consult-engine/internal/worker"
	"github.com/dorost/consult-engine/pkg/circuitbreaker"
	"github.com/dorost/consult-engine/pkg/idempotency"
	"github.com/dorost/consult-engine/pkg/workerpool"
)

const serviceName = "triage-worker"

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
	if len(brokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.ServiceVersion = app.Version
	tcfg.Environment = cfg.Env
	tcfg.OTLPEndpoint = cfg.OTLPEndpoint
	tcfg.SampleRate = cfg.TraceSampleRate
	tp, err := tracing.Init(ctx, tcfg)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}
	defer tp.Shutdown(context.Background())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	// Make sure topics exist before consuming
	admin, err := redpanda.NewAdmin(brokers, logger)
	if err != nil {
		logger.Fatal("admin client creation failed", zap.Error(err))
	}
	if err := admin.EnsureTopics(ctx); err != nil {
		logger.Warn("ensure topics failed", zap.Error(err))
	}
	admin.Close()

	pcfg := redpanda.DefaultProducerConfig()
	pcfg.Brokers = brokers
	pcfg.OnProduced = func(string) { m.IncProduced() }
	producer, err := redpanda.NewProducer(pcfg, logger)
	if err != nil {
		logger.Fatal("producer creation failed", zap.Error(err))
	}
	defer producer.Close()

	checks := []handlers.Check{{Name: "redpanda", Fn: producer.Ping}}

	backend := idempotency.Backend(idempotency.NewMemoryBackend())
	var recorder consultation.EscalationRecorder = redpanda.NewAlertPublisher(producer)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
		backend = idempotency.NewPostgresBackend(pool)
		recorder = postgres.NewEscalationStore(pool, redpanda.TopicTriageAlerts, logger)
		checks = append(checks, handlers.Check{Name: "postgres", Fn: pool.Ping})
	} else {
		logger.Warn("no DATABASE_URL, idempotency keys are kept in memory")
	}

	inboxCfg := idempotency.DefaultConfig()
	inboxCfg.IsTerminal = workerpool.IsPermanent
	inbox := idempotency.New(backend, inboxCfg, logger)
	// Entries left STARTED by a previous crash become retryable right away.
	if n, err := inbox.RecoverStaleEntries(ctx); err != nil {
		logger.Warn("inbox recovery failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("recovered stale inbox entries", zap.Int64("recovered", n))
	}
	inbox.StartCleanup()
	defer inbox.Stop()

	engine, err := app.NewEngine(cfg)
	if err != nil {
		logger.Fatal("engine init failed", zap.Error(err))
	}
	breakers := circuitbreaker.NewManager(logger, m.SetBreakerState)
	service, err := engine.NewService(cfg, breakers, logger,
		consultation.WithRecorder(recorder),
		consultation.WithMetrics(m))
	if err != nil {
		logger.Fatal("consultation service init failed", zap.Error(err))
	}

	handler := worker.NewHandler(service, inbox, producer, redpanda.TopicConsultationResults, logger)

	poolCfg := workerpool.DefaultConfig()
	poolCfg.Workers = cfg.WorkerCount
	poolCfg.OnQueueDepth = m.SetQueueDepth
	workerPool, err := workerpool.New(poolCfg, handler.Task, logger)
	if err != nil {
		logger.Fatal("worker pool creation failed", zap.Error(err))
	}
	workerPool.Start()

	consumerCfg := redpanda.DefaultConsumerConfig()
	consumerCfg.Brokers = brokers
	consumerCfg.GroupID = cfg.ConsumerGroup
	consumer, err := redpanda.NewConsumer(consumerCfg,
		worker.Dispatch(workerPool, producer, redpanda.TopicDeadLetter, m.IncConsumed, logger),
		logger)
	if err != nil {
		logger.Fatal("consumer creation failed", zap.Error(err))
	}
	consumer.Start()

	checks = append(checks, handlers.Check{Name: "worker_pool", Fn: func(context.Context) error {
		if !workerPool.IsHealthy() {
			return errors.New("queue above 90% capacity")
		}
		return nil
	}})
	health := handlers.NewHealthHandler(serviceName, app.Version, breakers, checks...)

	r := chi.NewRouter()
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", zap.Error(err))
		}
	}()

	logger.Info("triage worker started",
		zap.Strings("brokers", brokers),
		zap.String("group", cfg.ConsumerGroup),
		zap.Int("workers", poolCfg.Workers))

	<-ctx.Done()
	logger.Info("shutting down")

	// The consumer goes first so no task is submitted to a stopped pool.
	consumed := consumer.Stop()
	if err := workerPool.Stop(); err != nil {
		logger.Warn("worker pool stop", zap.Error(err))
	}
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(sctx)

	stats := workerPool.Stats()
	produced := producer.Stats()
	logger.Info("triage worker stopped",
		zap.Int64("consumed", consumed.MessagesRead),
		zap.Int64("consume_errors", consumed.ErrorCount),
		zap.Int64("completed", stats.TasksCompleted),
		zap.Int64("failed", stats.TasksFailed),
		zap.Int64("produced", produced.MessagesSent),
		zap.Int64("produce_errors", produced.ErrorCount))
}
