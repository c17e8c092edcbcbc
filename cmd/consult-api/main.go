// Package main provides the consult API service entry point.
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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/api"
	"github.com/dorost/consult-engine/internal/api/handlers"
	"github.com/dorost/consult-engine/internal/app"
	"github.com/dorost/consult-engine/internal/config"
	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/internal/infrastructure/postgres"
	"github.com/dorost/consult-engine/internal/infrastructure/redpanda"
	"github.com/dorost/consult-engine/internal/observability/metrics"
	"github.com/dorost/consult-engine/internal/observability/tracing"
	"github.com/dorost/consult-engine/pkg/circuitbreaker"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tcfg := tracing.DefaultConfig(api.ServiceName)
	tcfg.ServiceVersion = app.Version
	tcfg.Environment = cfg.Env
	tcfg.OTLPEndpoint = cfg.OTLPEndpoint
	tcfg.SampleRate = cfg.TraceSampleRate
	tp, err := tracing.Init(ctx, tcfg)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tp.Shutdown(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	engine, err := app.NewEngine(cfg)
	if err != nil {
		logger.Fatal("engine init failed", zap.Error(err))
	}

	breakers := circuitbreaker.NewManager(logger, m.SetBreakerState)
	var checks []handlers.Check

	// Escalations go through the outbox when a database is configured,
	// straight to the broker when only Kafka is.
	var recorder consultation.EscalationRecorder
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("database ping failed", zap.Error(err))
		}
		logger.Info("connected to database")

		recorder = postgres.NewEscalationStore(pool, redpanda.TopicTriageAlerts, logger)
		checks = append(checks, handlers.Check{Name: "postgres", Fn: pool.Ping})
	} else if brokers := cfg.Brokers(); len(brokers) > 0 {
		pcfg := redpanda.DefaultProducerConfig()
		pcfg.Brokers = brokers
		pcfg.OnProduced = func(string) { m.IncProduced() }
		producer, err := redpanda.NewProducer(pcfg, logger)
		if err != nil {
			logger.Fatal("producer creation failed", zap.Error(err))
		}
		defer producer.Close()

		recorder = redpanda.NewAlertPublisher(producer)
		checks = append(checks, handlers.Check{Name: "redpanda", Fn: producer.Ping})
	} else {
		logger.Warn("no DATABASE_URL or KAFKA_BROKERS, escalations are only logged")
	}

	store := consultation.NewStore(cfg.SessionTTL, logger)
	go store.Run(ctx, time.Minute)

	opts := []consultation.Option{consultation.WithStore(store), consultation.WithMetrics(m)}
	if recorder != nil {
		opts = append(opts, consultation.WithRecorder(recorder))
	}
	service, err := engine.NewService(cfg, breakers, logger, opts...)
	if err != nil {
		logger.Fatal("consultation service init failed", zap.Error(err))
	}

	router := api.NewRouter(api.Handlers{
		Engine:       handlers.NewEngineHandler(engine.KB, engine.Router, engine.Matcher, engine.Policy, m, logger),
		Consultation: handlers.NewConsultationHandler(service, logger),
		Health:       handlers.NewHealthHandler(api.ServiceName, app.Version, breakers, checks...),
		Metrics:      m.Handler(),
	}, cfg.APIKeys(), logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.AgentTimeout*time.Duration(len(service.StageNames())),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting consult API",
		zap.String("port", cfg.Port),
		zap.Strings("stages", service.StageNames()),
		zap.Bool("agent", cfg.AgentBaseURL != ""),
		zap.Bool("auth", len(cfg.APIKeys()) > 0))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
