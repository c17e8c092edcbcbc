// Package postgres persists escalation audits and relays their alerts through
// a transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// relayLockID serialises relays across replicas.
const relayLockID int64 = 0x636f6e73756c74

// OutboxEntry is one event waiting to be published.
type OutboxEntry struct {
	ID            int64
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       json.RawMessage
	KafkaTopic    string
	KafkaKey      string
	CreatedAt     time.Time
	RetryCount    int
	LastError     *string
}

// OutboxConfig holds relay settings.
type OutboxConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// MaxRetries failed publishes move an entry to DeadLetterTopic.
	MaxRetries      int
	DeadLetterTopic string
	// Retention of processed rows; zero disables cleanup.
	Retention time.Duration
	// OnPending receives the pending count after every batch.
	OnPending func(pending int)
}

func DefaultOutboxConfig() OutboxConfig {
	return OutboxConfig{
		BatchSize:       100,
		PollInterval:    250 * time.Millisecond,
		MaxRetries:      5,
		DeadLetterTopic: "consultation.dead_letter",
		Retention:       72 * time.Hour,
	}
}

// Publisher sends one record and waits for the acknowledgement.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Outbox relays unprocessed entries to the broker.
type Outbox struct {
	pool      *pgxpool.Pool
	config    OutboxConfig
	publisher Publisher
	logger    *zap.Logger
	tracer    trace.Tracer

	cancel context.CancelFunc
	done   chan struct{}
}

func NewOutbox(pool *pgxpool.Pool, publisher Publisher, cfg OutboxConfig, logger *zap.Logger) *Outbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultOutboxConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.DeadLetterTopic == "" {
		cfg.DeadLetterTopic = def.DeadLetterTopic
	}
	return &Outbox{
		pool:      pool,
		config:    cfg,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer("outbox"),
	}
}

// WriteEntry inserts entry inside the caller's transaction.
func WriteEntry(ctx context.Context, tx pgx.Tx, entry *OutboxEntry) error {
	query := `
		INSERT INTO outbox (aggregate_id, aggregate_type, event_type, payload, kafka_topic, kafka_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		entry.AggregateID,
		entry.AggregateType,
		entry.EventType,
		entry.Payload,
		entry.KafkaTopic,
		entry.KafkaKey,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("write outbox entry: %w", err)
	}
	return nil
}

// Start runs the relay loop until Stop or ctx is done.
func (o *Outbox) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)
	o.done = make(chan struct{})
	go o.run(ctx)
	o.logger.Info("outbox relay started",
		zap.Int("batch_size", o.config.BatchSize),
		zap.Duration("poll_interval", o.config.PollInterval))
}

// Stop waits for the in-flight batch to finish.
func (o *Outbox) Stop() {
	if o.cancel == nil {
		return
	}
	o.cancel()
	<-o.done
	o.logger.Info("outbox relay stopped")
}

func (o *Outbox) run(ctx context.Context) {
	defer close(o.done)

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	var cleanup <-chan time.Time
	if o.config.Retention > 0 {
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		cleanup = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := o.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				o.logger.Error("outbox batch failed", zap.Error(err))
			}
		case <-cleanup:
			n, err := o.CleanupProcessed(ctx, o.config.Retention)
			if err != nil {
				o.logger.Warn("outbox cleanup failed", zap.Error(err))
			} else if n > 0 {
				o.logger.Info("outbox cleanup", zap.Int64("deleted", n))
			}
		}
	}
}

// RelayOnce publishes one batch if this replica holds the relay lock. It
// returns the number of entries published.
func (o *Outbox) RelayOnce(ctx context.Context) (int, error) {
	ctx, span := o.tracer.Start(ctx, "outbox_relay_batch")
	defer span.End()

	conn, err := o.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// Session advisory locks belong to the connection, so lock and unlock
	// must run on the same one.
	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", relayLockID).Scan(&acquired); err != nil {
		return 0, fmt.Errorf("advisory lock: %w", err)
	}
	if !acquired {
		return 0, nil
	}
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", relayLockID)

	entries, err := o.fetch(ctx, conn)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	span.SetAttributes(attribute.Int("batch_size", len(entries)))

	published := 0
	for _, entry := range entries {
		if err := o.relay(ctx, conn, entry); err != nil {
			o.logger.Warn("outbox entry not published",
				zap.Int64("id", entry.ID),
				zap.String("event_type", entry.EventType),
				zap.Int("retry_count", entry.RetryCount),
				zap.Error(err))
			continue
		}
		published++
	}

	if o.config.OnPending != nil {
		var pending int
		if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM outbox WHERE processed_at IS NULL").Scan(&pending); err == nil {
			o.config.OnPending(pending)
		}
	}
	return published, nil
}

func (o *Outbox) fetch(ctx context.Context, conn *pgxpool.Conn) ([]*OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload,
		       kafka_topic, kafka_key, created_at, retry_count, last_error
		FROM outbox
		WHERE processed_at IS NULL
		ORDER BY id ASC
		LIMIT $1
	`
	rows, err := conn.Query(ctx, query, o.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*OutboxEntry, error) {
		e := &OutboxEntry{}
		err := row.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload,
			&e.KafkaTopic, &e.KafkaKey, &e.CreatedAt, &e.RetryCount, &e.LastError)
		return e, err
	})
}

// relay publishes entry, or its dead-letter envelope once retries are spent,
// and marks it processed.
func (o *Outbox) relay(ctx context.Context, conn *pgxpool.Conn, entry *OutboxEntry) error {
	ctx, span := o.tracer.Start(ctx, "outbox_relay_entry",
		trace.WithAttributes(
			attribute.Int64("entry_id", entry.ID),
			attribute.String("event_type", entry.EventType),
			attribute.String("aggregate_id", entry.AggregateID),
		))
	defer span.End()

	topic, value := entry.KafkaTopic, []byte(entry.Payload)
	if entry.RetryCount >= o.config.MaxRetries {
		dl, err := deadLetter(entry)
		if err != nil {
			return err
		}
		topic, value = o.config.DeadLetterTopic, dl
		span.SetAttributes(attribute.Bool("dead_letter", true))
	}

	if err := o.publisher.Publish(ctx, topic, entry.KafkaKey, value); err != nil {
		span.RecordError(err)
		if _, uerr := conn.Exec(ctx, `
			UPDATE outbox
			SET retry_count = retry_count + 1, last_error = $1, updated_at = NOW()
			WHERE id = $2`, err.Error(), entry.ID); uerr != nil {
			o.logger.Error("failed to record publish failure", zap.Int64("id", entry.ID), zap.Error(uerr))
		}
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	if _, err := conn.Exec(ctx, `UPDATE outbox SET processed_at = NOW(), updated_at = NOW() WHERE id = $1`, entry.ID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// DeadLetter is the envelope for entries that exhausted their retries.
type DeadLetter struct {
	OriginalTopic string          `json:"original_topic"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Payload       json.RawMessage `json:"payload"`
	RetryCount    int             `json:"retry_count"`
	LastError     string          `json:"last_error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func deadLetter(entry *OutboxEntry) ([]byte, error) {
	dl := DeadLetter{
		OriginalTopic: entry.KafkaTopic,
		EventType:     entry.EventType,
		AggregateID:   entry.AggregateID,
		AggregateType: entry.AggregateType,
		Payload:       entry.Payload,
		RetryCount:    entry.RetryCount,
		CreatedAt:     entry.CreatedAt,
	}
	if entry.LastError != nil {
		dl.LastError = *entry.LastError
	}
	b, err := json.Marshal(dl)
	if err != nil {
		return nil, fmt.Errorf("marshal dead letter: %w", err)
	}
	return b, nil
}

// CleanupProcessed deletes processed rows older than olderThan.
func (o *Outbox) CleanupProcessed(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := o.pool.Exec(ctx, `
		DELETE FROM outbox
		WHERE processed_at IS NOT NULL
		  AND processed_at < NOW() - make_interval(secs => $1)`, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("cleanup outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}

// OutboxStats summarises the outbox table.
type OutboxStats struct {
	Pending       int64      `json:"pending"`
	Retrying      int64      `json:"retrying"`
	Processed24h  int64      `json:"processed_24h"`
	OldestPending *time.Time `json:"oldest_pending,omitempty"`
}

func (o *Outbox) Stats(ctx context.Context) (*OutboxStats, error) {
	stats := &OutboxStats{}
	err := o.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE processed_at IS NULL),
			COUNT(*) FILTER (WHERE processed_at IS NULL AND retry_count > 0),
			COUNT(*) FILTER (WHERE processed_at > NOW() - INTERVAL '24 hours'),
			MIN(created_at) FILTER (WHERE processed_at IS NULL)
		FROM outbox`).Scan(&stats.Pending, &stats.Retrying, &stats.Processed24h, &stats.OldestPending)
	if err != nil {
		return nil, fmt.Errorf("outbox stats: %w", err)
	}
	return stats, nil
}
