// Package idempotency provides the Inbox pattern for exactly-once handling of
// consultation requests consumed by the triage worker.
// Keys are derived from the request id, or from the request body when the
// producer did not set one.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Status represents the processing status of an inbox entry
type Status string

const (
	StatusStarted     Status = "STARTED"
	StatusFinished    Status = "FINISHED"
	StatusRecoverable Status = "RECOVERABLE"
	StatusFailed      Status = "FAILED"
)

// Entry represents an idempotency inbox record
type Entry struct {
	IdempotencyKey string
	HandlerName    string
	Status         Status
	Payload        json.RawMessage
	Result         json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      *time.Time
}

// ErrDuplicateMessage indicates message was already processed
var ErrDuplicateMessage = errors.New("duplicate message: already processed")

// ErrMessageInProgress indicates message is currently being processed
var ErrMessageInProgress = errors.New("message in progress by another handler")

// ErrPreviouslyFailed is returned for a key whose handler failed terminally.
var ErrPreviouslyFailed = errors.New("message previously failed permanently")

// ErrNotFound is returned by a Backend for an unknown key.
var ErrNotFound = errors.New("inbox entry not found")

// Backend stores inbox entries.
type Backend interface {
	Get(ctx context.Context, key string) (*Entry, error)
	// Start inserts key as STARTED, or moves a RECOVERABLE entry back to
	// STARTED. Any other existing entry yields ErrDuplicateMessage.
	Start(ctx context.Context, key, handler string, payload json.RawMessage, expiresAt time.Time) error
	SetStatus(ctx context.Context, key string, status Status, result json.RawMessage) error
	// RecoverStale moves STARTED entries idle for longer than after to RECOVERABLE.
	RecoverStale(ctx context.Context, after time.Duration) (int64, error)
	// Cleanup deletes expired entries.
	Cleanup(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Config holds configuration for the inbox
type Config struct {
	// DefaultTTL is the default time-to-live for inbox entries
	DefaultTTL time.Duration
	// CleanupInterval is how often to clean expired entries
	CleanupInterval time.Duration
	// RecoveryTimeout is when to consider a STARTED entry as stale
	RecoveryTimeout time.Duration
	// IsTerminal classifies handler errors that must not be reprocessed.
	// Nil treats every error as recoverable.
	IsTerminal func(error) bool
}

// DefaultConfig returns defaults for consultation requests. Redelivered
// requests older than a day are not expected.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      24 * time.Hour,
		CleanupInterval: 1 * time.Hour,
		RecoveryTimeout: 2 * time.Minute,
	}
}

// Inbox manages idempotent message processing
type Inbox struct {
	backend Backend
	config  Config
	logger  *zap.Logger
	tracer  trace.Tracer
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new inbox manager
func New(backend Backend, cfg Config, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = def.DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = def.RecoveryTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Inbox{
		backend: backend,
		config:  cfg,
		logger:  logger,
		tracer:  otel.Tracer("consult-engine/inbox"),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// ProcessResult represents the result of idempotent processing
type ProcessResult struct {
	IsNew        bool
	WasRecovered bool
	Result       json.RawMessage
}

// ProcessFunc is the function signature for idempotent handlers
type ProcessFunc func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// Process runs fn at most once per key. A finished key returns the stored
// result with IsNew false.
func (i *Inbox) Process(ctx context.Context, key, handlerName string, payload json.RawMessage, fn ProcessFunc) (*ProcessResult, error) {
	ctx, span := i.tracer.Start(ctx, "inbox_process",
		trace.WithAttributes(
			attribute.String("idempotency_key", key),
			attribute.String("handler", handlerName),
		))
	defer span.End()

	entry, err := i.backend.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check inbox: %w", err)
	}

	if entry != nil {
		switch entry.Status {
		case StatusFinished:
			span.SetAttributes(attribute.Bool("duplicate", true))
			return &ProcessResult{IsNew: false, Result: entry.Result}, nil

		case StatusFailed:
			span.SetAttributes(attribute.Bool("previously_failed", true))
			return nil, fmt.Errorf("%w: %s", ErrPreviouslyFailed, key)

		case StatusStarted:
			if i.now().Sub(entry.UpdatedAt) <= i.config.RecoveryTimeout {
				return nil, ErrMessageInProgress
			}
			// A crashed handler left it behind.
			if err := i.backend.SetStatus(ctx, key, StatusRecoverable, entry.Result); err != nil {
				return nil, fmt.Errorf("failed to mark recoverable: %w", err)
			}
			entry.Status = StatusRecoverable

		case StatusRecoverable:
			span.SetAttributes(attribute.Bool("recovered", true))
		}
	}

	if err := i.backend.Start(ctx, key, handlerName, payload, i.now().Add(i.config.DefaultTTL)); err != nil {
		if errors.Is(err, ErrDuplicateMessage) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to start processing: %w", err)
	}

	result, handlerErr := fn(ctx, payload)
	if handlerErr != nil {
		status := StatusRecoverable
		if i.config.IsTerminal != nil && i.config.IsTerminal(handlerErr) {
			status = StatusFailed
		}
		errResult, _ := json.Marshal(map[string]string{"error": handlerErr.Error()})
		if err := i.backend.SetStatus(ctx, key, status, errResult); err != nil {
			i.logger.Error("failed to mark error status", zap.String("key", key), zap.Error(err))
		}
		span.RecordError(handlerErr)
		return nil, handlerErr
	}

	if err := i.backend.SetStatus(ctx, key, StatusFinished, result); err != nil {
		// The handler succeeded; a redelivery will run it again.
		i.logger.Error("failed to mark finished", zap.String("key", key), zap.Error(err))
	}

	return &ProcessResult{
		IsNew:        entry == nil,
		WasRecovered: entry != nil && entry.Status == StatusRecoverable,
		Result:       result,
	}, nil
}

// GenerateKey returns requestID when set, otherwise a SHA-256 of the payload.
func GenerateKey(requestID string, payload []byte) string {
	if requestID != "" {
		return requestID
	}
	hash := sha256.Sum256(payload)
	return hex.EncodeToString(hash[:])
}

// StartCleanup starts the background cleanup goroutine
func (i *Inbox) StartCleanup() {
	go i.cleanupLoop()
	i.logger.Info("inbox cleanup started", zap.Duration("interval", i.config.CleanupInterval))
}

// Stop stops the inbox cleanup
func (i *Inbox) Stop() {
	i.cancel()
	<-i.done
	i.logger.Info("inbox stopped")
}

func (i *Inbox) cleanupLoop() {
	defer close(i.done)

	ticker := time.NewTicker(i.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-i.ctx.Done():
			return
		case <-ticker.C:
			if n, err := i.backend.Cleanup(i.ctx); err != nil {
				i.logger.Error("inbox cleanup failed", zap.Error(err))
			} else if n > 0 {
				i.logger.Info("inbox cleanup completed", zap.Int64("deleted", n))
			}
			if n, err := i.backend.RecoverStale(i.ctx, i.config.RecoveryTimeout); err != nil {
				i.logger.Error("inbox recovery failed", zap.Error(err))
			} else if n > 0 {
				i.logger.Warn("stale inbox entries recovered", zap.Int64("recovered", n))
			}
		}
	}
}

// RecoverStaleEntries marks stale STARTED entries as RECOVERABLE
func (i *Inbox) RecoverStaleEntries(ctx context.Context) (int64, error) {
	return i.backend.RecoverStale(ctx, i.config.RecoveryTimeout)
}

// Stats summarizes the inbox by status
type Stats struct {
	TotalEntries int64
	Started      int64
	Finished     int64
	Recoverable  int64
	Failed       int64
}

// GetStats returns current inbox statistics
func (i *Inbox) GetStats(ctx context.Context) (*Stats, error) {
	return i.backend.Stats(ctx)
}
