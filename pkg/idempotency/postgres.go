package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores entries in the inbox table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) Get(ctx context.Context, key string) (*Entry, error) {
	query := `
		SELECT idempotency_key, handler_name, status, payload, result, created_at, updated_at, expires_at
		FROM inbox
		WHERE idempotency_key = $1
	`

	entry := &Entry{}
	err := b.pool.QueryRow(ctx, query, key).Scan(
		&entry.IdempotencyKey, &entry.HandlerName, &entry.Status,
		&entry.Payload, &entry.Result, &entry.CreatedAt, &entry.UpdatedAt, &entry.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (b *PostgresBackend) Start(ctx context.Context, key, handler string, payload json.RawMessage, expiresAt time.Time) error {
	query := `
		INSERT INTO inbox (idempotency_key, handler_name, status, payload, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (idempotency_key) DO UPDATE
		SET status = $3, updated_at = NOW()
		WHERE inbox.status = 'RECOVERABLE'
		RETURNING idempotency_key
	`

	var returned string
	err := b.pool.QueryRow(ctx, query, key, handler, StatusStarted, payload, expiresAt).Scan(&returned)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict on a row that is not recoverable.
		return ErrDuplicateMessage
	}
	return err
}

func (b *PostgresBackend) SetStatus(ctx context.Context, key string, status Status, result json.RawMessage) error {
	query := `
		UPDATE inbox
		SET status = $1, result = $2, updated_at = NOW()
		WHERE idempotency_key = $3
	`
	_, err := b.pool.Exec(ctx, query, status, result, key)
	return err
}

func (b *PostgresBackend) RecoverStale(ctx context.Context, after time.Duration) (int64, error) {
	query := `
		UPDATE inbox
		SET status = 'RECOVERABLE', updated_at = NOW()
		WHERE status = 'STARTED'
		  AND updated_at < NOW() - $1::interval
	`
	tag, err := b.pool.Exec(ctx, query, after.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (b *PostgresBackend) Cleanup(ctx context.Context) (int64, error) {
	tag, err := b.pool.Exec(ctx, `DELETE FROM inbox WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (b *PostgresBackend) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'STARTED'),
			COUNT(*) FILTER (WHERE status = 'FINISHED'),
			COUNT(*) FILTER (WHERE status = 'RECOVERABLE'),
			COUNT(*) FILTER (WHERE status = 'FAILED')
		FROM inbox
	`
	s := &Stats{}
	err := b.pool.QueryRow(ctx, query).Scan(&s.TotalEntries, &s.Started, &s.Finished, &s.Recoverable, &s.Failed)
	if err != nil {
		return nil, err
	}
	return s, nil
}
