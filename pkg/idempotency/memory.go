package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryBackend keeps entries in process memory. It deduplicates within one
// worker process only.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]*Entry
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]*Entry), now: time.Now}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (*Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (b *MemoryBackend) Start(_ context.Context, key, handler string, payload json.RawMessage, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if e, ok := b.entries[key]; ok {
		if e.Status != StatusRecoverable {
			return ErrDuplicateMessage
		}
		e.Status = StatusStarted
		e.UpdatedAt = now
		return nil
	}
	b.entries[key] = &Entry{
		IdempotencyKey: key,
		HandlerName:    handler,
		Status:         StatusStarted,
		Payload:        payload,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      &expiresAt,
	}
	return nil
}

func (b *MemoryBackend) SetStatus(_ context.Context, key string, status Status, result json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[key]; ok {
		e.Status = status
		e.Result = result
		e.UpdatedAt = b.now()
	}
	return nil
}

func (b *MemoryBackend) RecoverStale(_ context.Context, after time.Duration) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	cutoff := b.now().Add(-after)
	for _, e := range b.entries {
		if e.Status == StatusStarted && e.UpdatedAt.Before(cutoff) {
			e.Status = StatusRecoverable
			e.UpdatedAt = b.now()
			n++
		}
	}
	return n, nil
}

func (b *MemoryBackend) Cleanup(_ context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	now := b.now()
	for k, e := range b.entries {
		if e.ExpiresAt != nil && e.ExpiresAt.Before(now) {
			delete(b.entries, k)
			n++
		}
	}
	return n, nil
}

func (b *MemoryBackend) Stats(_ context.Context) (*Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &Stats{TotalEntries: int64(len(b.entries))}
	for _, e := range b.entries {
		switch e.Status {
		case StatusStarted:
			s.Started++
		case StatusFinished:
			s.Finished++
		case StatusRecoverable:
			s.Recoverable++
		case StatusFailed:
			s.Failed++
		}
	}
	return s, nil
}
