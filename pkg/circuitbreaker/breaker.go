// Package circuitbreaker guards calls to external consultation stages.
// Wraps sony/gobreaker with OpenTelemetry counters and a typed fallback helper.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// State represents the circuit breaker state
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Config holds circuit breaker configuration
type Config struct {
	// Name identifies the circuit breaker
	Name string
	// MaxRequests is max requests allowed in half-open state
	MaxRequests uint32
	// Interval is the cyclic period for clearing counts in closed state
	Interval time.Duration
	// Timeout is how long to wait before transitioning from open to half-open
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures before opening
	FailureThreshold uint32
	// FailureRatio is the failure ratio threshold once MinRequests is reached
	FailureRatio float64
	// MinRequests is minimum requests before ratio is considered
	MinRequests uint32
	// OnStateChange is called after every transition.
	OnStateChange func(name string, to State)
}

// DefaultConfig returns defaults for model-backed consultation stages, which
// are slow and fail in bursts when the upstream provider is degraded.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          20 * time.Second,
		FailureThreshold: 3,
		FailureRatio:     0.5,
		MinRequests:      10,
	}
}

// IsOpenError reports whether err means the breaker rejected the call.
func IsOpenError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// CircuitBreaker is a named gobreaker instance that reports through otel
// counters and an optional state callback.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
	tracer trace.Tracer
	notify func(name string, to State)

	calls, failures, rejected metric.Int64Counter
}

func New(cfg Config, logger *zap.Logger) (*CircuitBreaker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		return nil, errors.New("circuit breaker name is required")
	}

	c := &CircuitBreaker{
		name:   cfg.Name,
		logger: logger,
		tracer: otel.Tracer("consult-engine/circuitbreaker"),
		notify: cfg.OnStateChange,
	}

	meter := otel.Meter("consult-engine/circuitbreaker")
	for _, ctr := range []struct {
		dst        *metric.Int64Counter
		name, desc string
	}{
		{&c.calls, "stage_breaker_requests_total", "Stage calls passed through a circuit breaker"},
		{&c.failures, "stage_breaker_failures_total", "Stage calls that returned an error"},
		{&c.rejected, "stage_breaker_rejected_total", "Stage calls rejected by an open circuit"},
	} {
		counter, err := meter.Int64Counter(ctr.name, metric.WithDescription(ctr.desc))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", ctr.name, err)
		}
		*ctr.dst = counter
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			c.onStateChange(from, to)
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a fault of the stage.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c, nil
}

// Name returns the breaker name.
func (c *CircuitBreaker) Name() string {
	return c.name
}

// Execute runs fn through the circuit breaker
func (c *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	ctx, span := c.tracer.Start(ctx, "circuit_breaker.execute",
		trace.WithAttributes(
			attribute.String("breaker.name", c.name),
			attribute.String("breaker.state", string(c.GetState())),
		))
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("name", c.name))
	c.calls.Add(ctx, 1, attrs)

	result, err := c.cb.Execute(func() (any, error) { return fn(ctx) })
	if err != nil {
		if IsOpenError(err) {
			c.rejected.Add(ctx, 1, attrs)
			span.SetAttributes(attribute.Bool("breaker.open", true))
		} else {
			c.failures.Add(ctx, 1, attrs)
		}
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

// Run executes fn through c with a typed result. When fn fails or the circuit
// is open, fallback receives the error and its result is returned instead.
func Run[T any](ctx context.Context, c *CircuitBreaker, fn func(ctx context.Context) (T, error), fallback func(error) (T, error)) (T, error) {
	res, err := c.Execute(ctx, func(ctx context.Context) (any, error) { return fn(ctx) })
	if err != nil {
		if IsOpenError(err) {
			c.logger.Warn("circuit open, using fallback",
				zap.String("breaker", c.name),
				zap.Error(err))
		} else {
			c.logger.Error("guarded call failed, using fallback",
				zap.String("breaker", c.name),
				zap.Error(err))
		}
		if fallback == nil {
			var zero T
			return zero, err
		}
		return fallback(err)
	}
	return res.(T), nil
}

// GetState reports the state gobreaker currently holds. An expired open
// timeout reads as half-open.
func (c *CircuitBreaker) GetState() State {
	return mapState(c.cb.State())
}

func (c *CircuitBreaker) onStateChange(from, to gobreaker.State) {
	c.logger.Warn("circuit breaker state changed",
		zap.String("breaker", c.name),
		zap.String("from", string(mapState(from))),
		zap.String("to", string(mapState(to))))
	if c.notify != nil {
		c.notify(c.name, mapState(to))
	}
}

func mapState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

func (c *CircuitBreaker) IsOpen() bool {
	return c.GetState() == StateOpen
}

func (c *CircuitBreaker) Counts() gobreaker.Counts {
	return c.cb.Counts()
}

// Manager owns one breaker per stage.
type Manager struct {
	breakers map[string]*CircuitBreaker
	mu       sync.RWMutex
	logger   *zap.Logger
	notify   func(name string, to State)
}

// NewManager creates a circuit breaker manager. notify, when set, is attached
// to every breaker the manager creates.
func NewManager(logger *zap.Logger, notify func(name string, to State)) *Manager {
	return &Manager{
		breakers: make(map[string]*CircuitBreaker),
		logger:   logger,
		notify:   notify,
	}
}

// GetOrCreate returns an existing breaker or creates a new one
func (m *Manager) GetOrCreate(name string, cfg Config) (*CircuitBreaker, error) {
	m.mu.RLock()
	if cb, ok := m.breakers[name]; ok {
		m.mu.RUnlock()
		return cb, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, ok := m.breakers[name]; ok {
		return cb, nil
	}

	cfg.Name = name
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = m.notify
	}
	cb, err := New(cfg, m.logger)
	if err != nil {
		return nil, err
	}
	m.breakers[name] = cb
	return cb, nil
}

// HealthStatus is the externally reported state of one breaker.
type HealthStatus struct {
	Name     string `json:"name"`
	State    State  `json:"state"`
	Requests uint32 `json:"requests"`
	Failures uint32 `json:"failures"`
	Healthy  bool   `json:"healthy"`
}

// GetHealthStatus returns health status for all circuit breakers, sorted by name
func (m *Manager) GetHealthStatus() []HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]HealthStatus, 0, len(m.breakers))
	for name, cb := range m.breakers {
		counts := cb.Counts()
		statuses = append(statuses, HealthStatus{
			Name:     name,
			State:    cb.GetState(),
			Requests: counts.Requests,
			Failures: counts.TotalFailures,
			Healthy:  !cb.IsOpen(),
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
