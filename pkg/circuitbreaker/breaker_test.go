package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunFallsBackOnError(t *testing.T) {
	cb, err := New(DefaultConfig("knowledge"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	boom := errors.New("boom")
	var fallbackErr error
	got, err := Run(context.Background(), cb,
		func(context.Context) (string, error) { return "", boom },
		func(cause error) (string, error) {
			fallbackErr = cause
			return "local", nil
		})
	if err != nil || got != "local" {
		t.Fatalf("Run = %q, %v", got, err)
	}
	if !errors.Is(fallbackErr, boom) {
		t.Errorf("fallback got %v", fallbackErr)
	}

	if _, err := Run[int](context.Background(), cb,
		func(context.Context) (int, error) { return 0, boom }, nil); !errors.Is(err, boom) {
		t.Errorf("without fallback err = %v", err)
	}
}

func TestBreakerOpensAndNotifies(t *testing.T) {
	var mu sync.Mutex
	var transitions []State

	cfg := DefaultConfig("root_cause")
	cfg.Timeout = time.Hour
	cfg.OnStateChange = func(name string, to State) {
		mu.Lock()
		defer mu.Unlock()
		if name != "root_cause" {
			t.Errorf("name = %q", name)
		}
		transitions = append(transitions, to)
	}
	cb, _ := New(cfg, nil)

	fail := func(context.Context) (any, error) { return nil, errors.New("down") }
	for i := 0; i < int(cfg.FailureThreshold); i++ {
		cb.Execute(context.Background(), fail)
	}
	if !cb.IsOpen() {
		t.Fatalf("state = %s, want open", cb.GetState())
	}

	_, err := cb.Execute(context.Background(), func(context.Context) (any, error) { return "ok", nil })
	if !IsOpenError(err) {
		t.Errorf("err = %v, want open-state rejection", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 1 || transitions[0] != StateOpen {
		t.Errorf("transitions = %v", transitions)
	}
}

func TestCanceledCallsDoNotTrip(t *testing.T) {
	cb, _ := New(DefaultConfig("intake"), nil)
	for i := 0; i < 10; i++ {
		cb.Execute(context.Background(), func(context.Context) (any, error) { return nil, context.Canceled })
	}
	if cb.IsOpen() {
		t.Error("caller cancellations must not open the circuit")
	}
}

func TestManager(t *testing.T) {
	var notified []string
	m := NewManager(nil, func(name string, _ State) { notified = append(notified, name) })

	a, err := m.GetOrCreate("recommender", DefaultConfig(""))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	b, _ := m.GetOrCreate("recommender", DefaultConfig(""))
	if a != b {
		t.Error("GetOrCreate must return the existing breaker")
	}
	if a.Name() != "recommender" {
		t.Errorf("Name = %q", a.Name())
	}
	m.GetOrCreate("intake", DefaultConfig(""))

	for i := 0; i < 3; i++ {
		a.Execute(context.Background(), func(context.Context) (any, error) { return nil, errors.New("x") })
	}

	hs := m.GetHealthStatus()
	if len(hs) != 2 || hs[0].Name != "intake" || hs[1].Name != "recommender" {
		t.Fatalf("health = %+v", hs)
	}
	if !hs[0].Healthy || hs[1].Healthy {
		t.Errorf("health = %+v", hs)
	}
	if len(notified) != 1 || notified[0] != "recommender" {
		t.Errorf("notified = %v", notified)
	}
}

func TestNewRequiresName(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected error")
	}
}
