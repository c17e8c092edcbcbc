package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dorost/consult-engine/internal/config"
	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/pkg/circuitbreaker"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                "8080",
		Env:                 "development",
		LogLevel:            "debug",
		MaxPatternMatches:   3,
		ConfidenceThreshold: 0.7,
		WorkerCount:         1,
		SessionTTL:          time.Minute,
		AgentTimeout:        time.Second,
	}
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig()
	if _, err := NewLogger(cfg); err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	cfg.Env = "production"
	cfg.LogLevel = "WARN"
	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Error("debug should be disabled at warn level")
	}

	cfg.LogLevel = "loud"
	if _, err := NewLogger(cfg); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewEngineAppliesConfig(t *testing.T) {
	e, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if e.Matcher.Limit() != 3 {
		t.Errorf("matcher limit = %d", e.Matcher.Limit())
	}
	if e.Policy.EscalationThreshold != 0.7 {
		t.Errorf("threshold = %v", e.Policy.EscalationThreshold)
	}

	stages, err := e.Stages(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(stages) != 6 {
		t.Fatalf("stages = %d", len(stages))
	}
	if _, guarded := stages[0].(*consultation.GuardedStage); guarded {
		t.Error("stages should be local without an agent URL")
	}
}

func TestAgentStagesFallBackWhenAgentFails(t *testing.T) {
	var hits atomic.Int64
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer agent.Close()

	cfg := testConfig()
	cfg.AgentBaseURL = agent.URL

	var transitions atomic.Int64
	breakers := circuitbreaker.NewManager(nil, func(string, circuitbreaker.State) { transitions.Add(1) })

	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := e.NewService(cfg, breakers, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := svc.StageNames(); len(got) != 6 || got[0] != consultation.StageIntake {
		t.Fatalf("stage names = %v", got)
	}

	res, err := svc.Consult(context.Background(), consultation.Request{
		Query:    "always tired and gaining weight",
		Symptoms: []string{"fatigue", "weight_gain", "cold_intolerance"},
	})
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if res.Status != consultation.StatusComplete {
		t.Fatalf("status = %s", res.Status)
	}
	for _, st := range res.Stages {
		if !st.Degraded {
			t.Errorf("stage %s should be degraded", st.Stage)
		}
	}
	if hits.Load() != 6 {
		t.Errorf("agent hits = %d, want 6", hits.Load())
	}
	if n := len(breakers.GetHealthStatus()); n != 6 {
		t.Errorf("breakers = %d, want 6", n)
	}
}
