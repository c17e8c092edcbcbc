// Package app wires configuration into the engines and services shared by
// the binaries under cmd/.
package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dorost/consult-engine/internal/confidence"
	"github.com/dorost/consult-engine/internal/config"
	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/internal/patterns"
	"github.com/dorost/consult-engine/internal/routing"
	"github.com/dorost/consult-engine/pkg/circuitbreaker"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// NewLogger returns a development logger in development and a JSON
// production logger otherwise, both at cfg.LogLevel.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.IsDev() {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Engine holds the immutable triage engines.
type Engine struct {
	KB      *knowledge.Base
	Router  *routing.Router
	Matcher *patterns.Matcher
	Policy  confidence.Policy
}

// NewEngine loads the knowledge base and builds the engines on it.
func NewEngine(cfg *config.Config) (*Engine, error) {
	kb, err := knowledge.Load()
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	matcher, err := patterns.NewMatcher(kb, nil, cfg.MaxPatternMatches)
	if err != nil {
		return nil, err
	}
	policy := confidence.DefaultPolicy()
	policy.EscalationThreshold = cfg.ConfidenceThreshold

	return &Engine{
		KB:      kb,
		Router:  routing.NewRouter(kb, nil),
		Matcher: matcher,
		Policy:  policy,
	}, nil
}

func (e *Engine) Deps() consultation.Deps {
	return consultation.Deps{Router: e.Router, Matcher: e.Matcher, Policy: e.Policy}
}

// Stages returns the default pipeline, with every stage delegated to the
// agent service behind its own breaker when AGENT_BASE_URL is set.
func (e *Engine) Stages(cfg *config.Config, breakers *circuitbreaker.Manager) ([]consultation.Stage, error) {
	local := consultation.DefaultStages(e.Deps())
	if cfg.AgentBaseURL == "" {
		return local, nil
	}

	out := make([]consultation.Stage, len(local))
	for i, st := range local {
		name := "agent." + st.Name()
		cb, err := breakers.GetOrCreate(name, circuitbreaker.DefaultConfig(name))
		if err != nil {
			return nil, fmt.Errorf("breaker for stage %s: %w", st.Name(), err)
		}
		runner := consultation.NewHTTPRunner(cfg.AgentBaseURL, st.Name(), cfg.AgentTimeout)
		out[i] = consultation.Guard(runner, st, cb)
	}
	return out, nil
}

// NewService builds the consultation service on e.
func (e *Engine) NewService(cfg *config.Config, breakers *circuitbreaker.Manager, logger *zap.Logger, opts ...consultation.Option) (*consultation.Service, error) {
	stages, err := e.Stages(cfg, breakers)
	if err != nil {
		return nil, err
	}
	opts = append([]consultation.Option{consultation.WithStages(stages...)}, opts...)
	return consultation.NewService(e.KB, e.Deps(), logger, opts...)
}
