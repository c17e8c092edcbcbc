// Package consultation runs a health consultation end to end: the red-flag
// screen, the six pipeline stages, confidence aggregation and escalation.
//
// All per-request state lives in a Context and a Tracker created by Consult;
// the Service itself only holds immutable engines and is safe for concurrent
// use.
package consultation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/confidence"
	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/internal/observability/metrics"
	"github.com/dorost/consult-engine/internal/patterns"
	"github.com/dorost/consult-engine/internal/triage"
)

// Status is the outcome of a consultation.
type Status string

const (
	// StatusEmergency means a terminal red flag stopped the pipeline.
	StatusEmergency Status = "EMERGENCY"
	StatusComplete  Status = "COMPLETE"
)

// Result is a finished consultation.
type Result struct {
	ID                string                 `json:"id"`
	Status            Status                 `json:"status"`
	Query             string                 `json:"query"`
	CreatedAt         time.Time              `json:"created_at"`
	Urgency           knowledge.Urgency      `json:"urgency"`
	RedFlags          triage.Result          `json:"red_flags"`
	Actions           []string               `json:"actions,omitempty"`
	Stages            []StageOutput          `json:"stages,omitempty"`
	OverallConfidence float64                `json:"overall_confidence"`
	Assessment        *confidence.Assessment `json:"assessment,omitempty"`
	Escalate          bool                   `json:"escalate"`
	EscalationReasons []string               `json:"escalation_reasons,omitempty"`
	Pipeline          PipelineStats          `json:"pipeline"`
	StageMetrics      []StageMetric          `json:"stage_metrics,omitempty"`
	Tasks             TaskStatus             `json:"tasks"`
	Disclaimer        string                 `json:"medical_disclaimer"`
	Capabilities      knowledge.Capabilities `json:"capabilities"`
}

// Stage returns the output of the named stage.
func (r Result) Stage(name string) (StageOutput, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageOutput{}, false
}

// Escalation is what gets recorded when a consultation must go to a
// professional. It carries no free text from the patient.
type Escalation struct {
	ConsultationID string            `json:"consultation_id"`
	Status         Status            `json:"status"`
	Urgency        knowledge.Urgency `json:"urgency"`
	FlagIDs        []string          `json:"flag_ids"`
	Reasons        []string          `json:"reasons"`
	Confidence     float64           `json:"confidence"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// EscalationRecorder persists or forwards escalations.
type EscalationRecorder interface {
	RecordEscalation(ctx context.Context, e Escalation) error
}

// Service orchestrates consultations.
type Service struct {
	kb       *knowledge.Base
	detector *triage.Detector
	stages   []Stage
	matcher  *patterns.Matcher
	policy   confidence.Policy
	store    *Store
	recorder EscalationRecorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	tracer   trace.Tracer
	newID    func() string
	now      func() time.Time
}

type Option func(*Service)

// WithStages replaces the default pipeline. Every stage must be named after
// one of the Stage* constants.
func WithStages(stages ...Stage) Option {
	return func(s *Service) { s.stages = stages }
}

// WithStore keeps finished consultations for later retrieval.
func WithStore(store *Store) Option {
	return func(s *Service) { s.store = store }
}

func WithRecorder(r EscalationRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds a service running DefaultStages(deps) unless WithStages
// is given.
func NewService(kb *knowledge.Base, deps Deps, logger *zap.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		kb:       kb,
		detector: triage.NewDetector(kb),
		matcher:  deps.Matcher,
		policy:   deps.Policy,
		logger:   logger,
		tracer:   otel.Tracer("consult-engine/consultation"),
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
	if s.policy == (confidence.Policy{}) {
		s.policy = confidence.DefaultPolicy()
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stages == nil {
		if deps.Router == nil || deps.Matcher == nil {
			return nil, fmt.Errorf("default stages need a router and a matcher")
		}
		s.stages = DefaultStages(deps)
	}
	for _, st := range s.stages {
		if _, ok := stageTasks[st.Name()]; !ok {
			return nil, fmt.Errorf("stage %q has no task definition", st.Name())
		}
	}
	return s, nil
}

// StageNames returns the pipeline in execution order.
func (s *Service) StageNames() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.Name()
	}
	return names
}

// Get returns a stored consultation.
func (s *Service) Get(id string) (Result, error) {
	if s.store == nil {
		return Result{}, ErrSessionNotFound
	}
	return s.store.Get(id)
}

// End discards a stored consultation.
func (s *Service) End(id string) error {
	if s.store == nil || !s.store.Delete(id) {
		return ErrSessionNotFound
	}
	return nil
}

// Consult screens the request for red flags and, unless one is terminal,
// runs every stage in order. A stage error aborts the consultation.
func (s *Service) Consult(ctx context.Context, req Request) (Result, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "consultation.consult")
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	res := Result{
		ID:           s.newID(),
		Query:        req.Query,
		CreatedAt:    start.UTC(),
		Disclaimer:   knowledge.Disclaimer,
		Capabilities: s.kb.Capabilities(),
	}
	span.SetAttributes(attribute.String("consultation.id", res.ID))

	flags := s.detector.Detect(req.ScreeningText())
	res.RedFlags = flags
	res.Urgency = flags.MaxUrgency
	for _, m := range flags.Flags {
		s.metrics.ObserveRedFlag(m.Flag.Urgency.String())
		s.logger.Warn("red flag detected",
			zap.String("consultation_id", res.ID),
			zap.String("flag", m.Flag.ID),
			zap.String("urgency", m.Flag.Urgency.String()))
	}

	if flags.Terminal {
		res.Status = StatusEmergency
		res.Actions = flags.Actions
		res.Escalate = true
		res.EscalationReasons = []string{confidence.ReasonRedFlags}
		res.Tasks = TaskStatus{CompletedTasks: []knowledge.TaskType{}, DataKeys: []string{}}
		span.SetAttributes(attribute.Bool("consultation.emergency", true))
		s.finish(ctx, &res, start)
		return res, nil
	}

	tc := NewContext(s.kb)
	tracker := NewTracker()
	for _, st := range s.stages {
		if err := tc.Begin(stageTasks[st.Name()]); err != nil {
			return Result{}, err
		}
		task, _ := tc.Current()
		in := &StageInput{
			Request:     req,
			RedFlags:    flags,
			Task:        task,
			TaskContext: tc.TaskContext(),
			Relevant:    tc.Relevant(),
			Prior:       tc.Outputs(),
		}

		out, d, err := s.runStage(ctx, st, in)
		tracker.Record(out, d, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stage failed")
			s.logger.Error("consultation stage failed",
				zap.String("consultation_id", res.ID),
				zap.String("stage", st.Name()),
				zap.Error(err))
			return Result{}, fmt.Errorf("stage %s: %w", st.Name(), err)
		}
		tc.Set("_intermediate_"+st.Name(), out.Summary)
		tc.Complete(out)
		res.Stages = append(res.Stages, out)
	}

	res.Status = StatusComplete
	res.OverallConfidence = meanConfidence(res.Stages)
	a := s.assess(req, flags)
	res.Assessment = &a
	res.Escalate = a.ShouldEscalate
	res.EscalationReasons = a.EscalationReasons
	res.Pipeline = tracker.Stats()
	res.StageMetrics = tracker.Metrics()
	res.Tasks = tc.Status()

	s.finish(ctx, &res, start)
	return res, nil
}

// assess computes the escalation decision from the red-flag screen and a local
// pattern match. Stage outputs never feed it.
func (s *Service) assess(req Request, flags triage.Result) confidence.Assessment {
	var strength float64
	if s.matcher != nil {
		matches := s.matcher.Match(req.Profile)
		strength = patterns.Strength(matches)
		s.metrics.ObservePatternMatches(len(matches))
	}
	return s.policy.Assess(confidence.Input{
		SymptomClarity:       req.Clarity(),
		PatternMatchStrength: strength,
		RedFlagsPresent:      flags.HasRedFlags(),
		DurationWeeks:        req.DurationWeeks,
		Complexity:           req.Complexity,
	})
}

func (s *Service) runStage(ctx context.Context, st Stage, in *StageInput) (StageOutput, time.Duration, error) {
	ctx, span := s.tracer.Start(ctx, "consultation.stage."+st.Name())
	defer span.End()

	began := s.now()
	out, err := st.Run(ctx, in)
	d := s.now().Sub(began)
	out.Stage = st.Name()

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case out.Degraded:
		outcome = "degraded"
	}
	span.SetAttributes(
		attribute.Float64("stage.confidence", out.Confidence),
		attribute.String("stage.outcome", outcome))
	s.metrics.ObserveStage(st.Name(), outcome, d)
	return out, d, err
}

// finish records escalations, stores the result and emits metrics. Recording
// failures are logged and never fail the consultation.
func (s *Service) finish(ctx context.Context, res *Result, start time.Time) {
	if res.Escalate {
		for _, r := range res.EscalationReasons {
			s.metrics.ObserveEscalation(r)
		}
		if s.recorder != nil {
			conf := res.OverallConfidence
			if res.Assessment != nil {
				conf = res.Assessment.Score
			}
			e := Escalation{
				ConsultationID: res.ID,
				Status:         res.Status,
				Urgency:        res.Urgency,
				FlagIDs:        res.RedFlags.FlagIDs(),
				Reasons:        res.EscalationReasons,
				Confidence:     conf,
				OccurredAt:     res.CreatedAt,
			}
			if err := s.recorder.RecordEscalation(ctx, e); err != nil {
				s.logger.Error("failed to record escalation",
					zap.String("consultation_id", res.ID),
					zap.Error(err))
			}
		}
	}
	if s.store != nil {
		s.store.Save(*res)
	}

	s.metrics.ObserveConsultation(string(res.Status), s.now().Sub(start))
	s.logger.Info("consultation finished",
		zap.String("consultation_id", res.ID),
		zap.String("status", string(res.Status)),
		zap.String("urgency", res.Urgency.String()),
		zap.Float64("overall_confidence", res.OverallConfidence),
		zap.Bool("escalate", res.Escalate))
}

func meanConfidence(stages []StageOutput) float64 {
	if len(stages) == 0 {
		return 0
	}
	var sum float64
	for _, s := range stages {
		sum += s.Confidence
	}
	return round2(sum / float64(len(stages)))
}
