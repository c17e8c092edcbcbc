package consultation

import (
	"context"
	"fmt"
	"strings"

	"github.com/dorost/consult-engine/internal/confidence"
	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/internal/patterns"
	"github.com/dorost/consult-engine/internal/routing"
	"github.com/dorost/consult-engine/internal/triage"
)

// Stage names, in pipeline order.
const (
	StageIntake      = "intake"
	StageDiagnostic  = "diagnostic"
	StageRouter      = "specialty_router"
	StageKnowledge   = "knowledge"
	StageRootCause   = "root_cause"
	StageRecommender = "recommender"
)

// StageInput is what a stage sees: the request, the red-flag screen and the
// outputs of the stages that already ran.
type StageInput struct {
	Request  Request                  `json:"request"`
	RedFlags triage.Result            `json:"red_flags"`
	Task     knowledge.TaskDefinition `json:"task"`
	// TaskContext is the rendered task briefing for external runners.
	TaskContext string `json:"task_context"`
	// Relevant holds prior outputs selected by the task's declared inputs.
	Relevant map[string]any         `json:"relevant,omitempty"`
	Prior    map[string]StageOutput `json:"-"`
}

// StageOutput is the product of one stage.
type StageOutput struct {
	Stage      string  `json:"stage"`
	Name       string  `json:"name"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
	// Degraded is set when the output came from the local fallback after the
	// guarded runner failed.
	Degraded bool `json:"degraded,omitempty"`
	Data     any  `json:"data,omitempty"`
}

// Stage is one step of the consultation pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, in *StageInput) (StageOutput, error)
}

// stageTasks maps each stage to the task it owns.
var stageTasks = map[string]knowledge.TaskType{
	StageIntake:      knowledge.TaskIntake,
	StageDiagnostic:  knowledge.TaskDiagnostic,
	StageRouter:      knowledge.TaskRouting,
	StageKnowledge:   knowledge.TaskAnalysis,
	StageRootCause:   knowledge.TaskRootCause,
	StageRecommender: knowledge.TaskRecommendation,
}

// Deps are the engines the default stages are built on.
type Deps struct {
	Router  *routing.Router
	Matcher *patterns.Matcher
	Policy  confidence.Policy
}

// DefaultStages returns the six deterministic stages in pipeline order.
func DefaultStages(d Deps) []Stage {
	return []Stage{
		intakeStage{},
		diagnosticStage{},
		routerStage{router: d.Router},
		knowledgeStage{matcher: d.Matcher},
		rootCauseStage{matcher: d.Matcher},
		recommenderStage{policy: d.Policy, matcher: d.Matcher, router: d.Router},
	}
}

// Intake is the normalized view of the request.
type Intake struct {
	Symptoms      []string `json:"symptoms"`
	BodySystem    string   `json:"body_system"`
	Duration      string   `json:"duration,omitempty"`
	DurationWeeks int      `json:"duration_weeks"`
	Severity      string   `json:"severity,omitempty"`
	HasProfile    bool     `json:"has_profile"`
}

func newIntake(req Request) Intake {
	return Intake{
		Symptoms:      req.SymptomTags(),
		BodySystem:    knowledge.NormalizeBodySystem(req.BodySystem),
		Duration:      req.Duration,
		DurationWeeks: req.DurationWeeks,
		Severity:      req.Severity,
		HasProfile:    req.Profile != nil,
	}
}

type intakeStage struct{}

func (intakeStage) Name() string { return StageIntake }

func (intakeStage) Run(_ context.Context, in *StageInput) (StageOutput, error) {
	intake := newIntake(in.Request)
	return StageOutput{
		Stage:      StageIntake,
		Name:       "Health Profile",
		Summary:    fmt.Sprintf("%d symptom(s) reported", len(intake.Symptoms)),
		Confidence: 0.9,
		Data:       intake,
	}, nil
}

// Diagnostic carries the physical-examination guidance and any non-terminal
// red flags the patient should watch.
type Diagnostic struct {
	Examinations []string `json:"examinations"`
	Advisories   []string `json:"advisories,omitempty"`
}

var examinations = []string{
	"Check tongue color and texture",
	"Examine fingernails for ridges or discoloration",
	"Note skin quality and hydration",
	"Test capillary refill time",
	"Perform orthostatic vital signs test",
}

type diagnosticStage struct{}

func (diagnosticStage) Name() string { return StageDiagnostic }

func (diagnosticStage) Run(_ context.Context, in *StageInput) (StageOutput, error) {
	d := Diagnostic{Examinations: append([]string(nil), examinations...)}
	for _, m := range in.RedFlags.Advisories() {
		d.Advisories = append(d.Advisories, fmt.Sprintf("%s (%s): %s", m.Flag.Symptom, m.Flag.Urgency, m.Flag.Action))
	}
	return StageOutput{
		Stage:      StageDiagnostic,
		Name:       "Physical Examination",
		Summary:    fmt.Sprintf("%d self-examination step(s), %d advisory flag(s)", len(d.Examinations), len(d.Advisories)),
		Confidence: 0.85,
		Data:       d,
	}, nil
}

type routerStage struct {
	router *routing.Router
}

func (routerStage) Name() string { return StageRouter }

// Run ranks specialties and takes its confidence from the strongest symptom
// cluster hint.
func (s routerStage) Run(_ context.Context, in *StageInput) (StageOutput, error) {
	res := routeOf(s.router, in)
	conf := knowledge.FallbackCluster.Confidence
	if len(res.Hints) > 0 {
		conf = res.Hints[0].Confidence
	}
	return StageOutput{
		Stage:      StageRouter,
		Name:       "Specialist Recommendation",
		Summary:    res.Summary,
		Confidence: conf,
		Data:       res,
	}, nil
}

// Analysis is the knowledge stage product.
type Analysis struct {
	Matches      []patterns.MatchResult `json:"matches"`
	Strength     float64                `json:"strength"`
	Correlations []patterns.Correlation `json:"correlations,omitempty"`
}

// noProfileConfidence is used when there is no profile to match patterns on.
const noProfileConfidence = 0.5

type knowledgeStage struct {
	matcher *patterns.Matcher
}

func (knowledgeStage) Name() string { return StageKnowledge }

func (s knowledgeStage) Run(_ context.Context, in *StageInput) (StageOutput, error) {
	p := in.Request.Profile
	a := Analysis{Matches: s.matcher.Match(p), Correlations: patterns.Correlations(p)}
	a.Strength = patterns.Strength(a.Matches)

	conf := a.Strength
	if len(a.Matches) == 0 {
		conf = noProfileConfidence
	}
	names := make([]string, 0, len(a.Matches))
	for _, m := range a.Matches {
		names = append(names, m.PatternName)
	}
	summary := "No health pattern matched the reported profile"
	if len(names) > 0 {
		summary = "Patterns identified: " + strings.Join(names, ", ")
	}
	return StageOutput{
		Stage:      StageKnowledge,
		Name:       "Medical Analysis",
		Summary:    summary,
		Confidence: conf,
		Data:       a,
	}, nil
}

// RootCause ranks the likely drivers behind the symptoms.
type RootCause struct {
	Severity      patterns.Severity `json:"severity"`
	PrimaryCauses []string          `json:"primary_causes"`
	Timeline      string            `json:"timeline,omitempty"`
}

type rootCauseStage struct {
	matcher *patterns.Matcher
}

func (rootCauseStage) Name() string { return StageRootCause }

func (s rootCauseStage) Run(_ context.Context, in *StageInput) (StageOutput, error) {
	rc := RootCause{Severity: patterns.Score(in.Request.Profile), PrimaryCauses: []string{}}
	a := analysisOf(s.matcher, in)
	for i, m := range a.Matches {
		if i == 3 {
			break
		}
		rc.PrimaryCauses = append(rc.PrimaryCauses, m.PatternName)
	}
	if len(a.Matches) > 0 {
		rc.Timeline = a.Matches[0].Timeline
	}
	if len(rc.PrimaryCauses) == 0 {
		rc.PrimaryCauses = append(rc.PrimaryCauses, rc.Severity.PrimaryConcerns...)
	}
	return StageOutput{
		Stage:      StageRootCause,
		Name:       "Root Cause Analysis",
		Summary:    fmt.Sprintf("Overall severity %.1f/10 (%s)", rc.Severity.Score, rc.Severity.Level),
		Confidence: 0.82,
		Data:       rc,
	}, nil
}

// Plan is the recommender product.
type Plan struct {
	Actions        []string                            `json:"actions"`
	Assessment     confidence.Assessment               `json:"assessment"`
	Recommendation confidence.RecommendationAssessment `json:"recommendation"`
}

type recommenderStage struct {
	policy  confidence.Policy
	matcher *patterns.Matcher
	router  *routing.Router
}

func (recommenderStage) Name() string { return StageRecommender }

func (s recommenderStage) Run(_ context.Context, in *StageInput) (StageOutput, error) {
	req := in.Request
	intake := intakeOf(in)
	analysis := analysisOf(s.matcher, in)

	plan := Plan{Actions: []string{}}
	plan.Assessment = s.policy.Assess(confidence.Input{
		SymptomClarity:       req.Clarity(),
		PatternMatchStrength: analysis.Strength,
		RedFlagsPresent:      in.RedFlags.HasRedFlags(),
		DurationWeeks:        req.DurationWeeks,
		Complexity:           req.Complexity,
	})
	var days *int
	if req.DurationWeeks > 0 {
		d := req.DurationWeeks * 7
		days = &d
	}
	plan.Recommendation = s.policy.AssessRecommendation(confidence.RecommendationInput{
		Symptoms:             intake.Symptoms,
		PatternMatchStrength: analysis.Strength,
		RedFlagsPresent:      in.RedFlags.HasRedFlags(),
		DurationDays:         days,
		HasPatientHistory:    req.PatientHistory,
	})

	if primary, ok := routeOf(s.router, in).Primary(); ok {
		plan.Actions = append(plan.Actions, fmt.Sprintf("See %s: %s", primary.Name, primary.WhenToSee))
	}
	for i, m := range analysis.Matches {
		if i == 3 {
			break
		}
		plan.Actions = append(plan.Actions, fmt.Sprintf("%s: %s %s", m.PatternName, m.Recommendation.Supplement, m.Recommendation.Dose))
		if m.Recommendation.Lifestyle != "" {
			plan.Actions = append(plan.Actions, m.Recommendation.Lifestyle)
		}
	}
	if plan.Assessment.ShouldEscalate {
		plan.Actions = append(plan.Actions, "Consult a healthcare professional: "+plan.Assessment.EscalationReason)
	}

	return StageOutput{
		Stage:      StageRecommender,
		Name:       "Action Plan",
		Summary:    confidence.Guidance(plan.Assessment.Score),
		Confidence: 0.85,
		Data:       plan,
	}, nil
}

// Prior outputs carry typed data only when the stage ran locally. A remote
// runner returns decoded JSON, so each accessor recomputes from the request
// when the type does not match.

func intakeOf(in *StageInput) Intake {
	if v, ok := in.Prior[StageIntake].Data.(Intake); ok {
		return v
	}
	return newIntake(in.Request)
}

func analysisOf(m *patterns.Matcher, in *StageInput) Analysis {
	if v, ok := in.Prior[StageKnowledge].Data.(Analysis); ok {
		return v
	}
	if m == nil {
		return Analysis{}
	}
	matches := m.Match(in.Request.Profile)
	return Analysis{Matches: matches, Strength: patterns.Strength(matches)}
}

func routeOf(r *routing.Router, in *StageInput) routing.Result {
	if v, ok := in.Prior[StageRouter].Data.(routing.Result); ok {
		return v
	}
	if r == nil {
		return routing.Result{}
	}
	intake := intakeOf(in)
	return r.Route(routing.Request{
		Symptoms:   intake.Symptoms,
		BodySystem: intake.BodySystem,
		Duration:   in.Request.Duration,
		Severity:   in.Request.Severity,
	})
}
