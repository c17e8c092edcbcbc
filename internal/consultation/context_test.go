package consultation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dorost/consult-engine/internal/knowledge"
)

func TestContextLifecycle(t *testing.T) {
	kb, _ := testDeps(t)
	c := NewContext(kb)

	if _, ok := c.Current(); ok {
		t.Fatal("new context has no current task")
	}
	if got := c.TaskContext(); got != "No current task set." {
		t.Errorf("TaskContext() = %q", got)
	}
	if err := c.Begin("triage_bot"); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("Begin(unknown) err = %v", err)
	}

	if err := c.Begin(knowledge.TaskIntake); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	c.Set("_temp_parse", 1)
	c.Set("_debug_tokens", []string{"x"})
	c.Set("primary_concern", "always tired")
	c.Complete(StageOutput{
		Stage:   StageIntake,
		Summary: "2 symptom(s) reported",
		Data:    Intake{Symptoms: []string{"fatigue", "weight_gain"}},
	})

	if _, ok := c.Current(); ok {
		t.Error("Complete must end the current task")
	}
	if err := c.Begin(knowledge.TaskRouting); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, ok := c.Get("_temp_parse"); ok {
		t.Error("_temp_ key survived Begin")
	}
	if _, ok := c.Get("_debug_tokens"); ok {
		t.Error("_debug_ key survived Begin")
	}
	if _, ok := c.Get("primary_concern"); !ok {
		t.Error("core data must survive Begin")
	}

	rel := c.Relevant()
	if _, ok := rel["symptoms"]; !ok {
		t.Errorf("routing needs symptoms, got %v", rel)
	}
	if _, ok := rel["primary_concern"]; !ok {
		t.Errorf("routing needs the primary concern, got %v", rel)
	}
	if _, ok := rel["intake"]; ok {
		t.Error("raw task output is not a declared input")
	}

	text := c.TaskContext()
	for _, want := range []string{"CURRENT TASK: routing", "RELEVANT INFORMATION", "symptoms: [fatigue weight_gain]", "REMEMBER YOUR LIMITATIONS"} {
		if !strings.Contains(text, want) {
			t.Errorf("TaskContext() missing %q:\n%s", want, text)
		}
	}

	st := c.Status()
	if st.CurrentTask != knowledge.TaskRouting {
		t.Errorf("CurrentTask = %s", st.CurrentTask)
	}
	if len(st.CompletedTasks) != 1 || st.CompletedTasks[0] != knowledge.TaskIntake {
		t.Errorf("CompletedTasks = %v", st.CompletedTasks)
	}
	if _, ok := c.Outputs()[StageIntake]; !ok {
		t.Error("intake output not recorded")
	}
}

func TestTrackerStats(t *testing.T) {
	tr := NewTracker()
	if s := tr.Stats(); s.Executed != 0 {
		t.Fatalf("empty stats = %+v", s)
	}

	tr.Record(StageOutput{Stage: StageIntake, Confidence: 0.9}, 10*time.Millisecond, nil)
	tr.Record(StageOutput{Stage: StageDiagnostic, Confidence: 0.7, Degraded: true}, 30*time.Millisecond, nil)
	tr.Record(StageOutput{Stage: StageRouter, Confidence: 0.8}, 20*time.Millisecond, errors.New("boom"))

	s := tr.Stats()
	if s.Executed != 3 || s.Succeeded != 2 || s.Failed != 1 || s.Degraded != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.AverageConfidence != 0.8 {
		t.Errorf("AverageConfidence = %v, want 0.8 over successful stages", s.AverageConfidence)
	}
	if s.TotalTime != 60*time.Millisecond || s.AverageTime != 20*time.Millisecond {
		t.Errorf("times = %v / %v", s.TotalTime, s.AverageTime)
	}

	rs, ok := tr.StageStats(StageRouter)
	if !ok || rs.SuccessRate != 0 || rs.AvgConfidence != 0 {
		t.Errorf("router stats = %+v", rs)
	}
	if _, ok := tr.StageStats(StageRecommender); ok {
		t.Error("recommender never ran")
	}
	if m := tr.Metrics(); m[2].Error != "boom" {
		t.Errorf("error not recorded: %+v", m[2])
	}
}

func TestStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute, nil)
	s.now = func() time.Time { return now }

	s.Save(Result{ID: "a", Status: StatusComplete})
	if r, err := s.Get("a"); err != nil || r.Status != StatusComplete {
		t.Fatalf("Get = %+v, %v", r, err)
	}
	if _, err := s.Get("b"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown id err = %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get("a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expired session err = %v", err)
	}
	if n := s.Sweep(); n != 1 || s.Len() != 0 {
		t.Errorf("Sweep removed %d, %d left", n, s.Len())
	}

	s.Save(Result{ID: "c"})
	if !s.Delete("c") || s.Delete("c") {
		t.Error("Delete should report only the first removal")
	}
}
