package patterns

import (
	"errors"
	"testing"

	"github.com/dorost/consult-engine/internal/knowledge"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("load knowledge: %v", err)
	}
	m, err := NewMatcher(kb, nil, 0)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	return m
}

func TestMatchSleepMoodExerciseProfile(t *testing.T) {
	m := newTestMatcher(t)

	got := m.Match(&Profile{SleepHours: Float(4), MoodScore: Int(2), ExerciseMinsPerWeek: Int(0)})

	want := []struct {
		id    int
		score float64
	}{
		{20, 5.5}, // mental health
		{2, 5.0},  // magnesium
		{11, 5.0}, // sedentary
		{10, 4.0}, // chronic stress
		{1, 3.0},  // vitamin D, ahead of sleep deprivation on table order
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].PatternID != w.id || got[i].MatchScore != w.score {
			t.Errorf("result %d = pattern %d score %.2f, want pattern %d score %.2f",
				i, got[i].PatternID, got[i].MatchScore, w.id, w.score)
		}
	}

	mag := got[1]
	if mag.PatternName != "Magnesium Deficiency" {
		t.Errorf("unexpected name %q", mag.PatternName)
	}
	if mag.IndicatorsMatched != 3 || mag.TotalIndicators != 5 || mag.Confidence != 0.6 {
		t.Errorf("magnesium matched %d/%d conf %.2f, want 3/5 0.60", mag.IndicatorsMatched, mag.TotalIndicators, mag.Confidence)
	}
	if mag.Recommendation.Supplement != "Magnesium Glycinate" || mag.Timeline == "" {
		t.Errorf("recommendation not carried through: %+v", mag.Recommendation)
	}
}

func TestMatchInvariants(t *testing.T) {
	m := newTestMatcher(t)

	profiles := []*Profile{
		nil,
		{},
		{SleepHours: Float(9)},
		{EnergyLevel: String("low"), StressLevel: Int(9), DietType: String("processed"), CaffeineCupsPerDay: Float(5)},
		{
			SleepHours: Float(5), MoodScore: Int(1), AnxietyLevel: Int(8), MentalClarity: Int(2),
			InfectionsPerYear: Int(5), HairLoss: Bool(true), JointPain: Bool(true), MuscleTension: Bool(true),
			Digestion: String("bloated"), Bloating: Bool(true), EnergyLevel: String("low"),
			RecentWeightChange: String("gained"), Age: Int(60), ExerciseMinsPerWeek: Int(0),
		},
	}

	for i, p := range profiles {
		got := m.Match(p)
		if len(got) > 5 {
			t.Errorf("profile %d: %d results, want at most 5", i, len(got))
		}
		for j, r := range got {
			if r.IndicatorsMatched == 0 {
				t.Errorf("profile %d: pattern %d returned with zero indicators", i, r.PatternID)
			}
			if r.Confidence <= 0 || r.Confidence > 1 {
				t.Errorf("profile %d: confidence %.2f out of range", i, r.Confidence)
			}
			if j > 0 && got[j-1].MatchScore < r.MatchScore {
				t.Errorf("profile %d: results not sorted at %d", i, j)
			}
		}
	}
}

func TestMatchEmptyProfileFailsClosed(t *testing.T) {
	m := newTestMatcher(t)

	if got := m.Match(&Profile{}); len(got) != 0 {
		t.Errorf("expected no matches for an empty profile, got %d", len(got))
	}
	if got := m.Match(nil); len(got) != 0 {
		t.Errorf("expected no matches for a nil profile, got %d", len(got))
	}
}

func TestFactorsAloneNeverQualify(t *testing.T) {
	m := newTestMatcher(t)

	// Every one of these is a severity factor only.
	p := &Profile{
		SunExposure: String("low"), LifestyleType: String("indoor"), DietType: String("vegetarian"),
		Gender: String("female"), MenstrualFlow: String("heavy"), JobType: String("desk"),
	}
	if got := m.Match(p); len(got) != 0 {
		t.Errorf("severity factors alone produced %d matches", len(got))
	}
}

func TestMatchLimit(t *testing.T) {
	kb := knowledge.MustLoad()
	m, err := NewMatcher(kb, nil, 2)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	got := m.Match(&Profile{SleepHours: Float(4), MoodScore: Int(2), ExerciseMinsPerWeek: Int(0)})
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}

func TestNewMatcherRejectsUnregisteredPredicates(t *testing.T) {
	tables := knowledge.DefaultTables()
	tables.Patterns[0].Indicators = append(tables.Patterns[0].Indicators, knowledge.Indicator("glowing_skin"))
	kb, err := knowledge.New(tables)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = NewMatcher(kb, nil, 0)
	if !errors.Is(err, knowledge.ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}

func TestRegistryFailsClosed(t *testing.T) {
	r := DefaultRegistry()

	if r.Indicator(knowledge.Indicator("unknown"), &Profile{}) {
		t.Error("unknown indicator must evaluate false")
	}
	if r.Factor(knowledge.Factor("unknown"), &Profile{}) {
		t.Error("unknown factor must evaluate false")
	}
	if r.Indicator(knowledge.IndicatorLowMood, nil) {
		t.Error("nil profile must evaluate false")
	}

	panicky := &Registry{indicators: map[knowledge.Indicator]Predicate{
		"boom": func(*Profile) bool { panic("boom") },
	}}
	if panicky.Indicator("boom", &Profile{}) {
		t.Error("panicking predicate must evaluate false")
	}
}

func TestStrength(t *testing.T) {
	if got := Strength(nil); got != 0 {
		t.Errorf("Strength(nil) = %v", got)
	}
	got := Strength([]MatchResult{{Confidence: 0.4}, {Confidence: 0.8}, {Confidence: 0.6}})
	if got != 0.8 {
		t.Errorf("Strength = %v, want 0.8", got)
	}
}
