package confidence

import (
	"testing"
)

func TestAssessVagueShortCaseEscalates(t *testing.T) {
	a := Assess(Input{SymptomClarity: 0.2, PatternMatchStrength: 0.3, DurationWeeks: 0})

	if a.Score != 0.2 {
		t.Errorf("Score = %v, want 0.2", a.Score)
	}
	if a.Reliability != ReliabilityLow {
		t.Errorf("Reliability = %s, want low", a.Reliability)
	}
	if !a.ShouldEscalate {
		t.Fatal("expected escalation")
	}
	if a.EscalationReason != ReasonLowConfidence {
		t.Errorf("reason = %q, want low confidence", a.EscalationReason)
	}
	if len(a.FactorsDecreasing) != 2 {
		t.Errorf("expected vague and short-duration penalties, got %v", a.FactorsDecreasing)
	}
}

func TestAssessRedFlagOverride(t *testing.T) {
	inputs := []Input{
		{SymptomClarity: 1, PatternMatchStrength: 1, DurationWeeks: 4, RedFlagsPresent: true},
		{SymptomClarity: 0, PatternMatchStrength: 0, DurationWeeks: 0, Complexity: 1, RedFlagsPresent: true},
		{SymptomClarity: 0.5, PatternMatchStrength: 0.5, DurationWeeks: 52, RedFlagsPresent: true},
	}

	for _, in := range inputs {
		a := Assess(in)
		if a.Score != 0.2 {
			t.Errorf("Assess(%+v).Score = %v, want 0.2", in, a.Score)
		}
		if !a.ShouldEscalate || a.EscalationReason != ReasonRedFlags {
			t.Errorf("Assess(%+v) reason = %q, want red flags", in, a.EscalationReason)
		}
		if a.EscalationReasons[0] != ReasonRedFlags {
			t.Errorf("red flags must be reported first, got %v", a.EscalationReasons)
		}
	}
}

func TestAssessHighConfidence(t *testing.T) {
	a := Assess(Input{SymptomClarity: 0.9, PatternMatchStrength: 0.9, DurationWeeks: 4, Complexity: 0.2})

	if a.Score != 0.95 {
		t.Errorf("Score = %v, want 0.95", a.Score)
	}
	if a.Reliability != ReliabilityHigh {
		t.Errorf("Reliability = %s, want high", a.Reliability)
	}
	if a.ShouldEscalate {
		t.Errorf("unexpected escalation: %v", a.EscalationReasons)
	}
	if len(a.FactorsIncreasing) != 3 {
		t.Errorf("expected 3 increasing factors, got %v", a.FactorsIncreasing)
	}
}

func TestAssessEscalationReasons(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		reasons []string
	}{
		{
			name:    "complexity with good score",
			in:      Input{SymptomClarity: 0.9, PatternMatchStrength: 0.9, DurationWeeks: 4, Complexity: 0.85},
			reasons: []string{ReasonComplexity},
		},
		{
			name:    "chronic",
			in:      Input{SymptomClarity: 0.9, PatternMatchStrength: 0.9, DurationWeeks: 13},
			reasons: []string{ReasonChronic},
		},
		{
			name:    "low and complex and chronic",
			in:      Input{SymptomClarity: 0.1, DurationWeeks: 20, Complexity: 0.9},
			reasons: []string{ReasonLowConfidence, ReasonComplexity, ReasonChronic},
		},
		{
			name:    "twelve weeks is not chronic",
			in:      Input{SymptomClarity: 0.9, PatternMatchStrength: 0.9, DurationWeeks: 12},
			reasons: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.in)
			if len(a.EscalationReasons) != len(tt.reasons) {
				t.Fatalf("reasons = %v, want %v", a.EscalationReasons, tt.reasons)
			}
			for i := range tt.reasons {
				if a.EscalationReasons[i] != tt.reasons[i] {
					t.Errorf("reason %d = %q, want %q", i, a.EscalationReasons[i], tt.reasons[i])
				}
			}
			if a.ShouldEscalate != (len(tt.reasons) > 0) {
				t.Errorf("ShouldEscalate = %v", a.ShouldEscalate)
			}
		})
	}
}

func TestAssessAlwaysInRange(t *testing.T) {
	values := []float64{-1, 0, 0.39, 0.4, 0.7, 0.71, 0.8, 0.81, 1, 2}
	weeks := []int{-5, 0, 1, 2, 12, 13, 100}

	for _, clarity := range values {
		for _, strength := range values {
			for _, complexity := range values {
				for _, w := range weeks {
					for _, flags := range []bool{false, true} {
						in := Input{clarity, strength, flags, w, complexity}
						a := Assess(in)
						if a.Score < 0 || a.Score > 1 {
							t.Fatalf("Assess(%+v) = %v out of range", in, a.Score)
						}
						if again := Assess(in); again.Score != a.Score || again.EscalationReason != a.EscalationReason {
							t.Fatalf("Assess(%+v) not deterministic", in)
						}
					}
				}
			}
		}
	}
}

func TestPolicyThreshold(t *testing.T) {
	p := DefaultPolicy()
	p.EscalationThreshold = 0.5

	// 0.5 base + 0.1 duration = 0.6 -> escalates under default, not here
	in := Input{SymptomClarity: 0.5, PatternMatchStrength: 0.5, DurationWeeks: 3}
	if Assess(in).ShouldEscalate {
		t.Error("0.60 should not escalate under default threshold")
	}
	in.DurationWeeks = 1
	if !Assess(in).ShouldEscalate {
		t.Error("0.50 should escalate under default threshold")
	}
	if p.Assess(in).ShouldEscalate {
		t.Error("0.50 should not escalate under a 0.5 threshold")
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		score float64
		want  Reliability
	}{
		{1, ReliabilityHigh},
		{0.75, ReliabilityHigh},
		{0.74, ReliabilityMedium},
		{0.5, ReliabilityMedium},
		{0.49, ReliabilityLow},
		{0, ReliabilityLow},
	}
	for _, tt := range tests {
		if got := Tier(tt.score); got != tt.want {
			t.Errorf("Tier(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAssessRecommendation(t *testing.T) {
	days := func(n int) *int { return &n }

	tests := []struct {
		name   string
		in     RecommendationInput
		score  float64
		doctor bool
	}{
		{
			name:   "strong",
			in:     RecommendationInput{Symptoms: []string{"a", "b", "c"}, PatternMatchStrength: 0.9, HasPatientHistory: true, DurationDays: days(30)},
			score:  0.9,
			doctor: false,
		},
		{
			name:   "vague and short",
			in:     RecommendationInput{Symptoms: []string{"Tired"}, DurationDays: days(2)},
			score:  0.2,
			doctor: true,
		},
		{
			name:   "unknown duration counts as a week",
			in:     RecommendationInput{Symptoms: []string{"a"}},
			score:  0.5,
			doctor: true,
		},
		{
			name:   "red flags override",
			in:     RecommendationInput{Symptoms: []string{"a", "b", "c"}, PatternMatchStrength: 1, HasPatientHistory: true, RedFlagsPresent: true, DurationDays: days(1)},
			score:  0.3,
			doctor: true,
		},
		{
			name:   "no improvement",
			in:     RecommendationInput{Symptoms: []string{"a", "b", "c"}, PatternMatchStrength: 0.9, DurationDays: days(60), NoImprovement8Weeks: true},
			score:  0.8,
			doctor: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AssessRecommendation(tt.in)
			if a.Score != tt.score {
				t.Errorf("Score = %v, want %v", a.Score, tt.score)
			}
			if a.ShouldSeeDoctor != tt.doctor {
				t.Errorf("ShouldSeeDoctor = %v, want %v", a.ShouldSeeDoctor, tt.doctor)
			}
			if a.Guidance == "" {
				t.Error("expected guidance text")
			}
		})
	}
}
