// Package confidence scores how far an automated assessment can be trusted
// and decides when a case must be escalated to a professional.
//
// All functions are pure and deterministic.
package confidence

import "math"

// Reliability is the tier derived from a score.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// Escalation reasons, in reporting priority.
const (
	ReasonRedFlags      = "Red flag symptoms require immediate medical attention"
	ReasonLowConfidence = "Confidence too low for reliable recommendations"
	ReasonComplexity    = "Case complexity requires medical expertise"
	ReasonChronic       = "Chronic symptoms (>12 weeks) require medical workup"
)

const baseline = 0.5

// Policy holds the thresholds of the escalation rules.
type Policy struct {
	EscalationThreshold  float64
	RedFlagOverride      float64
	ComplexityEscalation float64
	ChronicWeeks         int
}

func DefaultPolicy() Policy {
	return Policy{
		EscalationThreshold:  0.60,
		RedFlagOverride:      0.20,
		ComplexityEscalation: 0.8,
		ChronicWeeks:         12,
	}
}

// Input describes the case being assessed. Clarity, PatternMatchStrength and
// Complexity are expected in [0,1]; values outside are tolerated.
type Input struct {
	SymptomClarity       float64 `json:"symptom_clarity"`
	PatternMatchStrength float64 `json:"pattern_match_strength"`
	RedFlagsPresent      bool    `json:"red_flags_present"`
	DurationWeeks        int     `json:"duration_weeks"`
	Complexity           float64 `json:"patient_complexity"`
}

type Assessment struct {
	Score             float64     `json:"score"`
	FactorsIncreasing []string    `json:"factors_increasing"`
	FactorsDecreasing []string    `json:"factors_decreasing"`
	Reliability       Reliability `json:"reliability"`
	ShouldEscalate    bool        `json:"should_escalate"`
	// EscalationReason is the highest priority entry of EscalationReasons.
	EscalationReason  string      `json:"escalation_reason,omitempty"`
	EscalationReasons []string    `json:"escalation_reasons,omitempty"`
}

// Assess scores in with DefaultPolicy.
func Assess(in Input) Assessment {
	return DefaultPolicy().Assess(in)
}

// Assess starts from 0.5 and applies fixed bonuses and penalties. Red flags
// replace the result with RedFlagOverride after every other adjustment. The
// score is clamped to [0,1] and rounded to two decimals.
func (p Policy) Assess(in Input) Assessment {
	a := Assessment{FactorsIncreasing: []string{}, FactorsDecreasing: []string{}}
	score := baseline

	if in.SymptomClarity > 0.7 {
		score += 0.15
		a.FactorsIncreasing = append(a.FactorsIncreasing, "Symptoms are specific and well-described")
	}
	if in.PatternMatchStrength > 0.8 {
		score += 0.20
		a.FactorsIncreasing = append(a.FactorsIncreasing, "Strong match to known health patterns")
	}
	if in.DurationWeeks >= 2 {
		score += 0.10
		a.FactorsIncreasing = append(a.FactorsIncreasing, "Symptom duration allows for pattern recognition")
	}

	if in.SymptomClarity < 0.4 {
		score -= 0.20
		a.FactorsDecreasing = append(a.FactorsDecreasing, "Symptoms are vague or nonspecific")
	}
	if in.Complexity > 0.7 {
		score -= 0.15
		a.FactorsDecreasing = append(a.FactorsDecreasing, "Complex case with multiple interacting factors")
	}
	if in.DurationWeeks < 1 {
		score -= 0.10
		a.FactorsDecreasing = append(a.FactorsDecreasing, "Very short duration makes assessment uncertain")
	}

	if in.RedFlagsPresent {
		score = p.RedFlagOverride
		a.FactorsDecreasing = append(a.FactorsDecreasing, "Red flag symptoms detected - requires medical evaluation")
	}

	a.Score = round2(clamp(score))
	a.Reliability = Tier(a.Score)

	if in.RedFlagsPresent {
		a.EscalationReasons = append(a.EscalationReasons, ReasonRedFlags)
	}
	if a.Score < p.EscalationThreshold {
		a.EscalationReasons = append(a.EscalationReasons, ReasonLowConfidence)
	}
	if in.Complexity > p.ComplexityEscalation {
		a.EscalationReasons = append(a.EscalationReasons, ReasonComplexity)
	}
	if in.DurationWeeks > p.ChronicWeeks {
		a.EscalationReasons = append(a.EscalationReasons, ReasonChronic)
	}
	if len(a.EscalationReasons) > 0 {
		a.ShouldEscalate = true
		a.EscalationReason = a.EscalationReasons[0]
	}
	return a
}

// Tier maps a score to its reliability tier.
func Tier(score float64) Reliability {
	switch {
	case score >= 0.75:
		return ReliabilityHigh
	case score >= 0.50:
		return ReliabilityMedium
	default:
		return ReliabilityLow
	}
}

// Guidance is the patient-facing advice for a score.
func Guidance(score float64) string {
	switch Tier(score) {
	case ReliabilityHigh:
		return "High confidence in assessment. Recommendations are well-supported by symptom pattern. " +
			"However, if symptoms persist or worsen, consult a healthcare professional."
	case ReliabilityMedium:
		return "Moderate confidence in assessment. Recommendations are reasonable based on symptoms. " +
			"Monitor your progress and see a doctor if no improvement in 4-6 weeks."
	default:
		return "Low confidence in assessment. Symptoms require professional medical evaluation. " +
			"Seeing a doctor for proper diagnosis is recommended; these suggestions are educational only."
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
