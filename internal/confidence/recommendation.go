package confidence

import "github.com/dorost/consult-engine/internal/knowledge"

const (
	recommendationRedFlagOverride = 0.30
	defaultDurationDays           = 7
)

var vagueSymptoms = map[string]struct{}{
	"tired":    {},
	"feel_bad": {},
	"unwell":   {},
}

// RecommendationInput describes a finished recommendation. DurationDays nil
// means unknown and is treated as one week.
type RecommendationInput struct {
	Symptoms             []string `json:"symptoms"`
	PatternMatchStrength float64  `json:"pattern_match_strength"`
	RedFlagsPresent      bool     `json:"red_flags_present"`
	DurationDays         *int     `json:"duration_days,omitempty"`
	HasPatientHistory    bool     `json:"has_patient_history"`
	NoImprovement8Weeks  bool     `json:"no_improvement_8weeks"`
}

type RecommendationAssessment struct {
	Score           float64     `json:"confidence_score"`
	Reliability     Reliability `json:"reliability"`
	ShouldSeeDoctor bool        `json:"should_see_doctor"`
	Factors         []string    `json:"factors"`
	Guidance        string      `json:"recommendation"`
}

// AssessRecommendation scores a recommendation by symptom count, pattern
// strength, history, vagueness and duration. Red flags force 0.30 after every
// other adjustment.
func (p Policy) AssessRecommendation(in RecommendationInput) RecommendationAssessment {
	a := RecommendationAssessment{Factors: []string{}}
	score := baseline

	if len(in.Symptoms) >= 3 {
		score += 0.1
		a.Factors = append(a.Factors, "Multiple symptoms provide clearer pattern")
	}
	if in.PatternMatchStrength > 0.8 {
		score += 0.2
		a.Factors = append(a.Factors, "Strong pattern match to known condition")
	}
	if in.HasPatientHistory {
		score += 0.1
		a.Factors = append(a.Factors, "Patient history supports assessment")
	}
	if hasVague(in.Symptoms) {
		score -= 0.2
		a.Factors = append(a.Factors, "Symptoms are vague and nonspecific")
	}
	days := defaultDurationDays
	if in.DurationDays != nil {
		days = *in.DurationDays
	}
	if days < 7 {
		score -= 0.1
		a.Factors = append(a.Factors, "Short duration makes assessment less certain")
	}
	if in.RedFlagsPresent {
		score = recommendationRedFlagOverride
		a.Factors = append(a.Factors, "Red flags require professional evaluation")
	}

	a.Score = round2(clamp(score))
	a.Reliability = Tier(a.Score)
	a.ShouldSeeDoctor = a.Score < p.EscalationThreshold || in.RedFlagsPresent || in.NoImprovement8Weeks
	a.Guidance = Guidance(a.Score)
	return a
}

// AssessRecommendation scores in with DefaultPolicy.
func AssessRecommendation(in RecommendationInput) RecommendationAssessment {
	return DefaultPolicy().AssessRecommendation(in)
}

func hasVague(symptoms []string) bool {
	for _, s := range symptoms {
		if _, ok := vagueSymptoms[knowledge.NormalizeTag(s)]; ok {
			return true
		}
	}
	return false
}
