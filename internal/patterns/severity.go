package patterns

import "math"

const maxSeverity = 10.0

// Severity is an overall 0-10 concern score for a profile.
type Severity struct {
	Score           float64  `json:"overall_severity"`
	Level           string   `json:"severity_level"`
	Urgency         string   `json:"urgency"`
	PrimaryConcerns []string `json:"primary_concerns"`
}

// Score sums points for short sleep, low mood, inactivity, diet, stress and
// low sun exposure. Unreported fields add nothing.
func Score(p *Profile) Severity {
	if p == nil {
		p = &Profile{}
	}

	var points float64
	switch {
	case lt(p.SleepHours, 5):
		points += 2
	case lt(p.SleepHours, 7):
		points++
	}
	switch {
	case lt(p.MoodScore, 3):
		points += 2
	case lt(p.MoodScore, 5):
		points++
	}
	switch {
	case eq(p.ExerciseMinsPerWeek, 0):
		points += 1.5
	case lt(p.ExerciseMinsPerWeek, 150):
		points += 0.75
	}
	switch {
	case eq(p.DietType, "processed"):
		points += 1.5
	case ne(p.DietType, "whole_food"):
		points += 0.75
	}
	switch {
	case gt(p.StressLevel, 7):
		points++
	case gt(p.StressLevel, 5):
		points += 0.5
	}
	if eq(p.SunExposure, "low") {
		points++
	}

	score := math.Round(math.Min(points, maxSeverity)*10) / 10
	s := Severity{Score: score, PrimaryConcerns: primaryConcerns(p)}
	switch {
	case score > 7:
		s.Level, s.Urgency = "Critical", "High"
	case score > 4:
		s.Level, s.Urgency = "Moderate", "Medium"
	default:
		s.Level, s.Urgency = "Mild", "Low"
	}
	return s
}

func primaryConcerns(p *Profile) []string {
	checks := []struct {
		label string
		hit   bool
	}{
		{"Energy and fatigue", eq(p.EnergyLevel, "low")},
		{"Mood and mental health", lt(p.MoodScore, 5)},
		{"Sleep quality", lt(p.SleepHours, 7)},
		{"Physical activity", eq(p.ExerciseMinsPerWeek, 0)},
		{"Anxiety", gt(p.AnxietyLevel, 5)},
		{"Digestive health", ne(p.Digestion, "normal")},
		{"Chronic stress", gt(p.StressLevel, 6)},
	}
	concerns := []string{}
	for _, c := range checks {
		if c.hit {
			concerns = append(concerns, c.label)
		}
		if len(concerns) == 3 {
			break
		}
	}
	return concerns
}
