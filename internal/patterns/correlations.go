package patterns

// Correlation links two reported issues that reinforce each other.
type Correlation struct {
	Name    string   `json:"correlation"`
	Insight string   `json:"insight"`
	Actions []string `json:"actions"`
}

type correlationRule struct {
	Correlation
	applies Predicate
}

var correlationRules = []correlationRule{
	{
		Correlation: Correlation{
			Name:    "Sleep <-> Mood",
			Insight: "Poor sleep directly causes mood issues. This likely creates a cycle where bad mood leads to poor sleep.",
			Actions: []string{"Prioritize 7-9 hours sleep", "Focus on sleep quality first"},
		},
		applies: func(p *Profile) bool { return lt(p.SleepHours, 7) && lt(p.MoodScore, 5) },
	},
	{
		Correlation: Correlation{
			Name:    "Exercise <-> Energy",
			Insight: "Sedentary lifestyle causes low energy, which makes it harder to exercise. Breaking this cycle is key.",
			Actions: []string{"Start with 15-min walks", "Exercise boosts energy more than rest"},
		},
		applies: func(p *Profile) bool { return eq(p.ExerciseMinsPerWeek, 0) && eq(p.EnergyLevel, "low") },
	},
	{
		Correlation: Correlation{
			Name:    "Diet <-> Mental Health",
			Insight: "Processed foods lack nutrients and spike inflammation, directly affecting mood. Gut health = mental health.",
			Actions: []string{"Add whole foods gradually", "Include omega-3 foods"},
		},
		applies: func(p *Profile) bool { return eq(p.DietType, "processed") && lt(p.MoodScore, 5) },
	},
	{
		Correlation: Correlation{
			Name:    "Caffeine <-> Sleep",
			Insight: "High caffeine intake prevents deep sleep even if you 'fall asleep.' This is a major energy killer.",
			Actions: []string{"Cut caffeine by 2pm", "Gradually reduce total caffeine intake"},
		},
		applies: func(p *Profile) bool { return gt(p.CaffeineCupsPerDay, 3) && lt(p.SleepHours, 7) },
	},
	{
		Correlation: Correlation{
			Name:    "Stress <-> Fatigue",
			Insight: "Chronic stress keeps cortisol elevated, which exhausts your body even at rest.",
			Actions: []string{"Add relaxation daily", "Meditation even 10 mins helps"},
		},
		applies: func(p *Profile) bool { return gt(p.StressLevel, 6) && eq(p.EnergyLevel, "low") },
	},
}

// Correlations returns the reinforcing issue pairs present in p, in a fixed
// order.
func Correlations(p *Profile) []Correlation {
	var out []Correlation
	for _, rule := range correlationRules {
		if eval(rule.applies, p) {
			c := rule.Correlation
			c.Actions = append([]string(nil), rule.Actions...)
			out = append(out, c)
		}
	}
	return out
}
