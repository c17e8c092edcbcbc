package knowledge

import "strings"

// BodySystemRoute maps a declared body system to candidate specialties in
// priority order. The first entry is the primary candidate.
type BodySystemRoute struct {
	System      string        `json:"system"`
	Specialties []SpecialtyID `json:"specialties"`
}

// SymptomCluster fires when every tag in Tags is present in a caller's
// normalized symptom set.
type SymptomCluster struct {
	Name       string      `json:"name"`
	Tags       []string    `json:"tags"`
	Specialty  SpecialtyID `json:"specialty"`
	Reason     string      `json:"reason"`
	Confidence float64     `json:"confidence"`
}

// FallbackCluster is returned as a hint when no cluster fires.
var FallbackCluster = SymptomCluster{
	Name:       "unclear",
	Specialty:  PrimaryCare,
	Reason:     "Symptoms don't match a clear specialty pattern. Start with Primary Care for evaluation and potential referral.",
	Confidence: 0.70,
}

// DefaultBodySystemRoute is used for unknown or unmapped body systems.
func DefaultBodySystemRoute() BodySystemRoute {
	return BodySystemRoute{System: "unknown", Specialties: []SpecialtyID{PrimaryCare}}
}

// NormalizeBodySystem lowercases and trims a declared body system.
func NormalizeBodySystem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bodySystemTable() []BodySystemRoute {
	return []BodySystemRoute{
		{System: "hormonal", Specialties: []SpecialtyID{Endocrinologist, PrimaryCare}},
		{System: "digestive", Specialties: []SpecialtyID{Gastroenterologist, PrimaryCare}},
		{System: "skin", Specialties: []SpecialtyID{Dermatologist}},
		{System: "heart", Specialties: []SpecialtyID{Cardiologist}},
		{System: "brain", Specialties: []SpecialtyID{Neurologist}},
		{System: "joints", Specialties: []SpecialtyID{Rheumatologist, PrimaryCare}},
		{System: "mental", Specialties: []SpecialtyID{Psychiatrist, PrimaryCare}},
		{System: "blood", Specialties: []SpecialtyID{Hematologist, PrimaryCare}},
		{System: "general", Specialties: []SpecialtyID{PrimaryCare}},
		{System: "unknown", Specialties: []SpecialtyID{PrimaryCare}},
	}
}

func clusterTable() []SymptomCluster {
	return []SymptomCluster{
		{
			Name:       "thyroid",
			Tags:       []string{"fatigue", "weight_gain", "cold_intolerance", "hair_loss"},
			Specialty:  Endocrinologist,
			Reason:     "Pattern suggests thyroid disorder (hypothyroidism)",
			Confidence: 0.85,
		},
		{
			Name:       "diabetes",
			Tags:       []string{"weight_loss", "excessive_thirst", "frequent_urination"},
			Specialty:  Endocrinologist,
			Reason:     "Pattern suggests diabetes",
			Confidence: 0.90,
		},
		{
			Name:       "digestive",
			Tags:       []string{"bloating", "abdominal_pain", "diarrhea", "constipation"},
			Specialty:  Gastroenterologist,
			Reason:     "Digestive symptoms suggest GI disorder (IBS, IBD, etc.)",
			Confidence: 0.80,
		},
		{
			Name:       "cardiac",
			Tags:       []string{"palpitations", "racing_heart", "irregular_heartbeat"},
			Specialty:  Cardiologist,
			Reason:     "Cardiac symptoms require heart evaluation",
			Confidence: 0.95,
		},
		{
			Name:       "skin",
			Tags:       []string{"rash", "skin_changes", "mole_changes"},
			Specialty:  Dermatologist,
			Reason:     "Skin issues require dermatological evaluation",
			Confidence: 0.85,
		},
		{
			Name:       "neurological",
			Tags:       []string{"headache", "tingling", "weakness"},
			Specialty:  Neurologist,
			Reason:     "Neurological symptoms suggest nervous system involvement",
			Confidence: 0.80,
		},
		{
			Name:       "rheumatologic",
			Tags:       []string{"joint_pain", "multiple_joint_swelling", "morning_stiffness"},
			Specialty:  Rheumatologist,
			Reason:     "Multiple joint involvement suggests autoimmune or inflammatory arthritis",
			Confidence: 0.85,
		},
		{
			Name:       "mental_health",
			Tags:       []string{"depression", "anxiety", "mood_swings", "panic_attacks"},
			Specialty:  Psychiatrist,
			Reason:     "Mental health symptoms may benefit from psychiatric evaluation and medication",
			Confidence: 0.80,
		},
	}
}
