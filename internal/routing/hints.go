package routing

import (
	"github.com/dorost/consult-engine/internal/knowledge"
)

// Hint is a specialist suggestion from a fully matched symptom cluster.
type Hint struct {
	Cluster    string                `json:"cluster"`
	Specialty  knowledge.SpecialtyID `json:"specialty"`
	Reason     string                `json:"reason"`
	Confidence float64               `json:"confidence"`
}

// Hints returns every cluster whose tags are all present in symptoms, in
// table order. With no cluster match it returns the primary care fallback.
func (r *Router) Hints(symptoms []string) []Hint {
	have := make(map[string]struct{}, len(symptoms))
	for _, t := range uniqueTags(symptoms) {
		have[t] = struct{}{}
	}

	var hints []Hint
	for _, c := range r.kb.Clusters() {
		if containsAll(have, c.Tags) {
			hints = append(hints, hintFrom(c))
		}
	}
	if len(hints) == 0 {
		hints = append(hints, hintFrom(knowledge.FallbackCluster))
	}
	return hints
}

func hintFrom(c knowledge.SymptomCluster) Hint {
	return Hint{Cluster: c.Name, Specialty: c.Specialty, Reason: c.Reason, Confidence: c.Confidence}
}

func containsAll(have map[string]struct{}, tags []string) bool {
	for _, t := range tags {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}
