// Package routing ranks medical specialties for a symptom list.
package routing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/internal/triage"
)

const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"

	// emptySymptomScore is used when the caller supplied no symptoms: it reads
	// as "insufficient data" rather than "no match".
	emptySymptomScore = 0.5
)

// Request carries the routing inputs. Duration and Severity are free text and
// only appear in the summary.
type Request struct {
	Symptoms   []string `json:"symptoms"`
	BodySystem string   `json:"body_system"`
	Duration   string   `json:"duration,omitempty"`
	Severity   string   `json:"severity,omitempty"`
}

// Recommendation is one ranked specialty.
type Recommendation struct {
	Specialty       knowledge.SpecialtyID `json:"specialty"`
	Name            string                `json:"name"`
	Priority        string                `json:"priority"`
	MatchScore      float64               `json:"match_score"`
	MatchedSymptoms []string              `json:"matched_symptoms"`
	Reasoning       string                `json:"reasoning"`
	WhenToSee       string                `json:"when_to_see"`
	TypicalTests    []string              `json:"typical_tests"`
}

// Result is either an emergency (Emergency set, no ranking) or a ranked list.
type Result struct {
	Emergency       bool              `json:"emergency"`
	Urgency         knowledge.Urgency `json:"urgency"`
	RedFlags        triage.Result     `json:"red_flags"`
	BodySystem      string            `json:"body_system"`
	Recommendations []Recommendation  `json:"recommendations,omitempty"`
	Hints           []Hint            `json:"hints,omitempty"`
	Summary         string            `json:"summary"`
}

// Primary returns the recommendation tagged primary, if any.
func (r Result) Primary() (Recommendation, bool) {
	for _, rec := range r.Recommendations {
		if rec.Priority == PriorityPrimary {
			return rec, true
		}
	}
	return Recommendation{}, false
}

// Router is immutable after construction and safe for concurrent use.
type Router struct {
	kb       *knowledge.Base
	detector *triage.Detector
}

func NewRouter(kb *knowledge.Base, detector *triage.Detector) *Router {
	if detector == nil {
		detector = triage.NewDetector(kb)
	}
	return &Router{kb: kb, detector: detector}
}

// Route runs red-flag detection first. A terminal detection returns
// immediately without ranking; otherwise the body system's candidates are
// scored by symptom overlap and sorted, keeping priority labels in mapping
// order.
func (r *Router) Route(req Request) Result {
	flags := r.detector.Detect(req.Symptoms)
	if flags.Terminal {
		return Result{
			Emergency: true,
			Urgency:   flags.MaxUrgency,
			RedFlags:  flags,
			Summary:   emergencySummary(flags),
		}
	}

	route := r.kb.BodySystem(req.BodySystem)
	tags := uniqueTags(req.Symptoms)

	recs := make([]Recommendation, 0, len(route.Specialties))
	for i, id := range route.Specialties {
		spec, ok := r.kb.Specialty(id)
		if !ok {
			continue
		}
		score, matched := MatchScore(tags, spec.SymptomTags)
		priority := PrioritySecondary
		if i == 0 {
			priority = PriorityPrimary
		}
		recs = append(recs, Recommendation{
			Specialty:       spec.ID,
			Name:            spec.Name,
			Priority:        priority,
			MatchScore:      score,
			MatchedSymptoms: matched,
			Reasoning:       reasoning(spec, route.System, matched, len(tags)),
			WhenToSee:       spec.WhenToSee,
			TypicalTests:    spec.TypicalTests,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})

	return Result{
		Urgency:         flags.MaxUrgency,
		RedFlags:        flags,
		BodySystem:      route.System,
		Recommendations: recs,
		Hints:           r.Hints(req.Symptoms),
		Summary:         summary(recs, flags, req),
	}
}

// MatchScore returns |user ∩ specialty| / |user| over normalized tags along
// with the overlapping tags. An empty user list scores emptySymptomScore.
func MatchScore(userTags, specialtyTags []string) (float64, []string) {
	if len(userTags) == 0 {
		return emptySymptomScore, nil
	}
	known := make(map[string]struct{}, len(specialtyTags))
	for _, t := range specialtyTags {
		known[t] = struct{}{}
	}
	matched := []string{}
	for _, t := range userTags {
		if _, ok := known[t]; ok {
			matched = append(matched, t)
		}
	}
	return float64(len(matched)) / float64(len(userTags)), matched
}

func uniqueTags(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		tag := knowledge.NormalizeTag(s)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func reasoning(spec knowledge.Specialty, system string, matched []string, total int) string {
	if total == 0 {
		return fmt.Sprintf("%s covers the %s body system; more symptom detail would sharpen this match.", spec.Name, system)
	}
	if len(matched) == 0 {
		return fmt.Sprintf("%s covers the %s body system, though none of your listed symptoms are typical for this specialty.", spec.Name, system)
	}
	return fmt.Sprintf("%s (%s) commonly treats %d of your %d symptoms: %s.",
		spec.Name, strings.ToLower(spec.Description), len(matched), total, strings.Join(humanize(matched), ", "))
}

func humanize(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ReplaceAll(t, "_", " ")
	}
	return out
}

func emergencySummary(flags triage.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RED FLAG SYMPTOMS DETECTED (%s). Specialist routing was skipped.\n", flags.MaxUrgency)
	for _, m := range flags.Flags {
		fmt.Fprintf(&b, "- %s: %s\n  Action: %s\n", m.Flag.Symptom, m.Flag.Reason, m.Flag.Action)
	}
	b.WriteString("Do not wait for an online consultation. Seek care now.")
	return b.String()
}

func summary(recs []Recommendation, flags triage.Result, req Request) string {
	if len(recs) == 0 {
		return "No specialist match found. Please see a Primary Care physician for an initial evaluation and referral."
	}

	var b strings.Builder
	top := recs[0]
	fmt.Fprintf(&b, "Recommended: %s. %s\n", top.Name, top.Reasoning)
	if len(recs) > 1 {
		fmt.Fprintf(&b, "Also consider: %s. %s\n", recs[1].Name, recs[1].Reasoning)
	}
	if tests := firstN(top.TypicalTests, 3); len(tests) > 0 {
		fmt.Fprintf(&b, "Tests they may order: %s.\n", strings.Join(tests, "; "))
	}
	if req.Duration != "" || req.Severity != "" {
		fmt.Fprintf(&b, "Reported duration: %s; severity: %s.\n", orUnknown(req.Duration), orUnknown(req.Severity))
	}
	for _, m := range flags.Advisories() {
		fmt.Fprintf(&b, "Note (%s): %s\n", m.Flag.Urgency, m.Flag.Action)
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstN(in []string, n int) []string {
	if len(in) < n {
		return in
	}
	return in[:n]
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not reported"
	}
	return s
}
