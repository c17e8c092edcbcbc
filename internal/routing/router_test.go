package routing

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dorost/consult-engine/internal/knowledge"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("load knowledge: %v", err)
	}
	return NewRouter(kb, nil)
}

func TestRouteEmergencyShortCircuits(t *testing.T) {
	r := newTestRouter(t)

	res := r.Route(Request{
		Symptoms:   []string{"chest pain", "pain radiating to arm"},
		BodySystem: "heart",
	})

	if !res.Emergency {
		t.Fatal("expected emergency result")
	}
	if res.Urgency != knowledge.UrgencyEmergency911 {
		t.Errorf("Urgency = %s, want EMERGENCY_911", res.Urgency)
	}
	if len(res.Recommendations) != 0 {
		t.Errorf("expected no ranking, got %d recommendations", len(res.Recommendations))
	}
	if len(res.Hints) != 0 {
		t.Errorf("expected no hints, got %v", res.Hints)
	}
	if !strings.Contains(res.Summary, "CALL 911") {
		t.Errorf("summary should carry the action, got:\n%s", res.Summary)
	}
}

func TestRouteHormonalRanksEndocrinologistFirst(t *testing.T) {
	r := newTestRouter(t)

	res := r.Route(Request{
		Symptoms:   []string{"fatigue", "weight_gain", "cold_intolerance", "hair_loss"},
		BodySystem: "hormonal",
		Duration:   "3 months",
		Severity:   "moderate",
	})

	if res.Emergency {
		t.Fatalf("unexpected emergency: %v", res.RedFlags.FlagIDs())
	}
	if len(res.Recommendations) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(res.Recommendations))
	}

	top := res.Recommendations[0]
	if top.Specialty != knowledge.Endocrinologist {
		t.Errorf("top = %s, want endocrinologist", top.Specialty)
	}
	if top.MatchScore != 1.0 {
		t.Errorf("MatchScore = %v, want 1.0", top.MatchScore)
	}
	if top.Priority != PriorityPrimary {
		t.Errorf("Priority = %s, want primary", top.Priority)
	}
	if res.Recommendations[1].Priority != PrioritySecondary {
		t.Errorf("second priority = %s, want secondary", res.Recommendations[1].Priority)
	}
	if res.Recommendations[1].MatchScore != 0 {
		t.Errorf("primary care score = %v, want 0", res.Recommendations[1].MatchScore)
	}

	if len(res.Hints) != 1 || res.Hints[0].Cluster != "thyroid" || res.Hints[0].Confidence != 0.85 {
		t.Errorf("expected thyroid hint, got %+v", res.Hints)
	}
	if !strings.Contains(res.Summary, "Endocrinologist") || !strings.Contains(res.Summary, "3 months") {
		t.Errorf("unexpected summary:\n%s", res.Summary)
	}
}

func TestRoutePriorityFollowsMappingOrder(t *testing.T) {
	r := newTestRouter(t)

	// Only primary care overlaps, so it sorts first but stays secondary.
	res := r.Route(Request{Symptoms: []string{"cold", "flu"}, BodySystem: "joints"})

	if res.Recommendations[0].Specialty != knowledge.PrimaryCare {
		t.Fatalf("expected primary care ranked first, got %s", res.Recommendations[0].Specialty)
	}
	if res.Recommendations[0].Priority != PrioritySecondary {
		t.Errorf("primary care should keep secondary priority, got %s", res.Recommendations[0].Priority)
	}
	p, ok := res.Primary()
	if !ok || p.Specialty != knowledge.Rheumatologist {
		t.Errorf("primary = %+v, want rheumatologist", p)
	}
}

func TestRouteTiesKeepMappingOrder(t *testing.T) {
	r := newTestRouter(t)

	res := r.Route(Request{Symptoms: []string{"sneezing"}, BodySystem: "blood"})

	if res.Recommendations[0].Specialty != knowledge.Hematologist {
		t.Errorf("tie should keep mapping order, got %s first", res.Recommendations[0].Specialty)
	}
}

func TestRouteEmptySymptomsDefaultScore(t *testing.T) {
	r := newTestRouter(t)

	res := r.Route(Request{BodySystem: "digestive"})

	for _, rec := range res.Recommendations {
		if rec.MatchScore != 0.5 {
			t.Errorf("%s score = %v, want 0.5", rec.Specialty, rec.MatchScore)
		}
	}
	if len(res.Hints) != 1 || res.Hints[0].Specialty != knowledge.PrimaryCare {
		t.Errorf("expected primary care fallback hint, got %+v", res.Hints)
	}
}

func TestRouteUnknownBodySystem(t *testing.T) {
	r := newTestRouter(t)

	res := r.Route(Request{Symptoms: []string{"itching"}, BodySystem: "Spleen"})

	if len(res.Recommendations) != 1 || res.Recommendations[0].Specialty != knowledge.PrimaryCare {
		t.Fatalf("expected primary care only, got %+v", res.Recommendations)
	}
	if res.Recommendations[0].Priority != PriorityPrimary {
		t.Error("sole candidate should be primary")
	}
}

func TestRouteNonTerminalFlagsAreAdvisories(t *testing.T) {
	r := newTestRouter(t)

	res := r.Route(Request{Symptoms: []string{"rash", "changing mole"}, BodySystem: "skin"})

	if res.Emergency {
		t.Fatal("SOON_1WEEK must not short-circuit")
	}
	if res.Urgency != knowledge.UrgencySoon1Week {
		t.Errorf("Urgency = %s, want SOON_1WEEK", res.Urgency)
	}
	if len(res.Recommendations) == 0 {
		t.Fatal("expected ranked list")
	}
	if !strings.Contains(res.Summary, "SOON_1WEEK") {
		t.Errorf("summary should note the advisory:\n%s", res.Summary)
	}
}

func TestRouteEveryClusterIsReachable(t *testing.T) {
	r := newTestRouter(t)

	for _, c := range knowledge.MustLoad().Clusters() {
		t.Run(c.Name, func(t *testing.T) {
			res := r.Route(Request{Symptoms: c.Tags})
			if res.Emergency {
				t.Fatalf("cluster tags %v short-circuit as %s", c.Tags, res.Urgency)
			}
			found := false
			for _, h := range res.Hints {
				if h.Cluster == c.Name {
					found = true
				}
			}
			if !found {
				t.Errorf("hints = %+v, want %s", res.Hints, c.Name)
			}
		})
	}
}

func TestRouteIsIdempotent(t *testing.T) {
	r := newTestRouter(t)
	req := Request{Symptoms: []string{"bloating", "diarrhea", "fatigue"}, BodySystem: "digestive"}

	first := r.Route(req)
	for i := 0; i < 5; i++ {
		if again := r.Route(req); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name    string
		user    []string
		spec    []string
		want    float64
		matched int
	}{
		{"empty user list", nil, []string{"a"}, 0.5, 0},
		{"no overlap", []string{"x", "y"}, []string{"a", "b"}, 0, 0},
		{"half", []string{"a", "x"}, []string{"a", "b"}, 0.5, 1},
		{"full", []string{"a", "b"}, []string{"a", "b", "c"}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := MatchScore(tt.user, tt.spec)
			if got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Error("score must never be negative")
			}
			if len(matched) != tt.matched {
				t.Errorf("matched = %v, want %d tags", matched, tt.matched)
			}
		})
	}
}

func TestHintsAllClusterTagsRequired(t *testing.T) {
	r := newTestRouter(t)

	hints := r.Hints([]string{"weight loss", "excessive thirst"})
	if len(hints) != 1 || hints[0].Specialty != knowledge.PrimaryCare || hints[0].Confidence != 0.70 {
		t.Errorf("partial cluster should fall back, got %+v", hints)
	}

	hints = r.Hints([]string{"weight loss", "excessive thirst", "frequent urination", "joint pain", "multiple joint swelling", "morning stiffness"})
	if len(hints) != 2 {
		t.Fatalf("expected diabetes and rheumatologic hints, got %+v", hints)
	}
	if hints[0].Cluster != "diabetes" || hints[1].Cluster != "rheumatologic" {
		t.Errorf("unexpected order: %+v", hints)
	}
}
