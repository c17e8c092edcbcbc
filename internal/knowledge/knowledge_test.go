package knowledge

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestLoadBuiltInTables(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := len(b.Specialties()); got != 9 {
		t.Errorf("expected 9 specialties, got %d", got)
	}
	if got := len(b.RedFlags()); got != 16 {
		t.Errorf("expected 16 red flags, got %d", got)
	}
	if got := len(b.Patterns()); got != 20 {
		t.Errorf("expected 20 patterns, got %d", got)
	}
	if got := len(b.Clusters()); got != 8 {
		t.Errorf("expected 8 clusters, got %d", got)
	}
	for _, tt := range []TaskType{TaskIntake, TaskDiagnostic, TaskAnalysis, TaskRootCause, TaskRecommendation, TaskRouting, TaskFollowUp} {
		if _, ok := b.Task(tt); !ok {
			t.Errorf("missing task %q", tt)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	b := MustLoad()

	specs := b.Specialties()
	specs[0].Name = "mutated"
	specs[0].SymptomTags[0] = "mutated"

	s, ok := b.Specialty(specs[0].ID)
	if !ok {
		t.Fatalf("specialty %q not found", specs[0].ID)
	}
	if s.Name == "mutated" || s.SymptomTags[0] == "mutated" {
		t.Error("caller mutation leaked into the knowledge base")
	}

	flags := b.RedFlags()
	flags[0].Keywords[0] = "mutated"
	if b.RedFlags()[0].Keywords[0] == "mutated" {
		t.Error("red flag keywords are shared with callers")
	}

	p, _ := b.Pattern(1)
	p.Indicators[0] = "mutated"
	if again, _ := b.Pattern(1); again.Indicators[0] == "mutated" {
		t.Error("pattern indicators are shared with callers")
	}
}

func TestBodySystemLookup(t *testing.T) {
	b := MustLoad()

	tests := []struct {
		system string
		want   []SpecialtyID
	}{
		{"hormonal", []SpecialtyID{Endocrinologist, PrimaryCare}},
		{"  HORMONAL ", []SpecialtyID{Endocrinologist, PrimaryCare}},
		{"skin", []SpecialtyID{Dermatologist}},
		{"spleen", []SpecialtyID{PrimaryCare}},
		{"", []SpecialtyID{PrimaryCare}},
	}

	for _, tt := range tests {
		got := b.BodySystem(tt.system).Specialties
		if len(got) != len(tt.want) {
			t.Errorf("BodySystem(%q) = %v, want %v", tt.system, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("BodySystem(%q)[%d] = %q, want %q", tt.system, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNewRejectsMalformedTables(t *testing.T) {
	tables := DefaultTables()
	tables.RedFlags = append(tables.RedFlags, RedFlag{ID: "cardiac_chest_pain", Symptom: "dup", Reason: "r", Action: "a", Urgency: Urgency(42)})
	tables.Patterns[0].Indicators = nil
	tables.BodySystems = append(tables.BodySystems, BodySystemRoute{System: "lungs", Specialties: []SpecialtyID{"pulmonologist"}})

	b, err := New(tables)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if b != nil {
		t.Error("expected nil base alongside error")
	}
	if !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{"duplicate id", "invalid urgency", "no indicators", "unknown specialty \"pulmonologist\""} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to mention %q, got:\n%s", want, msg)
		}
	}
}

func TestNewRequiresPrimaryCare(t *testing.T) {
	tables := DefaultTables()
	var kept []Specialty
	for _, s := range tables.Specialties {
		if s.ID != PrimaryCare {
			kept = append(kept, s)
		}
	}
	tables.Specialties = kept

	if _, err := New(tables); err == nil {
		t.Fatal("expected error when primary care is missing")
	}
}

func TestUrgencyOrdering(t *testing.T) {
	order := []Urgency{UrgencyMonitor, UrgencyRoutine, UrgencySoon1Week, UrgencyUrgent24Hr, UrgencyEmergency911}
	for i := 1; i < len(order); i++ {
		if !(order[i-1] < order[i]) {
			t.Errorf("%s should rank below %s", order[i-1], order[i])
		}
	}

	if got := UrgencySoon1Week.Max(UrgencyEmergency911); got != UrgencyEmergency911 {
		t.Errorf("Max = %s, want EMERGENCY_911", got)
	}
	// lexically "SOON_1WEEK" > "EMERGENCY_911"; rank must win
	if got := UrgencyEmergency911.Max(UrgencySoon1Week); got != UrgencyEmergency911 {
		t.Errorf("Max = %s, want EMERGENCY_911", got)
	}

	if UrgencySoon1Week.Terminal() {
		t.Error("SOON_1WEEK must not be terminal")
	}
	if !UrgencyUrgent24Hr.Terminal() || !UrgencyEmergency911.Terminal() {
		t.Error("URGENT_24HR and EMERGENCY_911 must be terminal")
	}
}

func TestUrgencyJSON(t *testing.T) {
	data, err := json.Marshal(UrgencyUrgent24Hr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"URGENT_24HR"` {
		t.Errorf("got %s", data)
	}

	var u Urgency
	if err := json.Unmarshal([]byte(`"emergency_911"`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u != UrgencyEmergency911 {
		t.Errorf("got %s", u)
	}

	if err := json.Unmarshal([]byte(`"SOMEDAY"`), &u); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Chest pain or pressure, especially radiating to arm/jaw", []string{"chest", "radiating", "jaw"}},
		{"Persistent cough >3 weeks or worsening", []string{"cough"}},
		{"Sudden severe headache (worst of your life)", []string{}},
		{"Persistent high fever (>103°F or lasting >3 days)", []string{"fever"}},
		{"Black or bloody stools (melena or hematochezia)", []string{"melena", "hematochezia"}},
	}
	for _, tt := range tests {
		if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTriggerPhrasesIncludeSymptomTokens(t *testing.T) {
	f := RedFlag{
		Symptom:  "New lump or mass, especially if growing or painful",
		Keywords: []string{"Lump", "growing mass"},
	}
	want := []string{"lump", "growing mass", "mass"}
	if got := f.TriggerPhrases(); !reflect.DeepEqual(got, want) {
		t.Errorf("TriggerPhrases = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, text, tag string }{
		{"Chest_Pain!", "chest pain", "chest_pain"},
		{"  weight-gain ", "weight gain", "weight_gain"},
		{"Can't breathe", "can't breathe", "cant_breathe"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.text {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.text)
		}
		if got := NormalizeTag(tt.in); got != tt.tag {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.tag)
		}
	}
}
