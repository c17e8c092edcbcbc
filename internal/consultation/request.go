package consultation

import (
	"errors"
	"fmt"

	"github.com/dorost/consult-engine/internal/knowledge"
	"github.com/dorost/consult-engine/internal/patterns"
)

var (
	// ErrEmptyRequest is returned when a request has neither a query nor symptoms.
	ErrEmptyRequest = errors.New("consultation request needs a query or symptoms")
	// ErrInvalidRequest wraps field validation failures.
	ErrInvalidRequest = errors.New("invalid consultation request")
)

var vagueTags = map[string]struct{}{
	"tired":    {},
	"feel_bad": {},
	"unwell":   {},
}

// Request is one consultation as submitted by a patient.
type Request struct {
	Query         string            `json:"query"`
	Symptoms      []string          `json:"symptoms,omitempty"`
	BodySystem    string            `json:"body_system,omitempty"`
	Duration      string            `json:"duration,omitempty"`
	DurationWeeks int               `json:"duration_weeks,omitempty"`
	Severity      string            `json:"severity,omitempty"`
	Profile       *patterns.Profile `json:"profile,omitempty"`
	// SymptomClarity overrides the clarity derived from the symptom list.
	SymptomClarity *float64 `json:"symptom_clarity,omitempty"`
	Complexity     float64  `json:"patient_complexity,omitempty"`
	PatientHistory bool     `json:"has_patient_history,omitempty"`
}

// Validate checks the request shape. It does not look at symptom content.
func (r Request) Validate() error {
	if r.Query == "" && len(r.Symptoms) == 0 {
		return ErrEmptyRequest
	}
	if r.DurationWeeks < 0 {
		return fmt.Errorf("%w: duration_weeks must not be negative", ErrInvalidRequest)
	}
	if r.Complexity < 0 || r.Complexity > 1 {
		return fmt.Errorf("%w: patient_complexity must be within [0,1]", ErrInvalidRequest)
	}
	if c := r.SymptomClarity; c != nil && (*c < 0 || *c > 1) {
		return fmt.Errorf("%w: symptom_clarity must be within [0,1]", ErrInvalidRequest)
	}
	return nil
}

// SymptomTags returns the normalized, de-duplicated symptom tags. With no
// explicit symptoms the tags are read from the free-text query, multi-word
// runs included, so "joint pain" also yields joint_pain.
func (r Request) SymptomTags() []string {
	if len(r.Symptoms) == 0 {
		return knowledge.SymptomPhrases(r.Query)
	}
	out := make([]string, 0, len(r.Symptoms))
	seen := make(map[string]struct{}, len(r.Symptoms))
	for _, s := range r.Symptoms {
		t := knowledge.NormalizeTag(s)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ScreeningText is what the red-flag detector reads: every symptom plus the
// free-text query.
func (r Request) ScreeningText() []string {
	out := append([]string(nil), r.Symptoms...)
	if r.Query != "" {
		out = append(out, r.Query)
	}
	return out
}

// Clarity returns SymptomClarity when set, otherwise a coarse estimate from
// the symptom tags.
func (r Request) Clarity() float64 {
	if r.SymptomClarity != nil {
		return *r.SymptomClarity
	}
	tags := r.SymptomTags()
	for _, t := range tags {
		if _, ok := vagueTags[t]; ok {
			return 0.3
		}
	}
	// A query counts its words, not the runs built from them.
	n := len(tags)
	if len(r.Symptoms) == 0 {
		n = len(knowledge.ContentWords(r.Query))
	}
	switch {
	case n == 0:
		return 0.2
	case n >= 3:
		return 0.8
	default:
		return 0.5
	}
}
