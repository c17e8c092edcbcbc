// Package triage detects red-flag symptoms in free-text symptom lists.
package triage

import (
	"strings"

	"github.com/dorost/consult-engine/internal/knowledge"
)

// Match is a triggered red flag together with the phrase that fired it.
type Match struct {
	Flag    knowledge.RedFlag `json:"flag"`
	Matched string            `json:"matched"`
}

// Result is the outcome of a detection.
type Result struct {
	Flags []Match `json:"flags"`
	// MaxUrgency is ROUTINE when nothing triggered.
	MaxUrgency knowledge.Urgency `json:"max_urgency"`
	// Terminal is set when MaxUrgency is URGENT_24HR or EMERGENCY_911. Callers
	// must stop processing the request and return Actions.
	Terminal bool     `json:"terminal"`
	Actions  []string `json:"actions,omitempty"`
}

// HasRedFlags reports whether any flag triggered.
func (r Result) HasRedFlags() bool {
	return len(r.Flags) > 0
}

// Advisories returns the triggered flags below the terminal tier.
func (r Result) Advisories() []Match {
	var out []Match
	for _, m := range r.Flags {
		if !m.Flag.Urgency.Terminal() {
			out = append(out, m)
		}
	}
	return out
}

// FlagIDs returns the ids of the triggered flags in detection order.
func (r Result) FlagIDs() []string {
	ids := make([]string, len(r.Flags))
	for i, m := range r.Flags {
		ids[i] = m.Flag.ID
	}
	return ids
}

type compiledFlag struct {
	flag    knowledge.RedFlag
	phrases []string
}

// Detector scans symptom text for red flags. It is immutable after
// construction and safe for concurrent use.
type Detector struct {
	flags []compiledFlag
}

// NewDetector compiles the trigger phrases of every red flag in kb.
func NewDetector(kb *knowledge.Base) *Detector {
	flags := kb.RedFlags()
	d := &Detector{flags: make([]compiledFlag, 0, len(flags))}
	for _, f := range flags {
		d.flags = append(d.flags, compiledFlag{flag: f, phrases: f.TriggerPhrases()})
	}
	return d
}

// Detect checks every registered flag against the joined, normalized symptom
// text. A flag triggers when any of its phrases occurs on word boundaries, so
// "pain" never fires "painful" and "mass" never fires "massage".
func (d *Detector) Detect(symptoms []string) Result {
	res := Result{MaxUrgency: knowledge.UrgencyRoutine}

	normalized := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if n := knowledge.NormalizeText(s); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return res
	}
	// Padding gives every phrase a word boundary on both sides.
	text := " " + strings.Join(normalized, " ") + " "

	var highest knowledge.Urgency
	for _, cf := range d.flags {
		for _, phrase := range cf.phrases {
			if strings.Contains(text, " "+phrase+" ") {
				res.Flags = append(res.Flags, Match{Flag: cf.flag, Matched: phrase})
				res.Actions = append(res.Actions, cf.flag.Action)
				highest = highest.Max(cf.flag.Urgency)
				break
			}
		}
	}

	if highest != 0 {
		res.MaxUrgency = highest
	}
	res.Terminal = res.MaxUrgency.Terminal()
	return res
}
