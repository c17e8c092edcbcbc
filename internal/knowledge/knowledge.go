// Package knowledge holds the immutable medical lookup tables shared by every
// consultation: specialties, red flags, health patterns, routing tables, task
// definitions and capability boundaries.
package knowledge

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidTable is wrapped by every validation failure returned from New.
var ErrInvalidTable = errors.New("invalid knowledge table")

// Tables is the raw input to New.
type Tables struct {
	Specialties  []Specialty
	RedFlags     []RedFlag
	Patterns     []HealthPattern
	BodySystems  []BodySystemRoute
	Clusters     []SymptomCluster
	Tasks        []TaskDefinition
	Capabilities Capabilities
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Specialties:  specialtyTable(),
		RedFlags:     redFlagTable(),
		Patterns:     patternTable(),
		BodySystems:  bodySystemTable(),
		Clusters:     clusterTable(),
		Tasks:        taskTable(),
		Capabilities: capabilitiesTable(),
	}
}

// Base is a validated, read-only view over the tables. It is safe for
// concurrent use; every accessor returns copies.
type Base struct {
	specialties   []Specialty
	specialtyByID map[SpecialtyID]int
	redFlags      []RedFlag
	patterns      []HealthPattern
	patternByID   map[int]int
	bodySystems   map[string]BodySystemRoute
	clusters      []SymptomCluster
	tasks         map[TaskType]TaskDefinition
	capabilities  Capabilities
}

// Load validates and returns the built-in knowledge base.
func Load() (*Base, error) {
	return New(DefaultTables())
}

// MustLoad is Load for process start-up, where a broken table is fatal.
func MustLoad() *Base {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// New validates t and builds a Base from it. Every violation is reported; a
// Base is never returned alongside an error.
func New(t Tables) (*Base, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	b := &Base{
		specialties:   make([]Specialty, 0, len(t.Specialties)),
		specialtyByID: make(map[SpecialtyID]int, len(t.Specialties)),
		redFlags:      make([]RedFlag, 0, len(t.RedFlags)),
		patterns:      make([]HealthPattern, 0, len(t.Patterns)),
		patternByID:   make(map[int]int, len(t.Patterns)),
		bodySystems:   make(map[string]BodySystemRoute, len(t.BodySystems)),
		clusters:      make([]SymptomCluster, 0, len(t.Clusters)),
		tasks:         make(map[TaskType]TaskDefinition, len(t.Tasks)),
		capabilities:  cloneCapabilities(t.Capabilities),
	}
	for _, s := range t.Specialties {
		b.specialtyByID[s.ID] = len(b.specialties)
		b.specialties = append(b.specialties, cloneSpecialty(s))
	}
	for _, f := range t.RedFlags {
		b.redFlags = append(b.redFlags, cloneRedFlag(f))
	}
	for _, p := range t.Patterns {
		b.patternByID[p.ID] = len(b.patterns)
		b.patterns = append(b.patterns, clonePattern(p))
	}
	for _, r := range t.BodySystems {
		key := NormalizeBodySystem(r.System)
		b.bodySystems[key] = BodySystemRoute{System: key, Specialties: cloneSlice(r.Specialties)}
	}
	for _, c := range t.Clusters {
		c.Tags = cloneSlice(c.Tags)
		b.clusters = append(b.clusters, c)
	}
	for _, task := range t.Tasks {
		b.tasks[task.Type] = cloneTask(task)
	}
	return b, nil
}

func validate(t Tables) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidTable}, args...)...))
	}

	if len(t.Specialties) == 0 {
		fail("no specialties")
	}
	specialties := make(map[SpecialtyID]struct{}, len(t.Specialties))
	for i, s := range t.Specialties {
		if s.ID == "" {
			fail("specialty %d: empty id", i)
			continue
		}
		if _, dup := specialties[s.ID]; dup {
			fail("specialty %q: duplicate id", s.ID)
		}
		specialties[s.ID] = struct{}{}
		if s.Name == "" {
			fail("specialty %q: empty name", s.ID)
		}
		if len(s.SymptomTags) == 0 {
			fail("specialty %q: no symptom tags", s.ID)
		}
		for _, tag := range s.SymptomTags {
			if tag != NormalizeTag(tag) {
				fail("specialty %q: tag %q is not normalized", s.ID, tag)
			}
		}
		if len(s.TypicalTests) == 0 {
			fail("specialty %q: no typical tests", s.ID)
		}
	}
	if _, ok := specialties[PrimaryCare]; !ok {
		fail("specialty %q is required as the routing fallback", PrimaryCare)
	}

	flags := make(map[string]struct{}, len(t.RedFlags))
	for i, f := range t.RedFlags {
		if f.ID == "" {
			fail("red flag %d: empty id", i)
			continue
		}
		if _, dup := flags[f.ID]; dup {
			fail("red flag %q: duplicate id", f.ID)
		}
		flags[f.ID] = struct{}{}
		if !f.Urgency.Valid() {
			fail("red flag %q: invalid urgency %d", f.ID, int(f.Urgency))
		}
		if f.Symptom == "" || f.Reason == "" || f.Action == "" {
			fail("red flag %q: symptom, reason and action are required", f.ID)
		}
		if len(f.TriggerPhrases()) == 0 {
			fail("red flag %q: no trigger phrases", f.ID)
		}
	}

	patterns := make(map[int]struct{}, len(t.Patterns))
	for i, p := range t.Patterns {
		if p.ID <= 0 {
			fail("pattern %d: id must be positive", i)
			continue
		}
		if _, dup := patterns[p.ID]; dup {
			fail("pattern %d: duplicate id", p.ID)
		}
		patterns[p.ID] = struct{}{}
		if p.Name == "" {
			fail("pattern %d: empty name", p.ID)
		}
		if len(p.Indicators) == 0 {
			fail("pattern %d: no indicators", p.ID)
		}
		seen := make(map[Indicator]struct{}, len(p.Indicators))
		for _, ind := range p.Indicators {
			if _, dup := seen[ind]; dup {
				fail("pattern %d: duplicate indicator %q", p.ID, ind)
			}
			seen[ind] = struct{}{}
		}
		for _, wf := range p.SeverityFactors {
			if wf.Factor == "" || wf.Weight <= 0 {
				fail("pattern %d: factor %q must have a positive weight", p.ID, wf.Factor)
			}
		}
	}

	for _, r := range t.BodySystems {
		if NormalizeBodySystem(r.System) == "" {
			fail("body system route with empty name")
			continue
		}
		if len(r.Specialties) == 0 {
			fail("body system %q: no specialties", r.System)
		}
		for _, id := range r.Specialties {
			if _, ok := specialties[id]; !ok {
				fail("body system %q: unknown specialty %q", r.System, id)
			}
		}
	}

	for _, c := range t.Clusters {
		if len(c.Tags) == 0 {
			fail("cluster %q: no tags", c.Name)
		}
		if _, ok := specialties[c.Specialty]; !ok {
			fail("cluster %q: unknown specialty %q", c.Name, c.Specialty)
		}
		if c.Confidence <= 0 || c.Confidence > 1 {
			fail("cluster %q: confidence %.2f out of range", c.Name, c.Confidence)
		}
	}

	tasks := make(map[TaskType]struct{}, len(t.Tasks))
	for _, task := range t.Tasks {
		if _, dup := tasks[task.Type]; dup {
			fail("task %q: duplicate definition", task.Type)
		}
		tasks[task.Type] = struct{}{}
		if task.Stage == "" {
			fail("task %q: no responsible stage", task.Type)
		}
	}
	for _, required := range []TaskType{TaskIntake, TaskDiagnostic, TaskAnalysis, TaskRootCause, TaskRecommendation, TaskRouting, TaskFollowUp} {
		if _, ok := tasks[required]; !ok {
			fail("task %q: missing definition", required)
		}
	}

	return errors.Join(errs...)
}

// Specialties returns every specialty in table order.
func (b *Base) Specialties() []Specialty {
	out := make([]Specialty, len(b.specialties))
	for i, s := range b.specialties {
		out[i] = cloneSpecialty(s)
	}
	return out
}

func (b *Base) Specialty(id SpecialtyID) (Specialty, bool) {
	i, ok := b.specialtyByID[id]
	if !ok {
		return Specialty{}, false
	}
	return cloneSpecialty(b.specialties[i]), true
}

// RedFlags returns the red flags in scan order.
func (b *Base) RedFlags() []RedFlag {
	out := make([]RedFlag, len(b.redFlags))
	for i, f := range b.redFlags {
		out[i] = cloneRedFlag(f)
	}
	return out
}

// Patterns returns the health patterns in table order.
func (b *Base) Patterns() []HealthPattern {
	out := make([]HealthPattern, len(b.patterns))
	for i, p := range b.patterns {
		out[i] = clonePattern(p)
	}
	return out
}

func (b *Base) Pattern(id int) (HealthPattern, bool) {
	i, ok := b.patternByID[id]
	if !ok {
		return HealthPattern{}, false
	}
	return clonePattern(b.patterns[i]), true
}

// BodySystem resolves a declared body system (case-insensitive) to its
// candidate list, falling back to DefaultBodySystemRoute.
func (b *Base) BodySystem(system string) BodySystemRoute {
	r, ok := b.bodySystems[NormalizeBodySystem(system)]
	if !ok {
		return DefaultBodySystemRoute()
	}
	return BodySystemRoute{System: r.System, Specialties: cloneSlice(r.Specialties)}
}

// BodySystems lists the known body system names, sorted.
func (b *Base) BodySystems() []string {
	out := make([]string, 0, len(b.bodySystems))
	for k := range b.bodySystems {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (b *Base) Clusters() []SymptomCluster {
	out := make([]SymptomCluster, len(b.clusters))
	for i, c := range b.clusters {
		c.Tags = cloneSlice(c.Tags)
		out[i] = c
	}
	return out
}

func (b *Base) Task(t TaskType) (TaskDefinition, bool) {
	task, ok := b.tasks[t]
	if !ok {
		return TaskDefinition{}, false
	}
	return cloneTask(task), true
}

func (b *Base) Capabilities() Capabilities {
	return cloneCapabilities(b.capabilities)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneSpecialty(s Specialty) Specialty {
	s.TreatsConditions = cloneSlice(s.TreatsConditions)
	s.CommonSymptoms = cloneSlice(s.CommonSymptoms)
	s.SymptomTags = cloneSlice(s.SymptomTags)
	s.TypicalTests = cloneSlice(s.TypicalTests)
	return s
}

func cloneRedFlag(f RedFlag) RedFlag {
	f.Keywords = cloneSlice(f.Keywords)
	return f
}

func clonePattern(p HealthPattern) HealthPattern {
	p.Indicators = cloneSlice(p.Indicators)
	p.SeverityFactors = cloneSlice(p.SeverityFactors)
	return p
}

func cloneTask(t TaskDefinition) TaskDefinition {
	t.InputsNeeded = cloneSlice(t.InputsNeeded)
	t.OutputsExpected = cloneSlice(t.OutputsExpected)
	t.SuccessCriteria = cloneSlice(t.SuccessCriteria)
	t.Limitations = cloneSlice(t.Limitations)
	return t
}

func cloneCapabilities(c Capabilities) Capabilities {
	return Capabilities{
		CanDo:            cloneSlice(c.CanDo),
		CannotDo:         cloneSlice(c.CannotDo),
		MustEscalateWhen: cloneSlice(c.MustEscalateWhen),
	}
}
