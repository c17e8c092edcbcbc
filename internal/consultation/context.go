package consultation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dorost/consult-engine/internal/knowledge"
)

// ErrUnknownTask is returned by Begin for a task with no definition.
var ErrUnknownTask = errors.New("unknown task")

// staleMarkers flag working data that only lives until the next task begins.
var staleMarkers = []string{"_temp_", "_debug_", "_intermediate_"}

// searchTerms maps words in a task's declared inputs to the data keys that
// satisfy them.
var searchTerms = []struct {
	word string
	keys []string
}{
	{"symptom", []string{"symptoms", "primary_concern", "complaints"}},
	{"lifestyle", []string{"diet", "sleep", "exercise", "stress"}},
	{"diagnostic", []string{"diagnostic_findings", "physical_exam"}},
	{"analysis", []string{"identified_issues", "deficiencies"}},
	{"confidence", []string{"confidence_score", "reliability"}},
}

// Context tracks the task a consultation is working on, the tasks it has
// finished and the data they produced. It belongs to a single request and is
// not safe for concurrent use.
type Context struct {
	kb        *knowledge.Base
	current   *knowledge.TaskDefinition
	completed []knowledge.TaskType
	data      map[string]any
	outputs   map[string]StageOutput
}

func NewContext(kb *knowledge.Base) *Context {
	return &Context{
		kb:      kb,
		data:    make(map[string]any),
		outputs: make(map[string]StageOutput),
	}
}

// Begin makes t the current task and drops stale working data.
func (c *Context) Begin(t knowledge.TaskType) error {
	def, ok := c.kb.Task(t)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, t)
	}
	c.current = &def
	c.clearStale()
	return nil
}

// Current returns the task in progress.
func (c *Context) Current() (knowledge.TaskDefinition, bool) {
	if c.current == nil {
		return knowledge.TaskDefinition{}, false
	}
	return *c.current, true
}

// Complete records out as the product of the current task and ends it.
func (c *Context) Complete(out StageOutput) {
	c.outputs[out.Stage] = out
	for k, v := range facts(out) {
		c.data[k] = v
	}
	if c.current != nil {
		c.data[string(c.current.Type)] = out.Data
		c.completed = append(c.completed, c.current.Type)
		c.current = nil
	}
}

func (c *Context) Set(key string, v any) {
	c.data[key] = v
}

func (c *Context) Get(key string) (any, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Completed returns the finished tasks in completion order.
func (c *Context) Completed() []knowledge.TaskType {
	return append([]knowledge.TaskType(nil), c.completed...)
}

// Outputs returns a copy of the stage outputs keyed by stage name.
func (c *Context) Outputs() map[string]StageOutput {
	out := make(map[string]StageOutput, len(c.outputs))
	for k, v := range c.outputs {
		out[k] = v
	}
	return out
}

// Relevant returns only the data the current task declares as input.
func (c *Context) Relevant() map[string]any {
	relevant := map[string]any{}
	if c.current == nil {
		return relevant
	}
	for _, input := range c.current.InputsNeeded {
		lower := strings.ToLower(input)
		for _, st := range searchTerms {
			if !strings.Contains(lower, st.word) {
				continue
			}
			for _, k := range st.keys {
				if v, ok := c.data[k]; ok {
					relevant[k] = v
				}
			}
		}
	}
	return relevant
}

// TaskStatus summarizes the context for diagnostics.
type TaskStatus struct {
	CurrentTask    knowledge.TaskType   `json:"current_task,omitempty"`
	CompletedTasks []knowledge.TaskType `json:"completed_tasks"`
	DataKeys       []string             `json:"data_keys"`
}

func (c *Context) Status() TaskStatus {
	s := TaskStatus{CompletedTasks: c.Completed(), DataKeys: make([]string, 0, len(c.data))}
	if c.current != nil {
		s.CurrentTask = c.current.Type
	}
	for k := range c.data {
		s.DataKeys = append(s.DataKeys, k)
	}
	sort.Strings(s.DataKeys)
	return s
}

// TaskContext renders the current task, the relevant data and the
// limitations reminder as handed to an external stage runner.
func (c *Context) TaskContext() string {
	if c.current == nil {
		return "No current task set."
	}
	t := c.current
	var b strings.Builder
	fmt.Fprintf(&b, "CURRENT TASK: %s\n\nOBJECTIVE: %s\n", t.Type, t.Description)
	writeList(&b, "INPUTS AVAILABLE", t.InputsNeeded)
	writeList(&b, "EXPECTED OUTPUTS", t.OutputsExpected)
	writeList(&b, "SUCCESS CRITERIA", t.SuccessCriteria)
	writeList(&b, "LIMITATIONS (be transparent about these)", t.Limitations)

	if rel := c.Relevant(); len(rel) > 0 {
		keys := make([]string, 0, len(rel))
		for k := range rel {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nRELEVANT INFORMATION FROM PREVIOUS TASKS:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  - %s: %v\n", k, rel[k])
		}
	}

	b.WriteString("\nREMEMBER YOUR LIMITATIONS\n")
	b.WriteString("You must be transparent when you reach the limits of what you can do.\n")
	b.WriteString("When in doubt, recommend consulting a healthcare professional.\n")
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
}

func (c *Context) clearStale() {
	for k := range c.data {
		for _, m := range staleMarkers {
			if strings.Contains(k, m) {
				delete(c.data, k)
				break
			}
		}
	}
}

// facts extracts the named data keys a stage output contributes.
func facts(out StageOutput) map[string]any {
	switch d := out.Data.(type) {
	case Intake:
		return map[string]any{"symptoms": d.Symptoms, "complaints": out.Summary}
	case Diagnostic:
		return map[string]any{"physical_exam": d.Examinations, "diagnostic_findings": d.Advisories}
	case Analysis:
		issues := make([]string, 0, len(d.Matches))
		for _, m := range d.Matches {
			issues = append(issues, m.PatternName)
		}
		return map[string]any{"identified_issues": issues}
	case RootCause:
		return map[string]any{"deficiencies": d.PrimaryCauses}
	case Plan:
		return map[string]any{"confidence_score": d.Assessment.Score, "reliability": d.Assessment.Reliability}
	}
	return nil
}
