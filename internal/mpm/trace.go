package mpm

import "github.com/joshharrison/metra/internal/graph"

// Phase names the part of the algorithm a Step belongs to.
type Phase string

const (
	PhaseForward  Phase = "forward"
	PhaseProject  Phase = "project"
	PhaseBackward Phase = "backward"
	PhaseFloat    Phase = "float"
)

// Step is one recorded assignment. Snapshot holds the state of every task
// right after the assignment; fields not computed yet are zero.
// Snapshot and Highlight belong to the trace and must not be modified.
type Step struct {
	Seq         int             `json:"seq"` // 1-based
	Phase       Phase           `json:"phase"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Snapshot    []ScheduledTask `json:"snapshot"`
	Highlight   []string        `json:"highlight"`
}

// Clone returns a deep copy of s that the caller may modify.
func (s Step) Clone() Step {
	c := s
	c.Snapshot = make([]ScheduledTask, len(s.Snapshot))
	for i, t := range s.Snapshot {
		c.Snapshot[i] = t.Clone()
	}
	c.Highlight = append([]string(nil), s.Highlight...)
	return c
}

// Trace is the ordered sequence of steps of one scheduling call.
type Trace struct {
	Steps         []Step       `json:"steps"`
	Inconsistency *graph.Error `json:"inconsistency,omitempty"`
}

// Len returns the number of steps.
func (t *Trace) Len() int {
	return len(t.Steps)
}

// Last returns the final step. The trace must not be empty.
func (t *Trace) Last() Step {
	return t.Steps[len(t.Steps)-1]
}

// Finalize extracts the confirmed schedule from the last step of a trace.
// It returns nil for an empty trace.
func Finalize(t *Trace) *Result {
	if t == nil || len(t.Steps) == 0 {
		return nil
	}
	last := t.Last().Clone()
	return summarize(last.Snapshot, t.Inconsistency)
}

// recorder accumulates steps. Steps are only ever appended.
type recorder struct {
	steps []Step
}

func (r *recorder) append(phase Phase, title, desc string, snapshot []ScheduledTask, highlight []string) {
	r.steps = append(r.steps, Step{
		Seq:         len(r.steps) + 1,
		Phase:       phase,
		Title:       title,
		Description: desc,
		Snapshot:    snapshot,
		Highlight:   append([]string(nil), highlight...),
	})
}
