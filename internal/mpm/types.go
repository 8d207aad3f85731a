package mpm

import "github.com/joshharrison/metra/internal/graph"

// Mode selects what Run produces.
type Mode int

const (
	// ModeFull computes the schedule directly.
	ModeFull Mode = iota
	// ModeTrace records every intermediate assignment as a Step.
	ModeTrace
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ScheduledTask is a task with its derived schedule fields.
type ScheduledTask struct {
	graph.Task
	EarlyStart  int  `json:"early_start"`
	EarlyFinish int  `json:"early_finish"`
	LateStart   int  `json:"late_start"`
	LateFinish  int  `json:"late_finish"`
	TotalFloat  int  `json:"total_float"`
	FreeFloat   int  `json:"free_float"`
	IsCritical  bool `json:"is_critical"`
	Wave        int  `json:"wave"`
}

// Clone returns a deep copy of st.
func (st ScheduledTask) Clone() ScheduledTask {
	c := st
	c.Task = st.Task.Clone()
	return c
}

// Result is the computed schedule of a project network.
type Result struct {
	Tasks           []ScheduledTask `json:"tasks"` // input order
	ProjectDuration int             `json:"project_duration"`
	CriticalPath    []string        `json:"critical_path"` // ordered by early start, then input order
	Waves           []Wave          `json:"waves"`

	// Inconsistency is set when a relaxation pass could not resolve every
	// task and fallback values were assigned. Nil for a normal schedule.
	Inconsistency *graph.Error `json:"inconsistency,omitempty"`
}

// Task returns the scheduled task with the given ID.
func (r *Result) Task(id string) (ScheduledTask, bool) {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return ScheduledTask{}, false
}

// Wave is a group of tasks sharing the same earliest start.
type Wave struct {
	Index      int      `json:"index"`
	Start      int      `json:"start"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical path tasks
}

// Output is what Run returns: Result in full mode, Trace in trace mode.
type Output struct {
	Mode   Mode
	Result *Result
	Trace  *Trace
}
