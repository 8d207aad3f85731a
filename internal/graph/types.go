package graph

// Task is a single activity in a project network. Predecessors must finish
// before the task can start (zero-lag finish-to-start).
type Task struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Duration     int      `json:"duration" yaml:"duration"`
	Predecessors []string `json:"predecessors" yaml:"predecessors"`
}

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	c := t
	if t.Predecessors != nil {
		c.Predecessors = append([]string(nil), t.Predecessors...)
	}
	return c
}

// TaskGraph is the adjacency view of a task list.
type TaskGraph struct {
	Order  []string            // task IDs in input order
	Tasks  map[string]*Task
	Adj    map[string][]string // task -> tasks that depend on it
	RevAdj map[string][]string // task -> its predecessors
	Roots  []string            // tasks with no predecessors
	Leaves []string            // tasks nothing depends on
}
