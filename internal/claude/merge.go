package claude

import (
	"slices"

	"github.com/joshharrison/metra/internal/graph"
)

// Skip is an inferred edge that was not applied.
type Skip struct {
	Edge   Edge   `json:"edge"`
	Reason string `json:"reason"`
}

// MergeResult is a task list with inferred edges folded in.
type MergeResult struct {
	Tasks    []graph.Task `json:"tasks"`
	Accepted []Edge       `json:"accepted"`
	Skipped  []Skip       `json:"skipped,omitempty"`
}

// Merge adds edges to tasks in order, skipping any that name unknown tasks,
// point a task at itself, are already present or would close a cycle. The
// input slice is not modified.
func Merge(tasks []graph.Task, edges []Edge) MergeResult {
	res := MergeResult{Tasks: make([]graph.Task, len(tasks))}
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		res.Tasks[i] = t.Clone()
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = i
		}
	}

	skip := func(e Edge, why string) {
		res.Skipped = append(res.Skipped, Skip{Edge: e, Reason: why})
	}

	for _, e := range edges {
		ti, ok := index[e.TaskID]
		if !ok {
			skip(e, "unknown task_id "+e.TaskID)
			continue
		}
		if _, ok := index[e.PredecessorID]; !ok {
			skip(e, "unknown predecessor_id "+e.PredecessorID)
			continue
		}
		if e.TaskID == e.PredecessorID {
			skip(e, "self-dependency")
			continue
		}
		t := &res.Tasks[ti]
		if slices.Contains(t.Predecessors, e.PredecessorID) {
			skip(e, "already a predecessor")
			continue
		}

		t.Predecessors = append(t.Predecessors, e.PredecessorID)
		if graph.Build(res.Tasks).DetectCycle() != nil {
			t.Predecessors = t.Predecessors[:len(t.Predecessors)-1]
			skip(e, "would create a cycle")
			continue
		}
		res.Accepted = append(res.Accepted, e)
	}
	return res
}
