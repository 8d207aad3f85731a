package graph

import (
	"fmt"
	"strings"
)

// Reason is a machine-readable failure code.
type Reason string

const (
	ReasonEmptyInput        Reason = "EMPTY_INPUT"
	ReasonCycle             Reason = "CYCLE"
	ReasonDanglingReference Reason = "DANGLING_REFERENCE"
	ReasonInconsistentGraph Reason = "INCONSISTENT_GRAPH"
	ReasonDuplicateID       Reason = "DUPLICATE_ID"
	ReasonNegativeDuration  Reason = "NEGATIVE_DURATION"
)

// Sentinels for errors.Is. Matching is by Reason only.
var (
	ErrEmptyInput        = &Error{Reason: ReasonEmptyInput}
	ErrCycle             = &Error{Reason: ReasonCycle}
	ErrDanglingReference = &Error{Reason: ReasonDanglingReference}
	ErrInconsistentGraph = &Error{Reason: ReasonInconsistentGraph}
	ErrDuplicateID       = &Error{Reason: ReasonDuplicateID}
	ErrNegativeDuration  = &Error{Reason: ReasonNegativeDuration}
)

// Error describes why a task list cannot be scheduled.
type Error struct {
	Reason Reason   `json:"reason"`
	TaskID string   `json:"task_id,omitempty"`
	Ref    string   `json:"ref,omitempty"`  // missing predecessor for DANGLING_REFERENCE
	Path   []string `json:"path,omitempty"` // cycle path for CYCLE, unresolved tasks for INCONSISTENT_GRAPH
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Reason))
	if e.TaskID != "" {
		fmt.Fprintf(&b, ": task %q", e.TaskID)
	}
	switch e.Reason {
	case ReasonEmptyInput:
		b.WriteString(": no tasks supplied")
	case ReasonCycle:
		if len(e.Path) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(e.Path, " -> "))
		}
	case ReasonDanglingReference:
		fmt.Fprintf(&b, " references unknown predecessor %q", e.Ref)
	case ReasonDuplicateID:
		b.WriteString(" is defined more than once")
	case ReasonNegativeDuration:
		b.WriteString(" has a negative duration")
	case ReasonInconsistentGraph:
		if len(e.Path) > 0 {
			fmt.Fprintf(&b, ": unresolved %s", strings.Join(e.Path, ", "))
		}
	}
	return b.String()
}

// Is reports whether target is an *Error with the same Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}
