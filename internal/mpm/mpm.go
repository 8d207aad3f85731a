// Package mpm schedules project networks with the Metra Potential Method:
// tasks are nodes, predecessor arcs are zero-lag finish-to-start
// constraints. A forward pass derives early start/finish, a backward pass
// late start/finish, and float decides the critical path.
package mpm

import (
	"fmt"
	"strings"

	"github.com/joshharrison/metra/internal/graph"
)

// Run validates tasks and schedules them in the given mode.
// Validation failures are returned as *graph.Error before any computation.
func Run(tasks []graph.Task, mode Mode) (*Output, error) {
	if err := graph.Validate(tasks); err != nil {
		return nil, err
	}
	return run(tasks, mode), nil
}

// Schedule computes the full schedule for tasks.
func Schedule(tasks []graph.Task) (*Result, error) {
	out, err := Run(tasks, ModeFull)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// TraceSchedule computes the schedule and returns every intermediate step.
func TraceSchedule(tasks []graph.Task) (*Trace, error) {
	out, err := Run(tasks, ModeTrace)
	if err != nil {
		return nil, err
	}
	return out.Trace, nil
}

// run schedules tasks without validating them first.
func run(tasks []graph.Task, mode Mode) *Output {
	e := newEngine(tasks, mode == ModeTrace)
	e.forwardPass()
	e.computeProjectDuration()
	e.backwardPass()
	e.deriveFloat()

	out := &Output{Mode: mode}
	if mode == ModeTrace {
		out.Trace = &Trace{Steps: e.rec.steps, Inconsistency: e.inconsistency}
		return out
	}
	out.Result = summarize(e.snapshot(), e.inconsistency)
	return out
}

// engine is the working state of a single scheduling call.
type engine struct {
	g               *graph.TaskGraph
	tasks           []ScheduledTask
	index           map[string]int
	projectDuration int
	inconsistency   *graph.Error
	rec             *recorder // nil unless tracing
}

func newEngine(tasks []graph.Task, trace bool) *engine {
	g := graph.Build(tasks)
	e := &engine{
		g:     g,
		tasks: make([]ScheduledTask, 0, g.TaskCount()),
		index: make(map[string]int, g.TaskCount()),
	}
	for i, id := range g.Order {
		e.tasks = append(e.tasks, ScheduledTask{Task: g.Tasks[id].Clone()})
		e.index[id] = i
	}
	if trace {
		e.rec = &recorder{}
	}
	return e
}

// maxRounds bounds each relaxation pass.
func (e *engine) maxRounds() int {
	return 2 * len(e.tasks)
}

func (e *engine) forwardPass() {
	done := make(map[string]bool, len(e.tasks))

	for round := 0; len(done) < len(e.tasks) && round < e.maxRounds(); round++ {
		progressed := false
		for i := range e.tasks {
			id := e.tasks[i].ID
			if done[id] || !allIn(e.g.Predecessors(id), done) {
				continue
			}
			e.setEarlyStart(i)
			e.setEarlyFinish(i)
			done[id] = true
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if len(done) == len(e.tasks) {
		return
	}

	// Unreachable on a validated DAG. Resolve what is left from the
	// predecessors that did finish so every field is defined.
	var unresolved []string
	for i := range e.tasks {
		t := &e.tasks[i]
		if done[t.ID] {
			continue
		}
		unresolved = append(unresolved, t.ID)

		es := 0
		var terms []string
		for _, p := range e.g.Predecessors(t.ID) {
			if !done[p] {
				continue
			}
			ef := e.tasks[e.index[p]].EarlyFinish
			terms = append(terms, fmt.Sprintf("%s: %d", p, ef))
			if ef > es {
				es = ef
			}
		}
		t.EarlyStart = es
		e.record(PhaseForward, "Early Start of "+t.ID+" (fallback)",
			fmt.Sprintf("%s could not be resolved in dependency order. Early Start = max(resolved predecessor Early Finish) = max(%s) = %d",
				t.ID, strings.Join(terms, ", "), es),
			t.ID)
		e.setEarlyFinish(i)
	}
	e.flagInconsistent(unresolved)
}

func (e *engine) setEarlyStart(i int) {
	t := &e.tasks[i]
	preds := e.g.Predecessors(t.ID)
	if len(preds) == 0 {
		t.EarlyStart = 0
		e.record(PhaseForward, "Early Start of "+t.ID,
			fmt.Sprintf("%s has no predecessors, so Early Start = 0", t.ID),
			t.ID)
		return
	}

	es := 0
	terms := make([]string, 0, len(preds))
	for _, p := range preds {
		ef := e.tasks[e.index[p]].EarlyFinish
		terms = append(terms, fmt.Sprintf("%s: %d", p, ef))
		if ef > es {
			es = ef
		}
	}
	t.EarlyStart = es
	e.record(PhaseForward, "Early Start of "+t.ID,
		fmt.Sprintf("Early Start = max(predecessor Early Finish) = max(%s) = %d", strings.Join(terms, ", "), es),
		append([]string{t.ID}, preds...)...)
}

func (e *engine) setEarlyFinish(i int) {
	t := &e.tasks[i]
	t.EarlyFinish = t.EarlyStart + t.Duration
	e.record(PhaseForward, "Early Finish of "+t.ID,
		fmt.Sprintf("Early Finish = Early Start + duration = %d + %d = %d", t.EarlyStart, t.Duration, t.EarlyFinish),
		t.ID)
}

func (e *engine) computeProjectDuration() {
	pd := 0
	for _, t := range e.tasks {
		if t.EarlyFinish > pd {
			pd = t.EarlyFinish
		}
	}
	e.projectDuration = pd

	var ends []string
	for _, t := range e.tasks {
		if t.EarlyFinish == pd {
			ends = append(ends, t.ID)
		}
	}
	e.record(PhaseProject, "Project duration",
		fmt.Sprintf("Project duration = max(Early Finish) = %d", pd),
		ends...)
}

func (e *engine) backwardPass() {
	done := make(map[string]bool, len(e.tasks))

	for round := 0; len(done) < len(e.tasks) && round < e.maxRounds(); round++ {
		progressed := false
		for i := len(e.tasks) - 1; i >= 0; i-- {
			id := e.tasks[i].ID
			if done[id] || !allIn(e.g.Successors(id), done) {
				continue
			}
			e.setLateFinish(i)
			e.setLateStart(i)
			done[id] = true
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if len(done) == len(e.tasks) {
		return
	}

	var unresolved []string
	for i := range e.tasks {
		t := &e.tasks[i]
		if done[t.ID] {
			continue
		}
		unresolved = append(unresolved, t.ID)
		t.LateFinish = e.projectDuration
		e.record(PhaseBackward, "Late Finish of "+t.ID+" (fallback)",
			fmt.Sprintf("%s could not be resolved in dependency order. Late Finish = project duration = %d", t.ID, e.projectDuration),
			t.ID)
		e.setLateStart(i)
	}
	e.flagInconsistent(unresolved)
}

func (e *engine) setLateFinish(i int) {
	t := &e.tasks[i]
	succs := e.g.Successors(t.ID)
	if len(succs) == 0 {
		t.LateFinish = e.projectDuration
		e.record(PhaseBackward, "Late Finish of "+t.ID,
			fmt.Sprintf("%s has no successors, so Late Finish = project duration = %d", t.ID, e.projectDuration),
			t.ID)
		return
	}

	lf := 0
	terms := make([]string, 0, len(succs))
	for n, s := range succs {
		ls := e.tasks[e.index[s]].LateStart
		terms = append(terms, fmt.Sprintf("%s: %d", s, ls))
		if n == 0 || ls < lf {
			lf = ls
		}
	}
	t.LateFinish = lf
	e.record(PhaseBackward, "Late Finish of "+t.ID,
		fmt.Sprintf("Late Finish = min(successor Late Start) = min(%s) = %d", strings.Join(terms, ", "), lf),
		append([]string{t.ID}, succs...)...)
}

func (e *engine) setLateStart(i int) {
	t := &e.tasks[i]
	t.LateStart = t.LateFinish - t.Duration
	e.record(PhaseBackward, "Late Start of "+t.ID,
		fmt.Sprintf("Late Start = Late Finish - duration = %d - %d = %d", t.LateFinish, t.Duration, t.LateStart),
		t.ID)
}

// deriveFloat fills float, criticality and wave membership in one pass.
func (e *engine) deriveFloat() {
	for i := range e.tasks {
		t := &e.tasks[i]
		t.TotalFloat = t.LateStart - t.EarlyStart
		t.IsCritical = t.TotalFloat == 0

		succs := e.g.Successors(t.ID)
		if len(succs) == 0 {
			t.FreeFloat = e.projectDuration - t.EarlyFinish
			continue
		}
		next := e.tasks[e.index[succs[0]]].EarlyStart
		for _, s := range succs[1:] {
			if es := e.tasks[e.index[s]].EarlyStart; es < next {
				next = es
			}
		}
		t.FreeFloat = next - t.EarlyFinish
	}

	waves := computeWaves(e.tasks)
	for _, w := range waves {
		for _, id := range w.TaskIDs {
			e.tasks[e.index[id]].Wave = w.Index
		}
	}

	critical := criticalPath(e.tasks)
	desc := "Total Float = Late Start - Early Start for every task. No task has zero float."
	if len(critical) > 0 {
		desc = fmt.Sprintf("Total Float = Late Start - Early Start for every task. Tasks with zero float are critical: %s",
			strings.Join(critical, ", "))
	}
	e.record(PhaseFloat, "Float and critical path", desc, critical...)
}

// flagInconsistent records tasks a relaxation pass could not resolve.
func (e *engine) flagInconsistent(unresolved []string) {
	if e.inconsistency == nil {
		e.inconsistency = &graph.Error{Reason: graph.ReasonInconsistentGraph, TaskID: unresolved[0]}
	}
	for _, id := range unresolved {
		if !contains(e.inconsistency.Path, id) {
			e.inconsistency.Path = append(e.inconsistency.Path, id)
		}
	}
}

// snapshot returns a deep copy of the working table.
func (e *engine) snapshot() []ScheduledTask {
	out := make([]ScheduledTask, len(e.tasks))
	for i, t := range e.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (e *engine) record(phase Phase, title, desc string, highlight ...string) {
	if e.rec == nil {
		return
	}
	e.rec.append(phase, title, desc, e.snapshot(), highlight)
}

func allIn(ids []string, set map[string]bool) bool {
	for _, id := range ids {
		if !set[id] {
			return false
		}
	}
	return true
}

func contains(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}
