package mpm

import (
	"sort"

	"github.com/joshharrison/metra/internal/graph"
)

// summarize builds a Result from a finished task table.
func summarize(tasks []ScheduledTask, inconsistency *graph.Error) *Result {
	pd := 0
	for _, t := range tasks {
		if t.EarlyFinish > pd {
			pd = t.EarlyFinish
		}
	}
	return &Result{
		Tasks:           tasks,
		ProjectDuration: pd,
		CriticalPath:    criticalPath(tasks),
		Waves:           computeWaves(tasks),
		Inconsistency:   inconsistency,
	}
}

// criticalPath returns critical task IDs ordered by early start, ties kept
// in input order.
func criticalPath(tasks []ScheduledTask) []string {
	var crit []ScheduledTask
	for _, t := range tasks {
		if t.IsCritical {
			crit = append(crit, t)
		}
	}
	sort.SliceStable(crit, func(a, b int) bool {
		return crit[a].EarlyStart < crit[b].EarlyStart
	})

	ids := make([]string, len(crit))
	for i, t := range crit {
		ids[i] = t.ID
	}
	return ids
}

// computeWaves groups tasks by their earliest start time.
func computeWaves(tasks []ScheduledTask) []Wave {
	esGroups := make(map[int][]ScheduledTask)
	for _, t := range tasks {
		esGroups[t.EarlyStart] = append(esGroups[t.EarlyStart], t)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		group := esGroups[es]

		// Critical tasks first within a wave
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].IsCritical && !group[b].IsCritical
		})

		ids := make([]string, len(group))
		hasCritical := false
		for n, t := range group {
			ids[n] = t.ID
			if t.IsCritical {
				hasCritical = true
			}
		}

		waves[i] = Wave{
			Index:      i,
			Start:      es,
			TaskIDs:    ids,
			IsCritical: hasCritical,
		}
	}

	return waves
}
