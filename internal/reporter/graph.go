package reporter

import (
	"fmt"
	"strings"

	"github.com/joshharrison/metra/internal/graph"
	"github.com/joshharrison/metra/internal/mpm"
	"github.com/joshharrison/metra/internal/ui"
)

func taskGraph(res *mpm.Result) *graph.TaskGraph {
	tasks := make([]graph.Task, len(res.Tasks))
	for i, t := range res.Tasks {
		tasks[i] = t.Task
	}
	return graph.Build(tasks)
}

// PrintASCII writes the network wave by wave with outgoing edges.
func (r *Reporter) PrintASCII(res *mpm.Result) {
	g := taskGraph(res)
	byID := make(map[string]mpm.ScheduledTask, len(res.Tasks))
	for _, t := range res.Tasks {
		byID[t.ID] = t
	}

	fmt.Fprintf(r.w, "🔗 %s\n", ui.BoldCyan("Task Network"))
	fmt.Fprintln(r.w, ui.Cyan("════════════"))
	fmt.Fprintf(r.w, "%s %s\n", ui.Dim("Start tasks:"), strings.Join(g.Roots, ", "))
	fmt.Fprintf(r.w, "%s %s\n", ui.Dim("End tasks:  "), strings.Join(g.Leaves, ", "))
	fmt.Fprintln(r.w)

	for _, wave := range res.Waves {
		fmt.Fprintf(r.w, "%s 🌊 Wave %d (t=%d) %s\n", ui.Cyan("──"), wave.Index+1, wave.Start, ui.Cyan("──────────────────────────"))
		for _, id := range wave.TaskIDs {
			t := byID[id]
			fmt.Fprintf(r.w, "  %s [%s] %s %s\n", ui.CriticalMarker(t.IsCritical), ui.BoldMagenta(id), t.Name,
				ui.Dim(fmt.Sprintf("(%d, float %d)", t.Duration, t.TotalFloat)))

			for _, next := range g.Adj[id] {
				fmt.Fprintf(r.w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(next))
			}
		}
		fmt.Fprintln(r.w)
	}
}

// PrintDOT writes a Graphviz digraph. Critical tasks and the tight edges
// between them are drawn in red.
func (r *Reporter) PrintDOT(res *mpm.Result) {
	byID := make(map[string]mpm.ScheduledTask, len(res.Tasks))
	for _, t := range res.Tasks {
		byID[t.ID] = t
	}

	fmt.Fprintln(r.w, "digraph mpm {")
	fmt.Fprintln(r.w, "  rankdir=LR;")
	fmt.Fprintln(r.w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(r.w)

	for _, t := range res.Tasks {
		label := dotEscape(t.ID)
		if t.Name != "" {
			label += `\n` + dotEscape(t.Name)
		}
		label += fmt.Sprintf(`\nd=%d ES=%d LF=%d TF=%d`, t.Duration, t.EarlyStart, t.LateFinish, t.TotalFloat)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if t.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(r.w, "  %q [%s];\n", t.ID, attrs)
	}

	fmt.Fprintln(r.w)

	for _, t := range res.Tasks {
		for _, p := range t.Predecessors {
			from, ok := byID[p]
			if !ok {
				continue
			}
			style := ""
			if from.IsCritical && t.IsCritical && from.EarlyFinish == t.EarlyStart {
				style = ` [color=red, penwidth=2]`
			}
			fmt.Fprintf(r.w, "  %q -> %q%s;\n", p, t.ID, style)
		}
	}

	fmt.Fprintln(r.w, "}")
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
