package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/joshharrison/metra/internal/graph"
	"github.com/joshharrison/metra/internal/mpm"
	"github.com/joshharrison/metra/internal/ui"
)

// Reporter renders schedules and trace steps for the terminal.
type Reporter struct {
	w io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// JSON returns v as indented JSON.
func JSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// PrintSchedule writes the header, the task table and the wave listing.
func (r *Reporter) PrintSchedule(res *mpm.Result) {
	fmt.Fprintf(r.w, "🎯 %s\n", ui.BoldCyan("MPM Schedule"))
	fmt.Fprintln(r.w, ui.Cyan("════════════════"))
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "Tasks:     %s\n", ui.Bold(len(res.Tasks)))
	fmt.Fprintf(r.w, "Duration:  %s\n", ui.Bold(res.ProjectDuration))
	fmt.Fprintf(r.w, "⚡ Critical path: %s (%d tasks)\n",
		ui.BoldYellow(strings.Join(res.CriticalPath, " → ")), len(res.CriticalPath))
	fmt.Fprintln(r.w)

	if res.Inconsistency != nil {
		r.PrintInconsistency(res.Inconsistency)
		fmt.Fprintln(r.w)
	}

	r.PrintTable(res.Tasks, nil)
	fmt.Fprintln(r.w)

	for _, wave := range res.Waves {
		fmt.Fprintf(r.w, "🌊 %s %d (t=%d, %d tasks)\n", ui.BoldWhite("Wave"), wave.Index+1, wave.Start, len(wave.TaskIDs))
	}
}

var tableColumns = []string{"ES", "EF", "LS", "LF", "TF", "FF"}

// PrintTable writes one row per task. Rows whose ID is in highlight are
// marked with an arrow.
func (r *Reporter) PrintTable(tasks []mpm.ScheduledTask, highlight []string) {
	idWidth := len("ID")
	nameWidth := len("Name")
	for _, t := range tasks {
		idWidth = max(idWidth, utf8.RuneCountInString(t.ID))
		nameWidth = max(nameWidth, utf8.RuneCountInString(truncate(t.Name, 30)))
	}

	marked := make(map[string]bool, len(highlight))
	for _, id := range highlight {
		marked[id] = true
	}

	header := fmt.Sprintf("    %s  %s  %4s", pad("ID", idWidth), pad("Name", nameWidth), "Dur")
	for _, c := range tableColumns {
		header += fmt.Sprintf("  %4s", c)
	}
	fmt.Fprintln(r.w, ui.Dim(header))

	for _, t := range tasks {
		cursor := "  "
		if marked[t.ID] {
			cursor = ui.BoldCyan("› ")
		}
		row := fmt.Sprintf("  %s%s  %s  %4d  %4d  %4d  %4d  %4d  %s  %4d  %s",
			cursor,
			ui.BoldMagenta(pad(t.ID, idWidth)),
			pad(truncate(t.Name, 30), nameWidth),
			t.Duration,
			t.EarlyStart, t.EarlyFinish, t.LateStart, t.LateFinish,
			padLeft(fmt.Sprintf("%d", t.TotalFloat), ui.Float(t.TotalFloat), 4),
			t.FreeFloat,
			ui.CriticalMarker(t.IsCritical),
		)
		fmt.Fprintln(r.w, strings.TrimRight(row, " "))
	}
}

// PrintStep writes one trace step. With table set, the snapshot follows.
func (r *Reporter) PrintStep(s mpm.Step, total int, table bool) {
	fmt.Fprintf(r.w, "%s %-8s %s\n",
		ui.Dim(fmt.Sprintf("[%*d/%d]", len(fmt.Sprint(total)), s.Seq, total)),
		ui.PhaseLabel(string(s.Phase)),
		ui.Bold(s.Title))
	fmt.Fprintf(r.w, "         %s\n", s.Description)
	if len(s.Highlight) > 0 {
		ids := make([]string, len(s.Highlight))
		for i, id := range s.Highlight {
			ids[i] = ui.TaskPrefix(id)
		}
		fmt.Fprintf(r.w, "         %s\n", strings.Join(ids, " "))
	}
	if table {
		fmt.Fprintln(r.w)
		r.PrintTable(s.Snapshot, s.Highlight)
	}
}

// PrintTrace writes every step followed by the confirmed result.
func (r *Reporter) PrintTrace(t *mpm.Trace) {
	fmt.Fprintf(r.w, "🔎 %s (%d steps)\n", ui.BoldCyan("MPM Trace"), t.Len())
	fmt.Fprintln(r.w, ui.Cyan("═════════════"))
	fmt.Fprintln(r.w)
	for _, s := range t.Steps {
		r.PrintStep(s, t.Len(), false)
	}
	if res := mpm.Finalize(t); res != nil {
		fmt.Fprintln(r.w)
		r.PrintSchedule(res)
	}
}

// PrintInconsistency warns that fallback values were assigned.
func (r *Reporter) PrintInconsistency(e *graph.Error) {
	fmt.Fprintf(r.w, "%s %s\n", ui.BoldRed("⚠ "+string(e.Reason)+":"),
		ui.Yellow("some tasks could not be resolved; fallback values were assigned"))
	if len(e.Path) > 0 {
		fmt.Fprintf(r.w, "  %s %s\n", ui.Dim("unresolved:"), strings.Join(e.Path, ", "))
	}
}

// PrintValidation reports the outcome of checking a task list.
func (r *Reporter) PrintValidation(name string, count int, err error) {
	if err == nil {
		fmt.Fprintf(r.w, "%s %s: %d tasks, no problems found\n", ui.Green("✓"), ui.Bold(name), count)
		return
	}
	fmt.Fprintf(r.w, "%s %s: %s\n", ui.Red("✗"), ui.Bold(name), err)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// padLeft right-aligns styled using the width of its plain text.
func padLeft(plain, styled string, width int) string {
	if n := utf8.RuneCountInString(plain); n < width {
		return strings.Repeat(" ", width-n) + styled
	}
	return styled
}
