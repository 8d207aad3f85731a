package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetNoColor turns colour output off (or back on) globally.
func SetNoColor(off bool) {
	color.NoColor = off
}

// PrintLogo renders the metra banner to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	crit := color.New(color.Bold, color.FgRed)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +-----------------------+")
	crit.Fprintln(w, "   |  ====>                |")
	bars.Fprintln(w, "   |    ---->  ======>     |")
	bars.Fprintln(w, "   |        ------>  ==>   |")
	brand.Fprintln(w, "   |   M  E  T  R  A       |")
	frame.Fprintln(w, "   +-----------------------+")
	tag.Fprintf(w, "   %s Critical path scheduling\n", Dim("⏱"))
	fmt.Fprintln(w)
}

// CriticalMarker returns the critical-path marker, or padding for other tasks.
func CriticalMarker(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// Float colours a total float value: red at zero, yellow when tight, green otherwise.
func Float(f int) string {
	s := fmt.Sprintf("%d", f)
	switch {
	case f == 0:
		return BoldRed(s)
	case f <= 2:
		return Yellow(s)
	default:
		return Green(s)
	}
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskPrefix returns a colored [task-id] prefix string.
// Each task ID gets a distinct color from the palette.
func TaskPrefix(taskID string) string {
	c := taskColors[taskColorIndex(taskID)]
	return Dim("[") + c(taskID) + Dim("]")
}

// PhaseLabel returns a colored label for a trace phase.
func PhaseLabel(phase string) string {
	switch phase {
	case "forward":
		return Cyan("forward")
	case "project":
		return BoldWhite("project")
	case "backward":
		return Magenta("backward")
	case "float":
		return BoldYellow("float")
	default:
		return Dim(phase)
	}
}
