package reporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/metra/internal/graph"
	"github.com/joshharrison/metra/internal/mpm"
	"github.com/joshharrison/metra/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetNoColor(true)
	m.Run()
}

func diamond() []graph.Task {
	return []graph.Task{
		{ID: "A", Name: "Design", Duration: 3},
		{ID: "B", Name: "Build \"fast\"", Duration: 2, Predecessors: []string{"A"}},
		{ID: "C", Name: "Test", Duration: 5, Predecessors: []string{"A"}},
		{ID: "D", Name: "Ship", Duration: 1, Predecessors: []string{"B", "C"}},
	}
}

func schedule(t *testing.T) *mpm.Result {
	t.Helper()
	res, err := mpm.Schedule(diamond())
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	return res
}

func TestPrintSchedule(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).PrintSchedule(schedule(t))
	output := buf.String()

	for _, want := range []string{
		"MPM Schedule",
		"Duration:  9",
		"A → C → D",
		"Wave 1 (t=0, 1 tasks)",
		"Wave 2 (t=3, 2 tasks)",
		"⚡",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
	if strings.Contains(output, "INCONSISTENT_GRAPH") {
		t.Error("consistent schedule should not warn")
	}
}

func TestPrintTable_Rows(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).PrintTable(schedule(t).Tasks, []string{"B"})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "ES") || !strings.Contains(lines[0], "FF") {
		t.Errorf("header missing columns: %q", lines[0])
	}
	// B: dur 2, ES 3, EF 5, LS 6, LF 8, TF 3, FF 3, not critical
	if got := strings.Fields(lines[2]); strings.Join(got[len(got)-7:], " ") != "2 3 5 6 8 3 3" {
		t.Errorf("unexpected B row: %q", lines[2])
	}
	if !strings.HasPrefix(lines[2], "  › B") {
		t.Errorf("B should be marked, got %q", lines[2])
	}
	if strings.Contains(lines[2], "⚡") {
		t.Error("B is not critical")
	}
	if !strings.HasSuffix(lines[3], "⚡") {
		t.Errorf("C should be critical, got %q", lines[3])
	}
}

func TestPrintTable_TruncatesNames(t *testing.T) {
	res, err := mpm.Schedule([]graph.Task{{ID: "A", Name: strings.Repeat("x", 50), Duration: 1}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	New(&buf).PrintTable(res.Tasks, nil)
	if !strings.Contains(buf.String(), strings.Repeat("x", 27)+"...") {
		t.Errorf("long name should be truncated:\n%s", buf.String())
	}
}

func TestPrintStep(t *testing.T) {
	tr, err := mpm.TraceSchedule(diamond())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	New(&buf).PrintStep(tr.Steps[6], tr.Len(), true)
	output := buf.String()

	if !strings.Contains(output, "[ 7/18]") {
		t.Errorf("expected step counter, got:\n%s", output)
	}
	if !strings.Contains(output, "Early Start of D") {
		t.Error("expected step title")
	}
	if !strings.Contains(output, "max(B: 5, C: 8) = 8") {
		t.Error("expected step description")
	}
	if !strings.Contains(output, "› D") {
		t.Error("expected highlighted row for D")
	}
	if !strings.Contains(output, "         [D] [B] [C]\n") {
		t.Errorf("expected highlighted task prefixes, got:\n%s", output)
	}
}

func TestPrintTrace(t *testing.T) {
	tr, err := mpm.TraceSchedule(diamond())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	New(&buf).PrintTrace(tr)
	output := buf.String()

	if got := strings.Count(output, "/18]"); got != 18 {
		t.Errorf("expected 18 steps, got %d", got)
	}
	if !strings.Contains(output, "MPM Schedule") {
		t.Error("trace should end with the confirmed schedule")
	}
}

func TestPrintInconsistency(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).PrintInconsistency(&graph.Error{Reason: graph.ReasonInconsistentGraph, Path: []string{"A", "B"}})
	output := buf.String()
	if !strings.Contains(output, "INCONSISTENT_GRAPH") || !strings.Contains(output, "unresolved: A, B") {
		t.Errorf("unexpected warning:\n%s", output)
	}
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.PrintValidation("plan.yaml", 4, nil)
	r.PrintValidation("bad.yaml", 2, errors.New(`CYCLE: task "A": A -> B -> A`))
	output := buf.String()

	if !strings.Contains(output, "plan.yaml: 4 tasks, no problems found") {
		t.Errorf("missing success line:\n%s", output)
	}
	if !strings.Contains(output, "bad.yaml: CYCLE") {
		t.Errorf("missing failure line:\n%s", output)
	}
}

func TestPrintDOT(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).PrintDOT(schedule(t))
	output := buf.String()

	if !strings.HasPrefix(output, "digraph mpm {") || !strings.HasSuffix(output, "}\n") {
		t.Errorf("not a digraph:\n%s", output)
	}
	if !strings.Contains(output, `"A" -> "C" [color=red, penwidth=2];`) {
		t.Error("critical edge A -> C should be red")
	}
	if !strings.Contains(output, `"A" -> "B";`) {
		t.Error("non-critical edge A -> B should be plain")
	}
	if !strings.Contains(output, `Build \"fast\"`) {
		t.Error("quotes in names should be escaped")
	}
	if !strings.Contains(output, `"C" [label="C\nTest\nd=5 ES=3 LF=8 TF=0", style="rounded,bold", color=red];`) {
		t.Errorf("unexpected node for C:\n%s", output)
	}
}

func TestPrintASCII(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).PrintASCII(schedule(t))
	output := buf.String()

	for _, want := range []string{"Start tasks: A\n", "End tasks:   D\n", "Wave 1 (t=0)", "Wave 3 (t=8)", "[A] Design", "└──→ B", "└──→ C"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in:\n%s", want, output)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(schedule(t))
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if got := gjson.GetBytes(data, "project_duration").Int(); got != 9 {
		t.Errorf("project_duration = %d, want 9", got)
	}
	var path []string
	for _, id := range gjson.GetBytes(data, "critical_path").Array() {
		path = append(path, id.String())
	}
	if strings.Join(path, ",") != "A,C,D" {
		t.Errorf("critical_path = %v", path)
	}
	if got := gjson.GetBytes(data, "tasks.1.total_float").Int(); got != 3 {
		t.Errorf("B total_float = %d, want 3", got)
	}
	if gjson.GetBytes(data, "inconsistency").Exists() {
		t.Error("inconsistency should be omitted")
	}
}
