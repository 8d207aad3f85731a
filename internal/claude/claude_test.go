package claude

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/metra/internal/graph"
)

func TestStripJSONFences_Clean(t *testing.T) {
	input := `{"edges": [], "summary": "no deps"}`
	got := stripJSONFences(input)
	if got != input {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestStripJSONFences_WithJSONTag(t *testing.T) {
	input := "```json\n{\"edges\": []}\n```"
	got := stripJSONFences(input)
	if got != `{"edges": []}` {
		t.Errorf("expected clean JSON, got %q", got)
	}
}

func TestStripJSONFences_WithPlainFence(t *testing.T) {
	input := "```\n{\"edges\": []}\n```"
	got := stripJSONFences(input)
	if got != `{"edges": []}` {
		t.Errorf("expected clean JSON, got %q", got)
	}
}

func TestStripJSONFences_WithWhitespace(t *testing.T) {
	input := "  \n```json\n{\"edges\": []}\n```\n  "
	got := stripJSONFences(input)
	if got != `{"edges": []}` {
		t.Errorf("expected clean JSON, got %q", got)
	}
}

func TestBuildPrompt_ContainsTaskData(t *testing.T) {
	tasks := Summaries([]graph.Task{
		{ID: "T1", Name: "Pour foundation", Duration: 5},
		{ID: "T2", Name: "Frame walls", Duration: 3, Predecessors: []string{"T1"}},
	})
	prompt, err := buildPrompt(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "T1") || !strings.Contains(prompt, "Pour foundation") {
		t.Error("prompt should contain task IDs and names")
	}
	if !strings.Contains(prompt, "Frame walls") || !strings.Contains(prompt, `"duration": 3`) {
		t.Error("prompt should contain all tasks with durations")
	}
	if !strings.Contains(prompt, "strong causal reason") {
		t.Error("prompt should contain precedence rules")
	}
}

func TestParseResult(t *testing.T) {
	raw := "```json\n" + `{
		"edges": [
			{"task_id": "T2", "predecessor_id": "T1", "reason": "walls need a foundation"}
		],
		"summary": "T2 follows T1"
	}` + "\n```"
	result, err := ParseResult(raw)
	require.NoError(t, err)
	require.Len(t, result.Edges, 1)
	assert.Equal(t, Edge{TaskID: "T2", PredecessorID: "T1", Reason: "walls need a foundation"}, result.Edges[0])
	assert.Equal(t, "T2 follows T1", result.Summary)

	_, err = ParseResult("I think T2 depends on T1")
	assert.ErrorContains(t, err, "parse claude response")
}

func TestInferResult_Marshal(t *testing.T) {
	data, err := json.Marshal(InferResult{Edges: []Edge{{TaskID: "B", PredecessorID: "A"}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"predecessor_id":"A"`)
}

func TestNewClient_RequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewClient("", "", 0)
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	c, err := NewClient("sk-test", "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, string(c.model))
	assert.Equal(t, int64(4096), c.maxTokens)
}

func TestMerge(t *testing.T) {
	tasks := []graph.Task{
		{ID: "A", Duration: 3},
		{ID: "B", Duration: 2, Predecessors: []string{"A"}},
		{ID: "C", Duration: 5},
		{ID: "D", Duration: 1},
	}
	edges := []Edge{
		{TaskID: "C", PredecessorID: "A"},
		{TaskID: "X", PredecessorID: "A"},
		{TaskID: "D", PredecessorID: "Y"},
		{TaskID: "D", PredecessorID: "D"},
		{TaskID: "B", PredecessorID: "A"},
		{TaskID: "A", PredecessorID: "C"},
		{TaskID: "D", PredecessorID: "B"},
		{TaskID: "D", PredecessorID: "C"},
	}

	res := Merge(tasks, edges)

	assert.Equal(t, []Edge{
		{TaskID: "C", PredecessorID: "A"},
		{TaskID: "D", PredecessorID: "B"},
		{TaskID: "D", PredecessorID: "C"},
	}, res.Accepted)

	reasons := make([]string, len(res.Skipped))
	for i, s := range res.Skipped {
		reasons[i] = s.Reason
	}
	assert.Equal(t, []string{
		"unknown task_id X",
		"unknown predecessor_id Y",
		"self-dependency",
		"already a predecessor",
		"would create a cycle",
	}, reasons)

	assert.Equal(t, []string{"A"}, res.Tasks[2].Predecessors)
	assert.Equal(t, []string{"B", "C"}, res.Tasks[3].Predecessors)
	assert.Empty(t, res.Tasks[0].Predecessors)
	require.NoError(t, graph.Validate(res.Tasks))

	// Input untouched.
	assert.Nil(t, tasks[2].Predecessors)
	assert.Equal(t, []string{"A"}, tasks[1].Predecessors)
}

func TestMerge_NoEdges(t *testing.T) {
	tasks := []graph.Task{{ID: "A", Duration: 1}}
	res := Merge(tasks, nil)
	assert.Equal(t, tasks, res.Tasks)
	assert.Empty(t, res.Accepted)
	assert.Empty(t, res.Skipped)
}
