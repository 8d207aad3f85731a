package taskfile

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/metra/internal/graph"
)

// Accepted spellings per field, first match wins.
var (
	idKeys       = []string{"id"}
	nameKeys     = []string{"name", "title"}
	durationKeys = []string{"duration", "dur"}
	predKeys     = []string{"predecessors", "deps", "depends_on"}
)

func parseJSON(data []byte) ([]record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	list := gjson.ParseBytes(data)
	if list.IsObject() {
		list = list.Get("tasks")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf(`expected an array of tasks or an object with a "tasks" array`)
	}

	var (
		recs []record
		perr error
	)
	list.ForEach(func(_, item gjson.Result) bool {
		n := len(recs) + 1
		if !item.IsObject() {
			perr = fmt.Errorf("task #%d: expected an object, got %s", n, item.Type)
			return false
		}

		rec := record{
			ID:   firstOf(item, idKeys).String(),
			Name: firstOf(item, nameKeys).String(),
		}

		dur, err := jsonDuration(firstOf(item, durationKeys))
		if err != nil {
			perr = fmt.Errorf("task #%d: %w", n, err)
			return false
		}
		rec.Duration = dur

		preds := firstOf(item, predKeys)
		switch {
		case preds.IsArray():
			for _, p := range preds.Array() {
				rec.Predecessors = append(rec.Predecessors, p.String())
			}
		case preds.Type == gjson.String:
			rec.Predecessors = splitIDs(preds.Str)
		}

		recs = append(recs, rec)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return recs, nil
}

// splitIDs reads the "A, B" shorthand for a predecessor list.
func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func firstOf(item gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if v := item.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// jsonDuration accepts whole numbers and numeric strings.
func jsonDuration(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		if v.Num != math.Trunc(v.Num) {
			return 0, fmt.Errorf("duration must be a whole number, got %s", v.Raw)
		}
		return int(v.Int()), nil
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		n := gjson.Parse(s)
		if n.Type != gjson.Number || n.Num != math.Trunc(n.Num) {
			return 0, fmt.Errorf("duration must be a whole number, got %q", v.Str)
		}
		return int(n.Int()), nil
	default:
		return 0, fmt.Errorf("duration must be a number, got %s", v.Raw)
	}
}

type fileDoc struct {
	Tasks []graph.Task `json:"tasks" yaml:"tasks"`
}

func encodeJSON(tasks []graph.Task) ([]byte, error) {
	data, err := json.MarshalIndent(fileDoc{Tasks: normalized(tasks)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// normalized replaces nil predecessor lists with empty ones so files read
// "predecessors: []" rather than null.
func normalized(tasks []graph.Task) []graph.Task {
	out := make([]graph.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
		if out[i].Predecessors == nil {
			out[i].Predecessors = []string{}
		}
	}
	return out
}
