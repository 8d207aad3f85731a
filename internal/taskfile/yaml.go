package taskfile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/metra/internal/graph"
)

// yamlTask keeps durations and predecessor lists as nodes so they can be
// checked the same way the JSON decoder checks them.
type yamlTask struct {
	ID           string     `yaml:"id"`
	Name         string     `yaml:"name"`
	Title        string     `yaml:"title"`
	Duration     *yaml.Node `yaml:"duration"`
	Dur          *yaml.Node `yaml:"dur"`
	Predecessors *yaml.Node `yaml:"predecessors"`
	Deps         *yaml.Node `yaml:"deps"`
	DependsOn    *yaml.Node `yaml:"depends_on"`
}

func (y yamlTask) record() (record, error) {
	rec := record{ID: y.ID, Name: y.Name}
	if rec.Name == "" {
		rec.Name = y.Title
	}

	dur, err := yamlDuration(firstNode(y.Duration, y.Dur))
	if err != nil {
		return record{}, err
	}
	rec.Duration = dur

	preds, err := yamlIDs(firstNode(y.Predecessors, y.Deps, y.DependsOn))
	if err != nil {
		return record{}, err
	}
	rec.Predecessors = preds
	return rec, nil
}

func firstNode(nodes ...*yaml.Node) *yaml.Node {
	for _, n := range nodes {
		if n != nil {
			return n
		}
	}
	return nil
}

// yamlDuration accepts whole numbers and numeric strings.
func yamlDuration(n *yaml.Node) (int, error) {
	if n == nil || n.Tag == "!!null" {
		return 0, nil
	}
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("duration must be a number")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(n.Value), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("duration must be a whole number, got %s", n.Value)
	}
	return int(f), nil
}

// yamlIDs accepts a list of IDs or the "A, B" shorthand.
func yamlIDs(n *yaml.Node) ([]string, error) {
	if n == nil || n.Tag == "!!null" {
		return nil, nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return splitIDs(n.Value), nil
	case yaml.SequenceNode:
		var ids []string
		if err := n.Decode(&ids); err != nil {
			return nil, fmt.Errorf("predecessors: %w", err)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("predecessors must be a list or a comma-separated string")
	}
}

type yamlFile struct {
	Tasks []yamlTask `yaml:"tasks"`
}

func parseYAML(data []byte) ([]record, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	var items []yamlTask
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&items); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
	case yaml.MappingNode:
		var f yamlFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode tasks: %w", err)
		}
		items = f.Tasks
	default:
		return nil, fmt.Errorf("expected a list of tasks or a mapping with a tasks key")
	}

	recs := make([]record, len(items))
	for i, it := range items {
		rec, err := it.record()
		if err != nil {
			return nil, fmt.Errorf("task #%d: %w", i+1, err)
		}
		recs[i] = rec
	}
	return recs, nil
}

func encodeYAML(tasks []graph.Task) ([]byte, error) {
	data, err := yaml.Marshal(fileDoc{Tasks: normalized(tasks)})
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}
