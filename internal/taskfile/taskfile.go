// Package taskfile reads and writes project task lists.
//
// Three formats are understood, chosen by file extension:
//
//	.json          [{"id": "A", "name": "...", "duration": 3, "predecessors": []}]
//	               or {"tasks": [...]}
//	.yaml, .yml    tasks: [{id: A, duration: 3, predecessors: []}]
//	.hcl           task "A" { duration = 3  predecessors = [] }
//
// Loading checks each record on its own (ID present, duration not negative).
// Whether the records form a valid network is graph.Validate's job.
package taskfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joshharrison/metra/internal/graph"
)

// Format is a task file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported task file extension %q (use .json, .yaml, .yml or .hcl)", filepath.Ext(path))
	}
}

// Load reads the task list at path.
func Load(path string) ([]graph.Task, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	tasks, err := Parse(data, format, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// Parse decodes a task list. name is only used in diagnostics.
func Parse(data []byte, format Format, name string) ([]graph.Task, error) {
	var (
		recs []record
		err  error
	)
	switch format {
	case FormatJSON:
		recs, err = parseJSON(data)
	case FormatYAML:
		recs, err = parseYAML(data)
	case FormatHCL:
		recs, err = parseHCL(data, name)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	tasks := make([]graph.Task, 0, len(recs))
	for i, rec := range recs {
		if err := checkRecord(i, rec); err != nil {
			return nil, err
		}
		tasks = append(tasks, rec.task())
	}
	return tasks, nil
}

// record is a decoded task before it is handed to the engine.
type record struct {
	ID           string   `validate:"required"`
	Name         string   `validate:"omitempty,max=200"`
	Duration     int      `validate:"gte=0"`
	Predecessors []string `validate:"dive,required"`
}

func (r record) task() graph.Task {
	return graph.Task{
		ID:           r.ID,
		Name:         r.Name,
		Duration:     r.Duration,
		Predecessors: r.Predecessors,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func checkRecord(i int, rec record) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("task #%d: %w", i+1, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	label := fmt.Sprintf("task #%d", i+1)
	if rec.ID != "" {
		label += fmt.Sprintf(" (%s)", rec.ID)
	}
	return fmt.Errorf("%s: %s", label, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		if strings.HasPrefix(fe.Field(), "Predecessors") {
			return "predecessor IDs must not be empty"
		}
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// Write stores tasks at path in the format implied by its extension.
func Write(path string, tasks []graph.Task) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(tasks, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode renders tasks in the given format.
func Encode(tasks []graph.Task, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return encodeJSON(tasks)
	case FormatYAML:
		return encodeYAML(tasks)
	case FormatHCL:
		return encodeHCL(tasks), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
