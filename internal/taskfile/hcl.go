package taskfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/joshharrison/metra/internal/graph"
)

type hclFile struct {
	Tasks []*hclTask `hcl:"task,block"`
}

type hclTask struct {
	ID           string   `hcl:"id,label"`
	Name         string   `hcl:"name,optional"`
	Duration     int      `hcl:"duration"`
	Predecessors []string `hcl:"predecessors,optional"`
}

func parseHCL(data []byte, filename string) ([]record, error) {
	if filename == "" {
		filename = "tasks.hcl"
	}

	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse HCL: %w", diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decode HCL: %w", diags)
	}

	recs := make([]record, len(parsed.Tasks))
	for i, t := range parsed.Tasks {
		recs[i] = record{
			ID:           t.ID,
			Name:         t.Name,
			Duration:     t.Duration,
			Predecessors: t.Predecessors,
		}
	}
	return recs, nil
}

func encodeHCL(tasks []graph.Task) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, t := range tasks {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("task", []string{t.ID}).Body()
		if t.Name != "" {
			block.SetAttributeValue("name", cty.StringVal(t.Name))
		}
		block.SetAttributeValue("duration", cty.NumberIntVal(int64(t.Duration)))
		block.SetAttributeValue("predecessors", stringList(t.Predecessors))
	}
	return f.Bytes()
}

func stringList(ss []string) cty.Value {
	if len(ss) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(ss))
	for i, s := range ss {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
