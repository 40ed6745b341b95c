// Package optionhcl reads option schemas written in HCL:
//
//	option "useLoginHook" {
//	  kind    = "radios"
//	  label   = "Check for upgrades on superuser login?"
//	  columns = 1
//	  default = 0
//
//	  choice {
//	    value = 1
//	    label = "Yes"
//	  }
//	  choice {
//	    value = 0
//	    label = "No"
//	  }
//	}
//
// Blocks are returned in file order, which becomes the registration order.
package optionhcl

import (
	"fmt"
	"os"

	"optreg/cmd/optreg/option"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclSchemaFile is the top-level structure of a schema file for decoding.
type hclSchemaFile struct {
	Options []*hclOption `hcl:"option,block"`
}

type hclOption struct {
	Name        string         `hcl:"name,label"`
	Kind        string         `hcl:"kind"`
	Label       string         `hcl:"label,optional"`
	Description string         `hcl:"description,optional"`
	Notes       string         `hcl:"notes,optional"`
	Columns     *int           `hcl:"columns,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Min         *int64         `hcl:"min,optional"`
	Max         *int64         `hcl:"max,optional"`
	Choices     []*hclChoice   `hcl:"choice,block"`
}

type hclChoice struct {
	Value hcl.Expression `hcl:"value"`
	Label string         `hcl:"label"`
}

// ParseFile reads and parses the schema file at path.
func ParseFile(path string) ([]option.Definition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes an HCL schema. filename is used in diagnostics only.
func Parse(src []byte, filename string) ([]option.Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclSchemaFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	defs := make([]option.Definition, 0, len(parsed.Options))
	for _, ho := range parsed.Options {
		d, err := convertOption(ho)
		if err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", ho.Name, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Build parses src and registers its options into a new registry.
func Build(src []byte, filename string) (*option.Registry, error) {
	defs, err := Parse(src, filename)
	if err != nil {
		return nil, err
	}
	r := option.NewRegistry()
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, fmt.Errorf("phase=register path=%s: %w", d.Name, err)
		}
	}
	return r, nil
}

func convertOption(ho *hclOption) (option.Definition, error) {
	kind, err := option.ParseKind(ho.Kind)
	if err != nil {
		return option.Definition{}, err
	}

	def, err := literal(ho.Default)
	if err != nil {
		return option.Definition{}, fmt.Errorf("default: %w", err)
	}

	var choices []option.Choice
	for i, hc := range ho.Choices {
		v, err := literal(hc.Value)
		if err != nil {
			return option.Definition{}, fmt.Errorf("choice[%d]: %w", i, err)
		}
		choices = append(choices, option.Choice{Value: v, Label: hc.Label})
	}

	d := option.Definition{
		Name:         ho.Name,
		Kind:         kind,
		Label:        ho.Label,
		Description:  ho.Description,
		Notes:        ho.Notes,
		Choices:      choices,
		DefaultValue: def,
		Min:          ho.Min,
		Max:          ho.Max,
	}
	if ho.Columns != nil {
		d.DisplayColumns = *ho.Columns
	}
	return d, nil
}

// literal evaluates a constant expression into a Go scalar. Whole numbers
// become int64; a missing optional attribute yields nil.
func literal(expr hcl.Expression) (any, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be a constant")
	}

	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if !bf.IsInt() {
			return nil, fmt.Errorf("number %s is not a whole number", bf.Text('g', -1))
		}
		n, acc := bf.Int64()
		if acc != 0 {
			return nil, fmt.Errorf("number %s is out of range", bf.Text('g', -1))
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
}
