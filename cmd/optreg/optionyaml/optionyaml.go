package optionyaml

import (
	"fmt"

	"optreg/cmd/optreg/option"

	"gopkg.in/yaml.v3"
)

// ---- Internal YAML parsing structs ----------------------------------------
//
// These mirror option.Definition but carry YAML tags and accept the field
// names of CMS module configs (type, options, optionColumns, value) as
// aliases. They are converted before being returned to callers.

// yamlDocument is the mapping form of a schema file.
type yamlDocument struct {
	Options []yamlOption `yaml:"options"`
}

type yamlOption struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Label       string `yaml:"label,omitempty"`
	Description string `yaml:"description,omitempty"`
	Notes       string `yaml:"notes,omitempty"`

	// Choices and Default are kept as yaml.Node (not *yaml.Node): yaml.v3
	// leaves pointer nodes with Kind 0 when decoding into a struct. An absent
	// key is detected by Kind == 0.
	Choices yaml.Node `yaml:"choices,omitempty"`
	Options yaml.Node `yaml:"options,omitempty"`
	Default yaml.Node `yaml:"default,omitempty"`
	Value   yaml.Node `yaml:"value,omitempty"`

	Columns       *int   `yaml:"columns,omitempty"`
	OptionColumns *int   `yaml:"optionColumns,omitempty"`
	Min           *int64 `yaml:"min,omitempty"`
	Max           *int64 `yaml:"max,omitempty"`
}

type yamlChoice struct {
	Value any    `yaml:"value"`
	Label string `yaml:"label"`
}

// ---- Parse -----------------------------------------------------------------

// Parse reads a schema document. Two forms are accepted: a mapping with an
// `options` list (preferred) or a bare list of options.
func Parse(in []byte) ([]option.Definition, error) {
	var docNode yaml.Node
	if err := yaml.Unmarshal(in, &docNode); err != nil {
		return nil, fmt.Errorf("phase=parse path=<doc>: %w", err)
	}
	if len(docNode.Content) == 0 {
		return nil, fmt.Errorf("phase=parse path=<doc>: empty YAML")
	}
	root := docNode.Content[0]

	var raw []yamlOption
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("phase=parse path=<doc>: %w", err)
		}
	case yaml.MappingNode:
		var doc yamlDocument
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("phase=parse path=<doc>: %w", err)
		}
		raw = doc.Options
	default:
		return nil, fmt.Errorf("phase=parse path=<doc>: unexpected YAML root kind: %d", root.Kind)
	}

	defs := make([]option.Definition, 0, len(raw))
	for i, yo := range raw {
		d, err := convertOption(yo)
		if err != nil {
			return nil, fmt.Errorf("phase=parse path=%s: %w", optionPath(i, yo.Name), err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Build parses every input in order and registers the definitions into a new
// registry. Option names must be unique across all inputs.
func Build(inputs ...[]byte) (*option.Registry, error) {
	r := option.NewRegistry()
	for _, in := range inputs {
		defs, err := Parse(in)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			if err := r.Register(d); err != nil {
				return nil, fmt.Errorf("phase=register path=%s: %w", d.Name, err)
			}
		}
	}
	return r, nil
}

// ---- Convert: yaml types → option types -----------------------------------

func convertOption(yo yamlOption) (option.Definition, error) {
	kindName, err := pickString("kind", yo.Kind, "type", yo.Type)
	if err != nil {
		return option.Definition{}, err
	}
	if kindName == "" {
		return option.Definition{}, fmt.Errorf("option is missing a kind")
	}
	kind, err := option.ParseKind(kindName)
	if err != nil {
		return option.Definition{}, err
	}

	choicesNode, err := pickNode("choices", yo.Choices, "options", yo.Options)
	if err != nil {
		return option.Definition{}, err
	}
	choices, err := convertChoices(choicesNode)
	if err != nil {
		return option.Definition{}, err
	}

	defaultNode, err := pickNode("default", yo.Default, "value", yo.Value)
	if err != nil {
		return option.Definition{}, err
	}
	var def any
	if defaultNode.Kind != 0 {
		if err := defaultNode.Decode(&def); err != nil {
			return option.Definition{}, fmt.Errorf("default: %w", err)
		}
	}

	columns := yo.Columns
	if columns == nil {
		columns = yo.OptionColumns
	} else if yo.OptionColumns != nil {
		return option.Definition{}, fmt.Errorf("'columns' and 'optionColumns' cannot both be set")
	}

	d := option.Definition{
		Name:         yo.Name,
		Kind:         kind,
		Label:        yo.Label,
		Description:  yo.Description,
		Notes:        yo.Notes,
		Choices:      choices,
		DefaultValue: def,
		Min:          yo.Min,
		Max:          yo.Max,
	}
	if columns != nil {
		d.DisplayColumns = *columns
	}
	return d, nil
}

// convertChoices accepts either a mapping (value: label, order preserved) or
// a list of {value, label} items.
func convertChoices(n yaml.Node) ([]option.Choice, error) {
	switch n.Kind {
	case 0:
		return nil, nil

	case yaml.MappingNode:
		out := make([]option.Choice, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var value any
			if err := n.Content[i].Decode(&value); err != nil {
				return nil, fmt.Errorf("choices: %w", err)
			}
			var label string
			if err := n.Content[i+1].Decode(&label); err != nil {
				return nil, fmt.Errorf("choices[%s]: label: %w", n.Content[i].Value, err)
			}
			out = append(out, option.Choice{Value: value, Label: label})
		}
		return out, nil

	case yaml.SequenceNode:
		var items []yamlChoice
		if err := n.Decode(&items); err != nil {
			return nil, fmt.Errorf("choices: %w", err)
		}
		out := make([]option.Choice, len(items))
		for i, it := range items {
			out[i] = option.Choice{Value: it.Value, Label: it.Label}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("choices must be a mapping or a list")
	}
}

func pickString(name, v, alias, av string) (string, error) {
	if v != "" && av != "" {
		return "", fmt.Errorf("'%s' and '%s' cannot both be set", name, alias)
	}
	if v != "" {
		return v, nil
	}
	return av, nil
}

func pickNode(name string, n yaml.Node, alias string, an yaml.Node) (yaml.Node, error) {
	if n.Kind != 0 && an.Kind != 0 {
		return yaml.Node{}, fmt.Errorf("'%s' and '%s' cannot both be set", name, alias)
	}
	if n.Kind != 0 {
		return n, nil
	}
	return an, nil
}

func optionPath(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("options[%d]", i)
	}
	return name
}
