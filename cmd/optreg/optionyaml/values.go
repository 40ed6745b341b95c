package optionyaml

import (
	"fmt"

	"optreg/cmd/optreg/option"

	"gopkg.in/yaml.v3"
)

// ApplyValues reads a values document (a mapping of option name to value)
// and stores the values into r. Scalars are parsed from their literal text
// with the option's own rules, so `useLoginHook: 1` and `useLoginHook: "1"`
// are equivalent. A null value restores the default.
//
// Every entry is checked before anything is stored: on error r is unchanged.
func ApplyValues(r *option.Registry, in []byte) error {
	var docNode yaml.Node
	if err := yaml.Unmarshal(in, &docNode); err != nil {
		return fmt.Errorf("phase=parse path=<values>: %w", err)
	}
	if len(docNode.Content) == 0 {
		return nil
	}
	root := docNode.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("phase=parse path=<values>: values must be a mapping of option name to value")
	}

	type pending struct {
		name  string
		value any
		reset bool
	}
	staged := make([]pending, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		vn := root.Content[i+1]

		d, ok := r.Lookup(name)
		if !ok {
			return fmt.Errorf("phase=values path=%s: %w: %s", name, option.ErrUnknownOption, name)
		}
		if vn.Kind != yaml.ScalarNode {
			return fmt.Errorf("phase=values path=%s: %w: %s: value must be a scalar", name, option.ErrInvalidValue, name)
		}
		if vn.Tag == "!!null" {
			staged = append(staged, pending{name: name, reset: true})
			continue
		}
		v, err := d.Parse(vn.Value)
		if err != nil {
			return fmt.Errorf("phase=values path=%s: %w: %s: %v", name, option.ErrInvalidValue, name, err)
		}
		staged = append(staged, pending{name: name, value: v})
	}

	for _, p := range staged {
		var err error
		if p.reset {
			err = r.Reset(p.name)
		} else {
			err = r.Set(p.name, p.value)
		}
		if err != nil {
			return fmt.Errorf("phase=values path=%s: %w", p.name, err)
		}
	}
	return nil
}

// MarshalValues renders the current values of r as a values document, in
// declaration order, with each option's label as a head comment.
func MarshalValues(r *option.Registry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for d := range r.List() {
		v, err := r.Get(d.Name)
		if err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: d.Name, HeadComment: d.Label}
		val := &yaml.Node{}
		if err := val.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", d.Name, err)
		}
		root.Content = append(root.Content, key, val)
	}
	return yaml.Marshal(root)
}
