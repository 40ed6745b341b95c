package optionschema

import (
	"encoding/json"
	"fmt"
	"strconv"

	"optreg/cmd/optreg/option"

	"github.com/invopop/jsonschema"
)

const (
	definitionSchemaID = "https://optreg.dev/schema/option-definition.json"
	valuesSchemaID     = "https://optreg.dev/schema/option-values.json"
)

// DefinitionSchema describes the wire shape of a single option definition,
// as consumed by hosts that render forms from the registry.
func DefinitionSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := r.Reflect(&option.Definition{})
	schema.ID = definitionSchemaID
	schema.Title = "Option definition"
	schema.Description = "A named, typed configuration field with default and metadata"
	return schema
}

// ValuesSchema describes a values document for r: one property per option in
// declaration order, carrying the option's label, description, default and
// domain constraints.
func ValuesSchema(r *option.Registry) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for d := range r.List() {
		props.Set(d.Name, propertySchema(d))
	}
	return &jsonschema.Schema{
		Version:              jsonschema.Version,
		ID:                   valuesSchemaID,
		Title:                "Option values",
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func propertySchema(d option.Definition) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Title:       d.Label,
		Description: d.Description,
		Default:     d.DefaultValue,
	}
	if d.Notes != "" {
		s.Comments = d.Notes
	}

	switch d.Kind {
	case option.KindText:
		s.Type = "string"
	case option.KindBoolean:
		s.Type = "boolean"
	case option.KindInteger:
		s.Type = "integer"
		if d.Min != nil {
			s.Minimum = json.Number(strconv.FormatInt(*d.Min, 10))
		}
		if d.Max != nil {
			s.Maximum = json.Number(strconv.FormatInt(*d.Max, 10))
		}
	case option.KindChoice:
		// Values files match choices by their text, so `1` and "1" both load.
		s.Enum = make([]any, 0, 2*len(d.Choices))
		for _, c := range d.Choices {
			s.Enum = append(s.Enum, c.Value)
		}
		for _, c := range d.Choices {
			if _, isText := c.Value.(string); !isText {
				s.Enum = append(s.Enum, option.Format(c.Value))
			}
		}
	}
	return s
}

// Marshal renders a schema as indented JSON.
func Marshal(schema *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
