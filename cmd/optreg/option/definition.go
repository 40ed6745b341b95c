package option

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Choice is one selectable entry of a choice option: the stored value and the
// label shown next to it.
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label" validate:"required"`
}

// Definition declares a single configuration option.
//
// Labels, descriptions and notes are stored as already-resolved display
// strings. DisplayColumns is a rendering hint only; zero means one column.
// Min and Max bound integer options and must be nil for every other kind.
type Definition struct {
	Name           string   `json:"name" validate:"required"`
	Kind           Kind     `json:"kind" validate:"required,oneof=text integer boolean choice" jsonschema:"enum=text,enum=integer,enum=boolean,enum=choice"`
	Label          string   `json:"label"`
	Description    string   `json:"description,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Choices        []Choice `json:"choices,omitempty" validate:"dive"`
	DisplayColumns int      `json:"displayColumns" validate:"gte=0" jsonschema:"minimum=0"`
	DefaultValue   any      `json:"defaultValue"`
	Min            *int64   `json:"min,omitempty"`
	Max            *int64   `json:"max,omitempty"`
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// ChoiceLabel returns the label declared for value, if value is one of the
// definition's choices.
func (d Definition) ChoiceLabel(value any) (string, bool) {
	v, ok := normalizeScalar(value)
	if !ok {
		return "", false
	}
	for _, c := range d.Choices {
		if c.Value == v {
			return c.Label, true
		}
	}
	return "", false
}

// Check reports whether value belongs to the option's domain and returns the
// form in which it would be stored.
func (d Definition) Check(value any) (any, error) {
	switch d.Kind {
	case KindText:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %T", value)
		}
		return s, nil

	case KindInteger:
		n, ok := toInt64(value)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", value)
		}
		if d.Min != nil && n < *d.Min {
			return nil, fmt.Errorf("%d is below the minimum %d", n, *d.Min)
		}
		if d.Max != nil && n > *d.Max {
			return nil, fmt.Errorf("%d is above the maximum %d", n, *d.Max)
		}
		return n, nil

	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}
		return b, nil

	case KindChoice:
		if len(d.Choices) == 0 {
			return nil, errors.New("no choices declared")
		}
		v, ok := normalizeScalar(value)
		if ok {
			for _, c := range d.Choices {
				if c.Value == v {
					return v, nil
				}
			}
		}
		return nil, fmt.Errorf("%s is not one of %s", describe(value), d.choiceList())
	}
	return nil, fmt.Errorf("unknown kind %q", d.Kind)
}

// Parse converts a submitted string into a value of the option's domain.
// Integers are base 10, booleans accept true/false, 1/0, yes/no and on/off,
// and choices match the formatted choice value.
func (d Definition) Parse(raw string) (any, error) {
	switch d.Kind {
	case KindText:
		return d.Check(raw)
	case KindInteger:
		n, err := parseInt(raw)
		if err != nil {
			return nil, err
		}
		return d.Check(n)
	case KindBoolean:
		b, err := parseBool(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case KindChoice:
		trimmed := strings.TrimSpace(raw)
		for _, c := range d.Choices {
			if Format(c.Value) == trimmed {
				return c.Value, nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %s", raw, d.choiceList())
	}
	return nil, fmt.Errorf("unknown kind %q", d.Kind)
}

func (d Definition) choiceList() string {
	vals := make([]string, len(d.Choices))
	for i, c := range d.Choices {
		vals[i] = Format(c.Value)
	}
	return "[" + strings.Join(vals, ", ") + "]"
}

// clone returns a copy that shares no mutable storage with d.
func (d Definition) clone() Definition {
	out := d
	if d.Choices != nil {
		out.Choices = make([]Choice, len(d.Choices))
		copy(out.Choices, d.Choices)
	}
	if d.Min != nil {
		m := *d.Min
		out.Min = &m
	}
	if d.Max != nil {
		m := *d.Max
		out.Max = &m
	}
	return out
}

// prepare validates d and returns the normalized copy the registry stores.
func prepare(d Definition) (Definition, error) {
	if err := structValidator.Struct(d); err != nil {
		return Definition{}, fmt.Errorf("%w: %s: %s", ErrInvalidDefinition, d.Name, flattenValidation(err))
	}

	out := d.clone()
	if out.DisplayColumns == 0 {
		out.DisplayColumns = 1
	}

	if out.Kind != KindChoice && len(out.Choices) > 0 {
		return Definition{}, fmt.Errorf("%w: %s: choices are only allowed on choice options", ErrInvalidDefinition, d.Name)
	}
	if out.Kind != KindInteger && (out.Min != nil || out.Max != nil) {
		return Definition{}, fmt.Errorf("%w: %s: min/max are only allowed on integer options", ErrInvalidDefinition, d.Name)
	}
	if out.Min != nil && out.Max != nil && *out.Min > *out.Max {
		return Definition{}, fmt.Errorf("%w: %s: min %d is greater than max %d", ErrInvalidDefinition, d.Name, *out.Min, *out.Max)
	}

	// Choices are matched by their formatted text when read back from
	// values files, the store and forms, so that text must be unique.
	seen := make(map[string]struct{}, len(out.Choices))
	for i, c := range out.Choices {
		v, ok := normalizeScalar(c.Value)
		if !ok {
			return Definition{}, fmt.Errorf("%w: %s: choice %d: value must be text, integer or boolean, got %T",
				ErrInvalidDefinition, d.Name, i, c.Value)
		}
		text := Format(v)
		if strings.TrimSpace(text) != text {
			return Definition{}, fmt.Errorf("%w: %s: choice %d: value %q has surrounding whitespace",
				ErrInvalidDefinition, d.Name, i, text)
		}
		if _, dup := seen[text]; dup {
			return Definition{}, fmt.Errorf("%w: %s: duplicate choice value %s", ErrInvalidDefinition, d.Name, text)
		}
		seen[text] = struct{}{}
		out.Choices[i].Value = v
	}

	def, err := out.Check(out.DefaultValue)
	if err != nil {
		return Definition{}, fmt.Errorf("%w: %s: %v", ErrInvalidDefault, d.Name, err)
	}
	out.DefaultValue = def
	return out, nil
}

func flattenValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}
