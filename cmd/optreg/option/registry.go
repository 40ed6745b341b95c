package option

import (
	"fmt"
	"iter"
)

// Registry holds option definitions in declaration order together with their
// current values. Definitions are registered once at startup; afterwards
// values are read and replaced through Get and Set.
//
// A Registry does no locking. Hosts sharing one across goroutines must
// serialize every call.
type Registry struct {
	defs   []Definition
	index  map[string]int
	values map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		index:  make(map[string]int),
		values: make(map[string]any),
	}
}

// Register appends a definition and sets its current value to the default.
// Returns ErrDuplicateName if the name is taken, ErrInvalidDefault if the
// default lies outside the declared domain and ErrInvalidDefinition for
// structural problems. The registry is unchanged on error.
func (r *Registry) Register(d Definition) error {
	if _, exists := r.index[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
	}
	stored, err := prepare(d)
	if err != nil {
		return err
	}
	r.index[stored.Name] = len(r.defs)
	r.defs = append(r.defs, stored)
	r.values[stored.Name] = stored.DefaultValue
	return nil
}

// MustRegister registers a definition and panics on error.
func (r *Registry) MustRegister(d Definition) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get returns the current value of the named option.
func (r *Registry) Get(name string) (any, error) {
	if _, ok := r.index[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	return r.values[name], nil
}

// Set replaces the current value of the named option. The value is stored
// only if it belongs to the option's domain.
func (r *Registry) Set(name string, value any) error {
	v, err := r.Validate(name, value)
	if err != nil {
		return err
	}
	r.values[name] = v
	return nil
}

// SetString parses raw according to the option's kind and stores the result.
func (r *Registry) SetString(name, raw string) error {
	d, err := r.definition(name)
	if err != nil {
		return err
	}
	v, err := d.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
	}
	r.values[name] = v
	return nil
}

// Validate runs the checks of Set without storing anything and returns the
// normalized value.
func (r *Registry) Validate(name string, value any) (any, error) {
	d, err := r.definition(name)
	if err != nil {
		return nil, err
	}
	v, err := d.Check(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
	}
	return v, nil
}

// Reset restores the default value of the named option.
func (r *Registry) Reset(name string) error {
	d, err := r.definition(name)
	if err != nil {
		return err
	}
	r.values[name] = d.DefaultValue
	return nil
}

// IsDefault reports whether the named option currently holds its default.
func (r *Registry) IsDefault(name string) (bool, error) {
	d, err := r.definition(name)
	if err != nil {
		return false, err
	}
	return r.values[name] == d.DefaultValue, nil
}

// Lookup returns a copy of the named definition.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i].clone(), true
}

// List yields copies of all definitions in registration order. The sequence
// can be ranged over any number of times.
func (r *Registry) List() iter.Seq[Definition] {
	return func(yield func(Definition) bool) {
		for _, d := range r.defs {
			if !yield(d.clone()) {
				return
			}
		}
	}
}

// Names returns the option names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.defs))
	for i, d := range r.defs {
		names[i] = d.Name
	}
	return names
}

// Len returns the number of registered options.
func (r *Registry) Len() int { return len(r.defs) }

// definition returns the stored definition without copying; callers must not
// modify it.
func (r *Registry) definition(name string) (Definition, error) {
	i, ok := r.index[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	return r.defs[i], nil
}
