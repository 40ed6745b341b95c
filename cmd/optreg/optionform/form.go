// Package optionform renders registry options as an interactive huh form and
// writes submissions back through the registry.
package optionform

import (
	"context"
	"fmt"
	"strconv"

	"optreg/cmd/optreg/option"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// field binds one option to the variable its huh field edits.
type field struct {
	name string
	kind option.Kind
	text string
	flag bool
}

func (f *field) raw() string {
	if f.kind == option.KindBoolean {
		return strconv.FormatBool(f.flag)
	}
	return f.text
}

// Form is a huh form over a set of options.
type Form struct {
	reg    *option.Registry
	fields []*field
	form   *huh.Form
}

// New builds a form with one field per option of r, in declaration order.
func New(r *option.Registry) *Form {
	return NewFor(r, r.Names()...)
}

// NewFor builds a form over the named options only. Unknown names are
// skipped.
func NewFor(r *option.Registry, names ...string) *Form {
	f := &Form{reg: r}

	var huhFields []huh.Field
	for _, name := range names {
		d, ok := r.Lookup(name)
		if !ok {
			continue
		}
		cur, _ := r.Get(name)
		fd := &field{name: name, kind: d.Kind}
		f.fields = append(f.fields, fd)
		huhFields = append(huhFields, newField(d, cur, fd)...)
	}

	f.form = huh.NewForm(huh.NewGroup(huhFields...)).WithShowHelp(true)
	return f
}

func newField(d option.Definition, cur any, fd *field) []huh.Field {
	title := d.Label
	if title == "" {
		title = d.Name
	}

	var fields []huh.Field
	switch d.Kind {
	case option.KindChoice:
		fd.text = option.Format(cur)
		opts := make([]huh.Option[string], len(d.Choices))
		for i, c := range d.Choices {
			opts[i] = huh.NewOption(c.Label, option.Format(c.Value))
		}
		fields = append(fields, huh.NewSelect[string]().
			Key(d.Name).
			Title(title).
			Description(d.Description).
			Options(opts...).
			Inline(d.DisplayColumns > 1).
			Value(&fd.text))
	case option.KindBoolean:
		fd.flag, _ = cur.(bool)
		fields = append(fields, huh.NewConfirm().
			Key(d.Name).
			Title(title).
			Description(d.Description).
			Affirmative("Yes").
			Negative("No").
			Value(&fd.flag))
	default:
		fd.text = option.Format(cur)
		fields = append(fields, huh.NewInput().
			Key(d.Name).
			Title(title).
			Description(d.Description).
			Value(&fd.text).
			Validate(func(s string) error {
				_, err := d.Parse(s)
				return err
			}))
	}

	if d.Notes != "" {
		fields = append(fields, huh.NewNote().Description(d.Notes))
	}
	return fields
}

// Huh returns the underlying huh form, e.g. to embed it in a larger program.
func (f *Form) Huh() *huh.Form { return f.form }

// Run shows the form in the alternate screen and blocks until it is
// submitted or aborted. An abort returns huh.ErrUserAborted and changes
// nothing.
func (f *Form) Run(ctx context.Context) error {
	return f.form.WithProgramOptions(tea.WithAltScreen()).RunWithContext(ctx)
}

// Apply stores the submitted values. Every value is re-validated by the
// registry first; if any is rejected nothing is stored. It returns the names
// whose value changed.
func (f *Form) Apply() ([]string, error) {
	staged := make([]any, len(f.fields))
	for i, fd := range f.fields {
		d, ok := f.reg.Lookup(fd.name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", option.ErrUnknownOption, fd.name)
		}
		v, err := d.Parse(fd.raw())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", option.ErrInvalidValue, fd.name, err)
		}
		staged[i] = v
	}

	var changed []string
	for i, fd := range f.fields {
		prev, _ := f.reg.Get(fd.name)
		if err := f.reg.Set(fd.name, staged[i]); err != nil {
			return changed, err
		}
		if prev != staged[i] {
			changed = append(changed, fd.name)
		}
	}
	return changed, nil
}
