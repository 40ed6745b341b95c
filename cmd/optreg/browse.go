package main

import (
	"fmt"

	"optreg/cmd/optreg/option"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and toggle option values in a table",
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		ctx := cmd.Context()
		m := newBrowseModel(s.reg, func() error { return s.save(ctx) })
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		final, err := p.Run()
		if err != nil {
			return err
		}
		if bm, ok := final.(browseModel); ok && bm.dirty {
			fmt.Fprintln(cmd.ErrOrStderr(), "unsaved changes discarded")
		}
		return nil
	},
}

// browseModel is a table of options. It is the only mutator of the registry
// while the program runs; all changes happen inside Update.
type browseModel struct {
	table     table.Model
	reg       *option.Registry
	names     []string
	save      func() error
	dirty     bool
	statusMsg string
	statusErr error
}

func newBrowseModel(reg *option.Registry, save func() error) browseModel {
	return browseModel{
		table: newOptionTable(collectEntries(reg), true),
		reg:   reg,
		names: reg.Names(),
		save:  save,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "enter":
			m.cycle()
			return m, nil
		case "r":
			m.reset()
			return m, nil
		case "s":
			m.persist()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *browseModel) selected() (option.Definition, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.names) {
		return option.Definition{}, false
	}
	return m.reg.Lookup(m.names[idx])
}

// cycle advances the selected option to its next value. Choices move to
// the next declared choice and booleans flip; free-form kinds are edited
// elsewhere.
func (m *browseModel) cycle() {
	d, ok := m.selected()
	if !ok {
		return
	}
	cur, _ := m.reg.Get(d.Name)
	next, ok := nextValue(d, cur)
	if !ok {
		m.setStatus(fmt.Sprintf("%s is %s; use `%s set %s VALUE` or `%s edit %s`", d.Name, d.Kind, appName, d.Name, appName, d.Name), nil)
		return
	}
	if err := m.reg.Set(d.Name, next); err != nil {
		m.setStatus("", err)
		return
	}
	m.dirty = true
	m.refresh()
	m.setStatus(fmt.Sprintf("%s = %s", d.Name, displayValue(d, next)), nil)
}

func (m *browseModel) reset() {
	d, ok := m.selected()
	if !ok {
		return
	}
	if isDefault, _ := m.reg.IsDefault(d.Name); isDefault {
		m.setStatus(d.Name+" already has its default value", nil)
		return
	}
	if err := m.reg.Reset(d.Name); err != nil {
		m.setStatus("", err)
		return
	}
	m.dirty = true
	m.refresh()
	m.setStatus(fmt.Sprintf("%s reset to %s", d.Name, displayValue(d, d.DefaultValue)), nil)
}

func (m *browseModel) persist() {
	if err := m.save(); err != nil {
		m.setStatus("", fmt.Errorf("save failed: %w", err))
		return
	}
	m.dirty = false
	m.setStatus("saved", nil)
}

func (m *browseModel) refresh() {
	m.table.SetRows(toRows(collectEntries(m.reg)))
}

func (m *browseModel) setStatus(msg string, err error) {
	m.statusMsg = msg
	m.statusErr = err
}

// nextValue returns the value following cur in d's domain for kinds that
// have a finite one.
func nextValue(d option.Definition, cur any) (any, bool) {
	switch d.Kind {
	case option.KindBoolean:
		b, _ := cur.(bool)
		return !b, true
	case option.KindChoice:
		if len(d.Choices) == 0 {
			return nil, false
		}
		for i, c := range d.Choices {
			if c.Value == cur {
				return d.Choices[(i+1)%len(d.Choices)].Value, true
			}
		}
		return d.Choices[0].Value, true
	}
	return nil, false
}

func (m browseModel) View() string {
	title := "OPTREG  options"
	if m.dirty {
		title += "  [modified]"
	}
	view := styleTitle.Render(title) + "\n" + styleBase.Render(m.table.View()) + "\n"

	switch {
	case m.statusErr != nil:
		view += styleErr.Render(m.statusErr.Error()) + "\n"
	case m.statusMsg != "":
		view += styleOK.Render(m.statusMsg) + "\n"
	}

	if len(m.names) == 0 {
		return view + styleHelp.Render("No options defined.  q  quit")
	}
	return view + styleHelp.Render("↑/↓  navigate    space  next value    r  reset    s  save    q  quit")
}
