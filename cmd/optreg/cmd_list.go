package main

import (
	"fmt"
	"io"

	"optreg/cmd/optreg/option"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all options with their current values",
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		entries := collectEntries(s.reg)
		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no options defined")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), styleBase.Render(newOptionTable(entries, false).View()))
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("plain", false, "print aligned plain text instead of a table")
}

// optionEntry is one row of the option listing.
type optionEntry struct {
	name    string
	kind    option.Kind
	value   string
	deflt   string
	label   string
	changed bool
}

// collectEntries snapshots every option of r in declaration order.
func collectEntries(r *option.Registry) []optionEntry {
	var out []optionEntry
	for d := range r.List() {
		cur, _ := r.Get(d.Name)
		isDefault, _ := r.IsDefault(d.Name)
		out = append(out, optionEntry{
			name:    d.Name,
			kind:    d.Kind,
			value:   displayValue(d, cur),
			deflt:   displayValue(d, d.DefaultValue),
			label:   d.Label,
			changed: !isDefault,
		})
	}
	return out
}

// displayValue renders v with its choice label when it has one, e.g. "1 (Yes)".
func displayValue(d option.Definition, v any) string {
	s := option.Format(v)
	if label, ok := d.ChoiceLabel(v); ok && label != s {
		return s + " (" + label + ")"
	}
	return s
}

func toRows(entries []optionEntry) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		value := e.value
		if e.changed {
			value += " *"
		}
		rows[i] = table.Row{e.name, string(e.kind), value, e.deflt, e.label}
	}
	return rows
}

func newOptionTable(entries []optionEntry, focused bool) table.Model {
	columns := []table.Column{
		{Title: "NAME", Width: 22},
		{Title: "KIND", Width: 8},
		{Title: "VALUE", Width: 16},
		{Title: "DEFAULT", Width: 16},
		{Title: "LABEL", Width: 40},
	}

	height := len(entries) + 2
	if height > 17 {
		height = 17
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(toRows(entries)),
		table.WithFocused(focused),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color("99"))
	if focused {
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
	} else {
		s.Selected = s.Cell
	}
	t.SetStyles(s)
	return t
}

// printEntries prints all entries aligned, one option per line.
func printEntries(w io.Writer, entries []optionEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no options defined")
		return
	}

	nameLen, valueLen := 0, 0
	for _, e := range entries {
		nameLen = max(nameLen, len(e.name))
		valueLen = max(valueLen, len(e.value))
	}

	for _, e := range entries {
		marker := " "
		if e.changed {
			marker = "*"
		}
		fmt.Fprintf(w, "%-*s  %-*s %s [%s]\n", nameLen, e.name, valueLen, e.value, marker, e.kind)
	}
}
