package main

import (
	"fmt"
	"strings"

	"optreg/cmd/optreg/option"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:               "get NAME",
	Short:             "Print the current value of an option",
	Args:              exactArgs(1),
	ValidArgsFunction: completeOptionNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		v, err := s.reg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), option.Format(v))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:               "set NAME VALUE",
	Short:             "Validate and store a new value for an option",
	Args:              exactArgs(2),
	ValidArgsFunction: completeOptionValue,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.reg.SetString(args[0], args[1]); err != nil {
			return err
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		v, _ := s.reg.Get(args[0])
		s.log.Debug("option set", "option", args[0], "value", option.Format(v))
		fmt.Fprintf(cmd.ErrOrStderr(), "%s = %s\n", args[0], option.Format(v))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:               "reset NAME",
	Short:             "Restore the default value of an option",
	Args:              exactArgs(1),
	ValidArgsFunction: completeOptionNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.reg.Reset(args[0]); err != nil {
			return err
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		v, _ := s.reg.Get(args[0])
		s.log.Debug("option reset", "option", args[0])
		fmt.Fprintf(cmd.ErrOrStderr(), "%s reset to %s\n", args[0], option.Format(v))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:               "show NAME",
	Short:             "Show an option's definition and current value",
	Args:              exactArgs(1),
	ValidArgsFunction: completeOptionNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		card, err := renderCard(s.reg, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), card)
		return nil
	},
}

// describeOption renders the definition and current value of name as plain
// labelled lines.
func describeOption(r *option.Registry, name string) (string, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", option.ErrUnknownOption, name)
	}
	cur, _ := r.Get(name)

	var sb strings.Builder
	line := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s %s\n", styleKey.Render(fmt.Sprintf("%-9s", key)), value)
		}
	}
	line("name", d.Name)
	line("kind", string(d.Kind))
	line("value", displayValue(d, cur))
	line("default", displayValue(d, d.DefaultValue))
	if len(d.Choices) > 0 {
		choices := make([]string, len(d.Choices))
		for i, c := range d.Choices {
			choices[i] = option.Format(c.Value) + "=" + c.Label
		}
		line("choices", strings.Join(choices, ", "))
		line("columns", fmt.Sprint(d.DisplayColumns))
	}
	if d.Min != nil {
		line("min", fmt.Sprint(*d.Min))
	}
	if d.Max != nil {
		line("max", fmt.Sprint(*d.Max))
	}
	if d.Description != "" {
		sb.WriteString("\n" + styleMuted.Render(d.Description) + "\n")
	}
	if d.Notes != "" {
		sb.WriteString("\n" + styleNote.Render(d.Notes) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func renderCard(r *option.Registry, name string) (string, error) {
	body, err := describeOption(r, name)
	if err != nil {
		return "", err
	}
	d, _ := r.Lookup(name)
	title := d.Label
	if title == "" {
		title = d.Name
	}
	return styleCard.Render(styleTitle.Render(title) + "\n\n" + body), nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("%s takes no arguments, got %d", cmd.CommandPath(), len(args))
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s expects %d argument(s), got %d\nusage: %s", cmd.CommandPath(), n, len(args), cmd.UseLine())
		}
		return nil
	}
}

// completeOptionNames provides shell completion of option names.
func completeOptionNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, ok := completionRegistry(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveError
	}
	return matchPrefix(reg.Names(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeOptionValue completes the option name, then the declared choice
// values (or true/false) of that option.
func completeOptionValue(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeOptionNames(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, ok := completionRegistry(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveError
	}
	d, ok := reg.Lookup(args[0])
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return matchPrefix(valueCandidates(d), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completionRegistry(cmd *cobra.Command) (*option.Registry, bool) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return nil, false
	}
	reg, err := buildRegistry(cfg.SchemaFiles)
	if err != nil {
		return nil, false
	}
	return reg, true
}

// valueCandidates lists the values worth suggesting for d.
func valueCandidates(d option.Definition) []string {
	switch d.Kind {
	case option.KindChoice:
		out := make([]string, len(d.Choices))
		for i, c := range d.Choices {
			out[i] = option.Format(c.Value)
		}
		return out
	case option.KindBoolean:
		return []string{"true", "false"}
	}
	return nil
}

func matchPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
