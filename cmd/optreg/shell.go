package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"optreg/cmd/optreg/option"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Inspect and change options in an interactive shell",
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		ctx := cmd.Context()
		sh := &optionShell{
			reg:  s.reg,
			save: func() error { return s.save(ctx) },
			out:  cmd.OutOrStdout(),
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          appName + "> ",
			HistoryFile:     filepath.Join(s.cfg.ConfigDir, "shell_history"),
			AutoComplete:    sh.completer(),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("starting shell: %w", err)
		}
		defer rl.Close()
		sh.out = rl.Stdout()

		fmt.Fprintf(sh.out, "%d options loaded. Type `help` for commands.\n", s.reg.Len())
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					break
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}

			quit, err := sh.exec(line)
			if err != nil {
				fmt.Fprintln(sh.out, styleErr.Render("Error: "+err.Error()))
			}
			if quit {
				break
			}
		}
		if sh.dirty {
			fmt.Fprintln(cmd.ErrOrStderr(), "unsaved changes discarded")
		}
		return nil
	},
}

// shellCommands maps command names to their help text, in display order.
var shellCommands = []struct {
	name, args, help string
}{
	{"list", "", "list all options"},
	{"get", "NAME", "print the current value"},
	{"set", "NAME VALUE", "validate and store a value"},
	{"reset", "NAME", "restore the default"},
	{"show", "NAME", "show definition and value"},
	{"save", "", "persist current values"},
	{"help", "", "show this help"},
	{"exit", "", "leave the shell"},
}

// optionShell executes one shell line at a time against a registry.
type optionShell struct {
	reg   *option.Registry
	save  func() error
	out   io.Writer
	dirty bool
}

// exec runs one line. It reports whether the shell should stop.
func (sh *optionShell) exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help":
		for _, c := range shellCommands {
			fmt.Fprintf(sh.out, "  %-18s %s\n", strings.TrimSpace(c.name+" "+c.args), c.help)
		}
		return false, nil
	case "list":
		printEntries(sh.out, collectEntries(sh.reg))
		return false, nil
	case "save":
		if err := sh.save(); err != nil {
			return false, err
		}
		sh.dirty = false
		fmt.Fprintln(sh.out, "saved")
		return false, nil
	case "get", "reset", "show":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s NAME", cmd)
		}
		return false, sh.execNamed(cmd, args[0])
	case "set":
		if len(args) < 2 {
			return false, errors.New("usage: set NAME VALUE")
		}
		// The value is the rest of the line so text values may contain spaces.
		raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "set"))
		raw = strings.TrimSpace(strings.TrimPrefix(raw, args[0]))
		if err := sh.reg.SetString(args[0], raw); err != nil {
			return false, err
		}
		sh.dirty = true
		v, _ := sh.reg.Get(args[0])
		fmt.Fprintf(sh.out, "%s = %s\n", args[0], option.Format(v))
		return false, nil
	}
	return false, fmt.Errorf("unknown command %q, type `help` for commands", cmd)
}

func (sh *optionShell) execNamed(cmd, name string) error {
	switch cmd {
	case "get":
		v, err := sh.reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, option.Format(v))
	case "reset":
		if err := sh.reg.Reset(name); err != nil {
			return err
		}
		sh.dirty = true
		v, _ := sh.reg.Get(name)
		fmt.Fprintf(sh.out, "%s reset to %s\n", name, option.Format(v))
	case "show":
		body, err := describeOption(sh.reg, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, body)
	}
	return nil
}

func (sh *optionShell) completer() *readline.PrefixCompleter {
	names := func(string) []string { return sh.reg.Names() }
	values := func(line string) []string {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil
		}
		d, ok := sh.reg.Lookup(fields[1])
		if !ok {
			return nil
		}
		return valueCandidates(d)
	}

	var items []readline.PrefixCompleterInterface
	for _, c := range shellCommands {
		switch c.name {
		case "get", "reset", "show":
			items = append(items, readline.PcItem(c.name, readline.PcItemDynamic(names)))
		case "set":
			items = append(items, readline.PcItem(c.name, readline.PcItemDynamic(names, readline.PcItemDynamic(values))))
		default:
			items = append(items, readline.PcItem(c.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
