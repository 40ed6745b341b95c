package main

import (
	"errors"
	"fmt"
	"strings"

	"optreg/cmd/optreg/optionform"

	"github.com/charmbracelet/huh"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [NAME ...]",
	Short: "Edit option values in an interactive form",
	Long: "Edit option values in an interactive form. Without arguments every option\n" +
		"is shown; otherwise only the named ones. Submitted values are validated\n" +
		"again before anything is saved.",
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeOptionNames(cmd, nil, toComplete)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		for _, name := range args {
			if _, ok := s.reg.Lookup(name); !ok {
				return fmt.Errorf("%q not found\navailable: %s", name, strings.Join(s.reg.Names(), ", "))
			}
		}
		form := optionform.New(s.reg)
		if len(args) > 0 {
			form = optionform.NewFor(s.reg, args...)
		}
		return runForm(cmd, s, form)
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Fuzzy-find an option and edit it",
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		names := s.reg.Names()
		if len(names) == 0 {
			return errors.New("no options defined")
		}
		idx, err := fuzzyfinder.Find(
			names,
			func(i int) string {
				return names[i]
			},
			fuzzyfinder.WithPromptString("Select option: "),
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 {
					return ""
				}
				body, _ := describeOption(s.reg, names[i])
				return body
			}),
		)
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			fmt.Fprintln(cmd.ErrOrStderr(), "no option selected")
			return nil
		}
		if err != nil {
			return err
		}
		return runForm(cmd, s, optionform.NewFor(s.reg, names[idx]))
	},
}

// runForm shows form, applies the submission and saves when something
// changed. Aborting the form is not an error.
func runForm(cmd *cobra.Command, s *session, form *optionform.Form) error {
	ctx := cmd.Context()
	if err := form.Run(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "aborted, nothing changed")
			return nil
		}
		return err
	}

	changed, err := form.Apply()
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "nothing changed")
		return nil
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "updated %s\n", strings.Join(changed, ", "))
	return nil
}
