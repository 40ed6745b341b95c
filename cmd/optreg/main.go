package main

import (
	"optreg/pkg/lib"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Typed configuration option registry",
	Long: "Typed configuration option registry\n\n" +
		"Options are declared in YAML or HCL schema files and their values are kept\n" +
		"in a YAML values file or a SQLite database. Option names are\n" +
		"auto-completable via shell completion (Tab).",
}

func main() {
	rootCmd.AddCommand(listCmd, getCmd, setCmd, resetCmd, showCmd)
	rootCmd.AddCommand(editCmd, pickCmd, browseCmd, shellCmd)
	rootCmd.AddCommand(schemaCmd, initCmd, exampleCmd, watchCmd)

	registerFlags(rootCmd.PersistentFlags())

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err: err}
	})
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		lib.Exit(err)
	}
}

// registerFlags declares the flags shared by every command.
func registerFlags(pf *pflag.FlagSet) {
	pf.StringArrayP("schema", "s", nil,
		"schema file, YAML or HCL (repeatable; default: ~/.config/"+appName+"/schema/*)")
	pf.String("values", "", "YAML values file (default: <config>/values.yaml)")
	pf.String("store", "", "value store: yaml or sqlite (default: yaml)")
	pf.String("db", "", "SQLite database path (default: <config>/values.db)")
	pf.String("log-level", "", "log level: debug, info, warn or error (default: warn)")
	pf.String("log-format", "", "log format: text or json (default: text)")
	pf.StringArray("set", nil, "override a value for this invocation without saving it, name=value (repeatable)")
}
