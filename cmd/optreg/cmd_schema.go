package main

import (
	"fmt"
	"os"

	"optreg/cmd/optreg/optionschema"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the values document",
	Long: "Print a JSON Schema describing a values document for the loaded options:\n" +
		"one property per option with its label, default and allowed values.\n" +
		"Use --definition for the schema of an option definition instead.",
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var schema *jsonschema.Schema
		if def, _ := cmd.Flags().GetBool("definition"); def {
			schema = optionschema.DefinitionSchema()
		} else {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()
			schema = optionschema.ValuesSchema(s.reg)
		}

		data, err := optionschema.Marshal(schema)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "written to %s\n", output)
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	schemaCmd.Flags().Bool("definition", false, "print the schema of an option definition")
}
