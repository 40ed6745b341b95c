package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed example.yml
var exampleYAML []byte

//go:embed example.hcl
var exampleHCL []byte

//go:embed config.example.yaml
var exampleConfigYAML []byte

const initSchemaHeader = "# optreg schema\n" +
	"# ─────────────────────────────────────────────────────────────────────────────\n" +
	"# Declare your options here. Every *.yml, *.yaml and *.hcl file in this\n" +
	"# directory is loaded in name order.\n" +
	"# Quick reference:  optreg example\n" +
	"# HCL form:         optreg example --hcl\n" +
	"# ─────────────────────────────────────────────────────────────────────────────\n\n"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialise the optreg config directory with starter files",
	Long: "Create the optreg config directory and populate it with a starter schema\n" +
		"declaring a single `useLoginHook` option and a commented config file.\n\n" +
		"Files created:\n" +
		"  <config>/schema/options.yml   option declarations\n" +
		"  <config>/config.yaml          host settings\n\n" +
		"The default config directory follows the same priority as every command:\n" +
		"  $OPTREG_CONFIG_DIR > $XDG_CONFIG_HOME/optreg > ~/.config/optreg",
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		dir, _ := cmd.Flags().GetString("dir")

		if dir == "" {
			var err error
			dir, err = resolveConfigDir()
			if err != nil {
				return err
			}
		}

		files, err := initConfigDir(dir, force)
		if err != nil {
			return err
		}

		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "initialised %s\n", dir)
		for _, f := range files {
			fmt.Fprintf(w, "  %s\n", f)
		}
		fmt.Fprintf(w, "\nRun `%s list` to see available options.\n", appName)
		return nil
	},
}

// initConfigDir writes the starter files under dir and returns their paths.
func initConfigDir(dir string, force bool) ([]string, error) {
	schemaDir := filepath.Join(dir, "schema")
	if err := os.MkdirAll(schemaDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", schemaDir, err)
	}

	schemaFile := filepath.Join(schemaDir, "options.yml")
	configFile := filepath.Join(dir, "config.yaml")

	if err := writeInitFile(schemaFile, initSchemaHeader, exampleYAML, force); err != nil {
		return nil, err
	}
	if err := writeInitFile(configFile, "", exampleConfigYAML, force); err != nil {
		return nil, err
	}
	return []string{schemaFile, configFile}, nil
}

func writeInitFile(path, header string, content []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if header != "" {
		fmt.Fprint(f, header)
	}
	_, err = f.Write(content)
	return err
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print a reference schema covering every option kind",
	Long: "Print an optreg schema that declares one option of every kind.\n" +
		"By default the YAML form is printed. Use --hcl for the HCL form.\n" +
		"Use --output to write to a file instead of stdout.",
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content := exampleYAML
		if useHCL, _ := cmd.Flags().GetBool("hcl"); useHCL {
			content = exampleHCL
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err := cmd.OutOrStdout().Write(content)
			return err
		}
		if err := os.WriteFile(output, content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "written to %s\n", output)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing files")
	initCmd.Flags().String("dir", "", "target config directory (default: auto-resolved)")

	exampleCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	exampleCmd.Flags().Bool("hcl", false, "print the HCL form instead of YAML")
}
