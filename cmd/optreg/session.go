package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"optreg/cmd/optreg/option"
	"optreg/cmd/optreg/optionhcl"
	"optreg/cmd/optreg/optionstore"
	"optreg/cmd/optreg/optionyaml"
	"optreg/pkg/lib"

	"github.com/spf13/cobra"
)

// session is the state shared by every command of one invocation: the
// resolved configuration, the registry built from the schema files with
// stored values applied, and the open value store if SQLite is used.
// overrides holds the --set entries applied on top of the stored values.
type session struct {
	cfg       *Config
	reg       *option.Registry
	store     *optionstore.Store
	log       *slog.Logger
	overrides []string
}

// openSession loads configuration and builds the registry for cmd. The
// logger is attached to cmd's context.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := lib.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = lib.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	reg, err := buildRegistry(cfg.SchemaFiles)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, reg: reg, log: logger}
	if err := s.loadValues(ctx); err != nil {
		s.close()
		return nil, err
	}

	overrides, _ := cmd.Flags().GetStringArray("set")
	if err := applyOverrides(reg, overrides); err != nil {
		s.close()
		return nil, err
	}
	s.overrides = overrides
	return s, nil
}

// buildRegistry reads every schema file in order and registers its options.
// Files ending in .hcl use the HCL codec, everything else YAML.
func buildRegistry(files []string) (*option.Registry, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf(
			"no schema files found: add *.yml or *.hcl files to ~/.config/%s/schema/, "+
				"set $%s, or use --schema",
			appName, envSchema,
		)
	}

	reg := option.NewRegistry()
	for _, f := range files {
		defs, err := readSchemaFile(f)
		if err != nil {
			return nil, fmt.Errorf("schema file %s: %w", f, err)
		}
		for _, d := range defs {
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("schema file %s: phase=register path=%s: %w", f, d.Name, err)
			}
		}
	}
	return reg, nil
}

func readSchemaFile(path string) ([]option.Definition, error) {
	if filepath.Ext(path) == ".hcl" {
		return optionhcl.ParseFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return optionyaml.Parse(data)
}

func (s *session) loadValues(ctx context.Context) error {
	switch s.cfg.Store {
	case storeSQLite:
		store, err := optionstore.Open(ctx, s.cfg.DBPath)
		if err != nil {
			return err
		}
		s.store = store
		n, err := store.Load(ctx, s.reg)
		if err != nil {
			return fmt.Errorf("database %s: %w", s.cfg.DBPath, err)
		}
		s.log.Debug("values loaded", "store", storeSQLite, "count", n)
		return nil
	default:
		data, err := os.ReadFile(s.cfg.ValuesFile)
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("no values file yet", "path", s.cfg.ValuesFile)
			return nil
		}
		if err != nil {
			return fmt.Errorf("values file %s: %w", s.cfg.ValuesFile, err)
		}
		if err := optionyaml.ApplyValues(s.reg, data); err != nil {
			return fmt.Errorf("values file %s: %w", s.cfg.ValuesFile, err)
		}
		s.log.Debug("values loaded", "store", storeYAML, "path", s.cfg.ValuesFile)
		return nil
	}
}

// save persists the current values to the configured store. Values forced
// with --set would be written along with the command's own changes, so saving
// is refused while any are in effect.
func (s *session) save(ctx context.Context) error {
	if len(s.overrides) > 0 {
		return usageErrorf("--set values only last for this invocation; run without --set to save changes")
	}
	if s.store != nil {
		return s.store.Save(ctx, s.reg)
	}
	data, err := optionyaml.MarshalValues(s.reg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.ValuesFile), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", s.cfg.ValuesFile, err)
	}
	if err := os.WriteFile(s.cfg.ValuesFile, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.cfg.ValuesFile, err)
	}
	s.log.Debug("values saved", "path", s.cfg.ValuesFile)
	return nil
}

func (s *session) close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.Warn("closing value store", "err", err)
	}
	s.store = nil
}

// applyOverrides applies --set name=value pairs on top of stored values.
func applyOverrides(reg *option.Registry, overrides []string) error {
	for _, o := range overrides {
		name, raw, ok := strings.Cut(o, "=")
		if !ok || name == "" {
			return usageErrorf("--set %q: expected name=value", o)
		}
		if err := reg.SetString(name, raw); err != nil {
			return fmt.Errorf("--set %s: %w", name, err)
		}
	}
	return nil
}
