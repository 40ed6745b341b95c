package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// appName names the config directory, the env var prefix and the shell prompt.
const appName = "optreg"

var (
	envPrefix    = strings.ToUpper(appName)
	envConfigDir = envPrefix + "_CONFIG_DIR"
	envSchema    = envPrefix + "_SCHEMA"
)

const (
	storeYAML   = "yaml"
	storeSQLite = "sqlite"
)

// Config holds the host's own settings.
type Config struct {
	ConfigDir   string   `mapstructure:"-"`
	SchemaFiles []string `mapstructure:"schema_files"`
	ValuesFile  string   `mapstructure:"values_file" validate:"required_if=Store yaml"`
	Store       string   `mapstructure:"store" validate:"required,oneof=yaml sqlite"`
	DBPath      string   `mapstructure:"db_path" validate:"required_if=Store sqlite"`
	LogLevel    string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat   string   `mapstructure:"log_format" validate:"required,oneof=text json"`
}

// resolveConfigDir picks the directory holding config.yaml, schema/ and the
// default value files. $OPTREG_CONFIG_DIR wins, then $XDG_CONFIG_HOME/optreg,
// then ~/.config/optreg.
func resolveConfigDir() (string, error) {
	if dir := os.Getenv(envConfigDir); dir != "" {
		return dir, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving config directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"values":     "values_file",
	"store":      "store",
	"db":         "db_path",
	"log-level":  "log_level",
	"log-format": "log_format",
}

// loadConfig layers defaults, <configDir>/config.yaml, OPTREG_* environment
// variables and command-line flags, in increasing priority.
func loadConfig(flags *pflag.FlagSet) (*Config, error) {
	configDir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("values_file", filepath.Join(configDir, "values.yaml"))
	v.SetDefault("store", storeYAML)
	v.SetDefault("db_path", filepath.Join(configDir, "values.db"))
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	configFile := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.ConfigDir = configDir

	var flagFiles []string
	if flags != nil {
		flagFiles, _ = flags.GetStringArray("schema")
	}
	cfg.SchemaFiles, err = resolveSchemaFiles(configDir, cfg.SchemaFiles, flagFiles)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (got %q)", fe.Field(), fe.Tag(), fmt.Sprint(fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// resolveSchemaFiles returns all schema files to load.
// Order: configDir/schema/* → $OPTREG_SCHEMA → config file → flagFiles
// A missing schema directory is silently skipped; explicitly provided paths
// are kept as-is (errors surface at read time with a clear message).
func resolveSchemaFiles(configDir string, cfgFiles, flagFiles []string) ([]string, error) {
	files, err := globSchema(filepath.Join(configDir, "schema"))
	if err != nil {
		return nil, err
	}
	files = append(files, pathList(os.Getenv(envSchema))...)
	files = append(files, cfgFiles...)
	files = append(files, flagFiles...)
	return files, nil
}

// globSchema lists the schema files directly inside dir in name order. A
// missing dir yields no files.
func globSchema(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch filepath.Ext(name) {
		case ".yml", ".yaml", ".hcl":
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// pathList splits a $PATH-style list, dropping empty entries.
func pathList(s string) []string {
	return slices.DeleteFunc(filepath.SplitList(s), func(p string) bool { return p == "" })
}
