package contract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/huangsam/seobench/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultOutputRoot = "seobench-out"
	DefaultPrecision  = 1
	MaxPrecision      = 3
	DefaultLogLevel   = "info"
)

// RunIDFormat is the layout of run identifiers (YYYYMMDD-HHMMSS).
const RunIDFormat = "20060102-150405"

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a benchmark run.
// This struct is the "final, validated" config.
type Config struct {
	Run schema.RunConfig

	RulesFile string // Optional DSL or YAML rules file, exclusive with Run.CustomRulesText

	Export      schema.ExportMode
	MetricsFile string // Optional Prometheus textfile path

	LedgerBackend   schema.DatabaseBackend
	LedgerDBConnect string // Please use env var as this is plaintext

	LogLevel  logrus.Level
	Width     int // Terminal width override (0 = auto-detect)
	UseColors bool
	Quiet     bool // Suppress the terminal summary
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	InputDir string `mapstructure:"input-dir"`
	Metadata string `mapstructure:"metadata"`

	schema.InputPaths `mapstructure:",squash"`

	Rules     string `mapstructure:"rules"`
	RulesFile string `mapstructure:"rules-file"`

	OutputRoot    string `mapstructure:"output-root"`
	InfinityToken string `mapstructure:"infinity-token"`
	Precision     int    `mapstructure:"precision"`
	NoteSeparator string `mapstructure:"note-separator"`

	Export      string `mapstructure:"export"`
	MetricsFile string `mapstructure:"metrics-file"`

	LedgerBackend   string `mapstructure:"ledger-backend"`
	LedgerDBConnect string `mapstructure:"ledger-db-connect"`

	LogLevel string `mapstructure:"log-level"`
	Width    int    `mapstructure:"width"`
	Color    string `mapstructure:"color"`
	Quiet    bool   `mapstructure:"quiet"`
}

// ProcessProfilingConfig enables profiling when prefix is set.
func ProcessProfilingConfig(profile *ProfileConfig, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		profile.Enabled = false
		return nil
	}
	if strings.ContainsAny(prefix, "\x00") {
		return fmt.Errorf("invalid profile prefix %q", prefix)
	}
	profile.Enabled = true
	profile.Prefix = prefix
	return nil
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEngineOptions(cfg, input); err != nil {
		return err
	}
	if err := processRules(cfg, input); err != nil {
		return err
	}
	if err := validateLedgerConfig(cfg, input); err != nil {
		return err
	}
	return ResolveInputPaths(cfg, input)
}

// validateSimpleInputs processes and validates the presentation and export fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.MetricsFile = strings.TrimSpace(input.MetricsFile)
	cfg.Width = input.Width
	cfg.Quiet = input.Quiet

	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	levelStr := input.LogLevel
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", input.LogLevel, err)
	}
	cfg.LogLevel = level

	exportStr := strings.ToLower(strings.TrimSpace(input.Export))
	if exportStr == "" {
		exportStr = string(schema.NoExport)
	}
	cfg.Export = schema.ExportMode(exportStr)
	if _, ok := schema.ValidExportModes[cfg.Export]; !ok {
		return fmt.Errorf("invalid export format '%s'. must be none, json, parquet", input.Export)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// processEngineOptions fills metric rendering options, starting from struct defaults.
func processEngineOptions(cfg *Config, input *ConfigRawInput) error {
	opts := schema.EngineOptions{
		InfinityToken: input.InfinityToken,
		Precision:     input.Precision,
		NoteSeparator: input.NoteSeparator,
	}
	if err := defaults.Set(&opts); err != nil {
		return fmt.Errorf("failed to apply engine defaults: %w", err)
	}
	if opts.Precision < 1 || opts.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, opts.Precision)
	}
	cfg.Run.Options = opts

	cfg.Run.OutputRoot = strings.TrimSpace(input.OutputRoot)
	if cfg.Run.OutputRoot == "" {
		cfg.Run.OutputRoot = DefaultOutputRoot
	}
	return nil
}

// processRules records where custom rules come from. Parsing happens at run time so
// that DSL errors surface with line and column.
func processRules(cfg *Config, input *ConfigRawInput) error {
	cfg.Run.CustomRulesText = input.Rules
	cfg.RulesFile = strings.TrimSpace(input.RulesFile)
	if cfg.RulesFile != "" && strings.TrimSpace(input.Rules) != "" {
		return fmt.Errorf("--rules and --rules-file are mutually exclusive")
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("ledger-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("ledger-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseLedgerBackend normalizes a backend name, treating blank as none.
func ParseLedgerBackend(s string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if backend == "" {
		return schema.NoneBackend, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid ledger backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateLedgerConfig validates the run ledger backend configuration.
func validateLedgerConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseLedgerBackend(input.LedgerBackend)
	if err != nil {
		return err
	}
	cfg.LedgerBackend = backend
	cfg.LedgerDBConnect = input.LedgerDBConnect
	return ValidateDatabaseConnectionString(cfg.LedgerBackend, cfg.LedgerDBConnect)
}

// ResolveInputPaths fills the nine performance paths and the metadata path,
// using --input-dir defaults for anything not set explicitly.
func ResolveInputPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.Run.InputPaths = input.InputPaths
	cfg.Run.MetadataPath = strings.TrimSpace(input.Metadata)
	dir := strings.TrimSpace(input.InputDir)

	var missing []string
	for _, w := range schema.AllWindows {
		for _, b := range schema.AllBuckets {
			path := strings.TrimSpace(cfg.Run.InputPaths.Path(w, b))
			if path == "" && dir != "" {
				path = filepath.Join(dir, schema.DefaultInputFile(w, b))
			}
			cfg.Run.InputPaths.Set(w, b, path)
			if path == "" {
				missing = append(missing, "--"+schema.InputKey(w, b))
			}
		}
	}
	if cfg.Run.MetadataPath == "" && dir != "" {
		cfg.Run.MetadataPath = filepath.Join(dir, schema.DefaultMetadataFile)
	}
	if cfg.Run.MetadataPath == "" {
		missing = append(missing, "--metadata")
	}

	if len(missing) > 0 {
		return &ConfigError{
			Input: strings.Join(missing, ", "),
			Err:   fmt.Errorf("%w: set them explicitly or pass --input-dir", ErrMissingInput),
		}
	}
	return nil
}
