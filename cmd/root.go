package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/internal/ledger"
	"github.com/huangsam/seobench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// ledgerStore is the run ledger opened by setup. It is nil until a command needs it.
var ledgerStore contract.LedgerStore

// startProfiling starts CPU and memory profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	// Memory profiling will be captured at the end
	contract.Logger.WithField("cpu", profile.Prefix+".cpu.prof").
		WithField("mem", profile.Prefix+".mem.prof").
		Info("Profiling enabled")
	return nil
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	contract.Logger.Infof("Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.", profile.Prefix)
	return nil
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "seobench",
	Short:              "Benchmark SEO page performance across time windows.",
	Long:               `Seobench turns nine performance exports and a metadata export into a per-URL benchmark with QA findings you can trust.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("SEOBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("output-root", contract.DefaultOutputRoot)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("export", schema.NoExport)
	viper.SetDefault("ledger-backend", schema.NoneBackend)
	viper.SetDefault("ledger-db-connect", "")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("color", "yes")
}

// setConfigFile points viper at --config or the default .seobench.yaml search path.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".seobench") // Name of config file (without extension)
	viper.SetConfigType("yaml")      // We'll use YAML format
	viper.AddConfigPath(".")         // Look in the current directory
	viper.AddConfigPath("$HOME")     // Look in the home directory
}

// loadConfigFile reads the config file when one exists.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the ledger.
// When allowMissingInputs is set, unresolved input paths are tolerated so that
// callers like the MCP server can supply them per request.
func sharedSetup(_ context.Context, allowMissingInputs bool) error {
	// Handle profiling flag
	if err := contract.ProcessProfilingConfig(profile, viper.GetString("profile")); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if profile.Enabled {
		if err := startProfiling(); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		if !allowMissingInputs || !errors.Is(err, contract.ErrMissingInput) {
			return err
		}
	}
	contract.ConfigureLogger(cfg.LogLevel, nil)

	// 4. Open the run ledger with validated config
	store, err := ledger.NewStore(cfg.LedgerBackend, cfg.LedgerDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	ledgerStore = store
	return nil
}

// ledgerConfig reads only the ledger settings, skipping input validation.
func ledgerConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend, err := contract.ParseLedgerBackend(viper.GetString("ledger-backend"))
	if err != nil {
		return "", "", err
	}
	connStr := viper.GetString("ledger-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	cfg.LedgerBackend = backend
	cfg.LedgerDBConnect = connStr
	return backend, connStr, nil
}

// ledgerSetup loads minimal configuration needed for ledger operations.
func ledgerSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := ledgerConfig()
	if err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return fmt.Errorf("no ledger configured: set --ledger-backend or SEOBENCH_LEDGER_BACKEND")
	}
	store, err := ledger.NewStore(backend, connStr)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	ledgerStore = store
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// CloseLedger closes the ledger if one was opened.
func CloseLedger() error {
	if ledgerStore == nil {
		return nil
	}
	return ledgerStore.Close()
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}
