// Package cmd defines the command-line interface for seobench.
package cmd

import (
	"fmt"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the rules subcommands to the parent rules command
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesCmd.AddCommand(rulesExportCmd)

	// Add the ledger subcommands to the parent ledger command
	ledgerCmd.AddCommand(ledgerStatusCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	ledgerCmd.AddCommand(ledgerMigrateCmd)
	ledgerCmd.AddCommand(ledgerClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress the terminal summary")
	rootCmd.PersistentFlags().String("ledger-backend", string(schema.NoneBackend), "Run ledger backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("ledger-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().String("input-dir", "", "Directory holding <window>_<bucket>.csv exports and metadata.csv")
	for _, w := range schema.AllWindows {
		for _, b := range schema.AllBuckets {
			runCmd.Flags().String(schema.InputKey(w, b), "", fmt.Sprintf("Path to the %s %s performance export", w, b))
		}
	}
	runCmd.Flags().String("metadata", "", "Path to the metadata/H1 export")
	runCmd.Flags().String("rules", "", "Custom classification rules, one 'Name: key=v1,v2; key=v' rule per line")
	runCmd.Flags().String("rules-file", "", "Path to a DSL or YAML rules file")
	runCmd.Flags().String("output-root", contract.DefaultOutputRoot, "Directory under which run directories are created")
	runCmd.Flags().String("infinity-token", "+∞", "Relative delta shown when prior is 0 and current is positive")
	runCmd.Flags().Int("precision", contract.DefaultPrecision, "Decimals in relative deltas (1-3)")
	runCmd.Flags().String("note-separator", "; ", "Separator between Data Coverage Notes entries")
	runCmd.Flags().String("export", string(schema.NoExport), "Extra run export: none or json or parquet")
	runCmd.Flags().String("metrics-file", "", "Optional path to write Prometheus run metrics to")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Command-local flags are read directly to keep them out of the shared viper keys
	rulesExportCmd.Flags().String("format", "dsl", "Export format: dsl or yaml or json")
	rulesExportCmd.Flags().String("output-file", "", "Optional path to write rules to")
	ledgerExportCmd.Flags().String("format", "json", "Export format: json or csv or parquet")
	ledgerExportCmd.Flags().String("output-file", "", "Optional path to write runs to (required for parquet)")
	ledgerMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
