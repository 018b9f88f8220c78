package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/internal/ledger"
	"github.com/huangsam/seobench/schema"
	"github.com/spf13/cobra"
)

// ledgerCmd focused on the run ledger.
//
// Note: Ledger subcommands use minimal initialization (ledgerSetup) instead of
// the full sharedSetup used by run. This avoids resolving the nine input paths
// for simple ledger operations.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage the history of benchmark runs",
	Long: `Manage the optional run ledger that records every benchmark run.

When a backend is configured, each run stores:
- Run id, start time and output directory
- Validation verdict, row count and QA issue counts
- Issue counts per issue type and severity
- The engine options the run used

The ledger is never read by a run, so outputs stay reproducible.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show ledger statistics
  export  - Export recorded runs to JSON, CSV or Parquet
  migrate - Run database schema migrations
  clear   - Remove all recorded runs

Examples:
  # Check ledger status
  seobench ledger status --ledger-backend sqlite

  # Export for analysis in pandas/DuckDB
  seobench ledger export --ledger-backend sqlite --format parquet --output-file runs.parquet`,
}

// ledgerStatusCmd shows ledger status.
var ledgerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display ledger statistics and connection details",
	Long: `Show detailed information about the run ledger.

Displays:
- Backend type and connection status
- Total and blocked run counts
- Last and oldest run timestamps
- Row counts per table

Examples:
  seobench ledger status --ledger-backend sqlite
  SEOBENCH_LEDGER_BACKEND=postgresql SEOBENCH_LEDGER_DB_CONNECT="..." seobench ledger status`,
	PreRunE: ledgerSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := ledgerStore.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get ledger status", err)
		}
		ledger.PrintStatus(os.Stdout, status)
	},
}

// ledgerExportCmd exports recorded runs.
var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to JSON, CSV or Parquet",
	Long: `Export every recorded run, oldest first.

JSON and CSV go to stdout unless --output-file is set. Parquet always needs
--output-file.

Examples:
  seobench ledger export --ledger-backend sqlite
  seobench ledger export --ledger-backend sqlite --format csv --output-file runs.csv
  seobench ledger export --ledger-backend sqlite --format parquet --output-file runs.parquet`,
	PreRunE: ledgerSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		format, _ := cmd.Flags().GetString("format")
		outputFile, _ := cmd.Flags().GetString("output-file")
		if err := ledger.Export(rootCtx, ledgerStore, outputFile, format, os.Stdout); err != nil {
			contract.LogFatal("Failed to export ledger", err)
		}
	},
}

// ledgerMigrateCmd runs schema migrations.
var ledgerMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for the ledger",
	Long: `Apply or roll back ledger schema migrations.

Migrations run directly against the database and do not create tables first,
so they also work on a fresh database.

Examples:
  # Migrate to the latest version
  seobench ledger migrate --ledger-backend sqlite

  # Roll back everything
  seobench ledger migrate --ledger-backend sqlite --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		_, _, err := ledgerConfig()
		return err
	},
	Run: func(cmd *cobra.Command, _ []string) {
		targetVersion, _ := cmd.Flags().GetInt("target-version")
		if cfg.LedgerBackend == schema.NoneBackend {
			contract.LogFatal("Failed to migrate ledger", fmt.Errorf("no ledger configured: set --ledger-backend or SEOBENCH_LEDGER_BACKEND"))
		}
		if err := ledger.Migrate(cfg.LedgerBackend, cfg.LedgerDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to migrate ledger", err)
		}
	},
}

// ledgerClearCmd clears the ledger.
var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete every recorded run and its issue counts.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  seobench ledger export --ledger-backend sqlite --output-file backup.json
  seobench ledger clear --ledger-backend sqlite`,
	PreRunE: ledgerSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := ledgerStore.Clear(rootCtx); err != nil {
			contract.LogFatal("Failed to clear ledger", err)
		}
		fmt.Println("Ledger cleared successfully.")
	},
}
