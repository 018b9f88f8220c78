package cmd

import (
	"os"

	"github.com/huangsam/seobench/core"
	"github.com/huangsam/seobench/internal/contract"
	"github.com/spf13/cobra"
)

// runCmd runs one benchmark.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Benchmark page performance and write analysis and QA outputs",
	Long: `Load nine performance exports (L3M, MoM, YoY for services, locations and
supporting pages) plus a metadata/H1 export, classify every URL, validate the
inputs and write a run directory containing:

  analysis.csv   - one row per canonical URL with current, prior and deltas
  qa.csv         - every QA finding, errors first
  qa_summary.txt - issue counts and the validation verdict
  prompt.txt     - a narrative prompt for report writing

A bucket with QA errors is blocked: its metrics are left blank and the run
still completes. Configuration errors stop the run before anything is written.

Examples:
  # Use <window>_<bucket>.csv files and metadata.csv from a directory
  seobench run --input-dir exports/

  # Override one input and add a custom rule
  seobench run --input-dir exports/ --mom-location other/mom_loc.csv \
    --rules 'Pricing: url_contains=/pricing; title_contains=price'

  # Record the run in a SQLite ledger and export Prometheus metrics
  seobench run --input-dir exports/ --ledger-backend sqlite --metrics-file run.prom`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return sharedSetup(rootCtx, false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if _, err := core.Execute(rootCtx, cfg, contract.SystemClock{}, ledgerStore, os.Stdout); err != nil {
			contract.LogFatal("Benchmark run failed", err)
		}
	},
}
