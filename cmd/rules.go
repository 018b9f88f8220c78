package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/seobench/core/rules"
	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/internal/outwriter"
	"github.com/huangsam/seobench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadRules reads rules from a positional file, --rules-file or --rules, in that order.
func loadRules(args []string) ([]schema.Rule, error) {
	if err := loadConfigFile(); err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return rules.LoadFile(args[0])
	}
	if path := viper.GetString("rules-file"); path != "" {
		return rules.LoadFile(path)
	}
	if text := viper.GetString("rules"); text != "" {
		return rules.Parse(text)
	}
	return nil, errors.New("no rules given: pass a file, --rules-file or --rules")
}

// rulesCmd focused on custom classification rules.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate and convert custom classification rules",
	Long: `Work with the custom rules that override heuristic bucket inference.

Rules are written one per line:

  Blog: url_contains=/blog/,/insights/; title_contains=blog; exclude=/tag/

Every listed clause must match (substring, case-insensitive) and no exclude
term may appear. The rule name becomes the inferred bucket when it names one
(service, location, supporting); otherwise the URL falls back to heuristics.
Files ending in .yaml or .yml hold the same rules as a YAML list.

Subcommands:
  check  - Parse rules and print them as a table
  export - Convert rules to DSL, YAML or JSON

Examples:
  # Check a rules file before a run
  seobench rules check rules.txt

  # Convert DSL rules to YAML
  seobench rules export --rules-file rules.txt --format yaml`,
}

// rulesCheckCmd parses rules and reports the first error with its position.
var rulesCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse rules and print them",
	Long: `Parse custom rules and print one table row per rule.

Malformed rules are reported with line and column so they can be fixed
before a run is attempted.

Examples:
  seobench rules check rules.txt
  SEOBENCH_RULES='Blog: url_contains=/blog/' seobench rules check`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		list, err := loadRules(args)
		if err != nil {
			contract.LogFatal("Invalid rules", err)
		}
		if err := outwriter.NewOutWriter().WriteRulesTable(os.Stdout, list); err != nil {
			contract.LogFatal("Failed to print rules", err)
		}
		fmt.Printf("%d rules OK.\n", len(list))
	},
}

// rulesExportCmd converts rules between formats.
var rulesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Convert rules to DSL, YAML or JSON",
	Long: `Parse custom rules and write them in another format.

Formats:
  dsl  - one rule per line, canonical clause order (default)
  yaml - a 'rules:' list, accepted by --rules-file
  json - an array of rule objects

Examples:
  seobench rules export rules.txt --format yaml --output-file rules.yaml
  seobench rules export rules.yaml --format dsl`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		list, err := loadRules(args)
		if err != nil {
			contract.LogFatal("Invalid rules", err)
		}
		format, _ := cmd.Flags().GetString("format")
		outputFile, _ := cmd.Flags().GetString("output-file")
		if err := outwriter.NewOutWriter().WriteRules(outputFile, format, list); err != nil {
			contract.LogFatal("Failed to export rules", err)
		}
	},
}
