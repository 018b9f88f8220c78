package cmd

import (
	"github.com/huangsam/seobench/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the seobench MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents run benchmarks,
check custom rules and canonicalize URLs through standard tools.

Input paths are optional here; each run_benchmark call may supply its own.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Logs go to stderr so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, true)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, ledgerStore)
	},
}
