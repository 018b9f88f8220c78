// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the seobench MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, ledger contract.LedgerStore, clock contract.Clock) *server.MCPServer {
	s := server.NewMCPServer(
		"SEO Benchmark Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		ledger:  ledger,
		clock:   clock,
	}

	// --- 1. Tool: run_benchmark ---
	s.AddTool(mcp.NewTool("run_benchmark",
		mcp.WithDescription("Run the SEO benchmark over nine performance CSV exports plus metadata and write the analysis and QA outputs."),
		mcp.WithString("input_dir", mcp.Description("Directory holding <window>_<bucket>.csv files and metadata.csv (defaults to the server configuration).")),
		mcp.WithString("metadata", mcp.Description("Path to the metadata/H1 export (overrides input_dir).")),
		mcp.WithString("rules", mcp.Description("Custom classification rules, one 'Name: key=v1,v2; key=v' rule per line.")),
		mcp.WithString("output_root", mcp.Description("Directory under which the run directory is created.")),
		mcp.WithString("infinity_token", mcp.Description("Relative delta shown when prior is 0 and current is positive.")),
		mcp.WithNumber("precision", mcp.Description("Decimals in relative deltas (1-3).")),
	), h.handleRunBenchmark)

	// --- 2. Tool: parse_rules ---
	s.AddTool(mcp.NewTool("parse_rules",
		mcp.WithDescription("Parse custom classification rules and return them as structured records."),
		mcp.WithString("rules", mcp.Description("Rule text to parse."), mcp.Required()),
	), h.handleParseRules)

	// --- 3. Tool: canonicalize_url ---
	s.AddTool(mcp.NewTool("canonicalize_url",
		mcp.WithDescription("Return the canonical join key used to match URLs across exports."),
		mcp.WithString("urls", mcp.Description("One or more URLs separated by newlines."), mcp.Required()),
	), h.handleCanonicalizeURL)

	return s
}

// StartMCPServer starts the seobench MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, ledger contract.LedgerStore) error {
	s := NewMCPServer(baseCfg, ledger, contract.SystemClock{})
	return server.ServeStdio(s)
}
