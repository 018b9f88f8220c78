package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/seobench/core"
	"github.com/huangsam/seobench/core/load"
	"github.com/huangsam/seobench/core/rules"
	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	ledger  contract.LedgerStore
	clock   contract.Clock
}

func (h *toolHandler) handleRunBenchmark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Quiet = true

	raw := &contract.ConfigRawInput{
		InputDir:   request.GetString("input_dir", ""),
		Metadata:   request.GetString("metadata", cfg.Run.MetadataPath),
		InputPaths: cfg.Run.InputPaths,
	}
	if raw.InputDir != "" {
		// A directory replaces configured file paths unless metadata was given explicitly.
		raw.InputPaths = schema.InputPaths{}
		raw.Metadata = request.GetString("metadata", "")
	}
	if err := contract.ResolveInputPaths(cfg, raw); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run parameters: %v", err)), nil
	}

	if r := request.GetString("rules", ""); r != "" {
		cfg.Run.CustomRulesText = r
		cfg.RulesFile = ""
	}
	if root := request.GetString("output_root", ""); root != "" {
		cfg.Run.OutputRoot = root
	}
	if token := request.GetString("infinity_token", ""); token != "" {
		cfg.Run.Options.InfinityToken = token
	}
	if p := request.GetInt("precision", 0); p != 0 {
		cfg.Run.Options.Precision = p
	}

	outcome, err := core.Execute(ctx, cfg, h.clock, h.ledger, io.Discard)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("benchmark run failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(outcome.Result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

type parsedRules struct {
	Rules     []schema.Rule `json:"rules"`
	Formatted string        `json:"formatted"`
}

func (h *toolHandler) handleParseRules(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := rules.Parse(request.GetString("rules", ""))
	if err != nil {
		var pe *rules.ParseError
		if errors.As(err, &pe) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid rules at line %d, column %d: %s", pe.Line, pe.Column, pe.Msg)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("invalid rules: %v", err)), nil
	}
	if list == nil {
		list = []schema.Rule{}
	}

	jsonData, _ := json.MarshalIndent(parsedRules{Rules: list, Formatted: rules.Format(list)}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

type canonicalURL struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
}

func (h *toolHandler) handleCanonicalizeURL(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var results []canonicalURL
	for _, line := range strings.Split(request.GetString("urls", ""), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		results = append(results, canonicalURL{Raw: line, Canonical: load.CanonicalURL(line)})
	}
	if len(results) == 0 {
		return mcp.NewToolResultError("urls is required"), nil
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
