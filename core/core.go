// Package core runs the benchmark pipeline: load, classify, validate, synthesize and report.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/creasty/defaults"
	"github.com/google/uuid"
	"github.com/huangsam/seobench/core/classify"
	"github.com/huangsam/seobench/core/load"
	"github.com/huangsam/seobench/core/qa"
	"github.com/huangsam/seobench/core/rules"
	"github.com/huangsam/seobench/core/synth"
	"github.com/huangsam/seobench/core/validate"
	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/internal/outwriter"
	"github.com/huangsam/seobench/internal/parquet"
	"github.com/huangsam/seobench/internal/telemetry"
	"github.com/huangsam/seobench/schema"
	"github.com/sirupsen/logrus"
)

// Outcome is a finished run: the result record plus what the writers produced.
type Outcome struct {
	Result  schema.RunResult
	Report  *outwriter.Report
	Files   outwriter.RunFiles
	Started time.Time
	Issues  *qa.Accumulator
}

// Run executes one benchmark run. It is a pure function of the input files, runCfg and the
// clock: configuration problems are returned before anything is written, and a blocked run
// still writes every output and returns a nil error.
func Run(ctx context.Context, runCfg schema.RunConfig, clock contract.Clock) (*Outcome, error) {
	if err := defaults.Set(&runCfg.Options); err != nil {
		return nil, fmt.Errorf("failed to apply engine defaults: %w", err)
	}
	if p := runCfg.Options.Precision; p < 1 || p > contract.MaxPrecision {
		return nil, &contract.ConfigError{
			Input: "precision",
			Err:   fmt.Errorf("must be between 1 and %d (received %d)", contract.MaxPrecision, p),
		}
	}

	customRules, err := rules.Parse(runCfg.CustomRulesText)
	if err != nil {
		return nil, &contract.ConfigError{Input: "rules", Err: err}
	}

	ds, loadIssues, err := load.Load(runCfg.InputPaths)
	if err != nil {
		return nil, err
	}
	meta, metaIssues, err := load.LoadMetadata(runCfg.MetadataPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := clock.Now()
	runID := contract.RunID(started)
	if runCfg.OutputRoot == "" {
		runCfg.OutputRoot = contract.DefaultOutputRoot
	}
	dir := filepath.Join(runCfg.OutputRoot, runID)
	ow := outwriter.NewOutWriter()
	if err := ow.PrepareRunDir(dir); err != nil {
		return nil, err
	}

	log := contract.Logger.WithField("run_id", runID)
	acc := qa.New()
	addAll(acc, loadIssues)
	addAll(acc, metaIssues)
	log.WithFields(logrus.Fields{
		"metadata": len(meta),
		"issues":   acc.Len(),
		"source":   runCfg.MetadataPath,
	}).Debug("Loaded inputs")

	declared, declaredIssues := classify.DeclaredBuckets(ds)
	addAll(acc, declaredIssues)
	res, classifyIssues := classify.Classify(declared, meta, customRules)
	addAll(acc, classifyIssues)
	log.WithFields(logrus.Fields{"urls": len(declared), "rules": len(customRules)}).Debug("Classified URLs")

	addAll(acc, validate.Check(ds))
	gate := validate.Decide(acc)
	if gate.Blocked {
		log.WithField("errors", acc.ErrorCount()).Warn("Validation failed, metric cells are blank for failed buckets")
	}

	rows := synth.New(runCfg.Options).Rows(ds, res, gate, acc)

	report := &outwriter.Report{
		RunID:   runID,
		Config:  runCfg,
		Rows:    rows,
		Issues:  acc.Sorted(),
		Blocked: gate.Blocked,
	}
	files, err := ow.WriteRun(dir, report)
	if err != nil {
		return nil, err
	}
	prompt, err := outwriter.RenderPrompt(report)
	if err != nil {
		return nil, fmt.Errorf("error rendering prompt: %w", err)
	}

	result := schema.RunResult{
		RunID:             runID,
		OutputDir:         dir,
		AnalysisCSV:       files.AnalysisCSV,
		QACSV:             files.QACSV,
		QASummaryTXT:      files.QASummary,
		PromptTXT:         files.Prompt,
		PromptText:        prompt,
		ValidationBlocked: gate.Blocked,
		QAIssueCount:      acc.Len(),
		QAErrorCount:      acc.ErrorCount(),
		RowCount:          len(rows),
		BucketOrder:       schema.BucketOrderNames(),
	}
	log.WithFields(logrus.Fields{
		"rows":    result.RowCount,
		"issues":  result.QAIssueCount,
		"errors":  result.QAErrorCount,
		"blocked": result.ValidationBlocked,
		"dir":     dir,
	}).Info("Benchmark run complete")

	return &Outcome{Result: result, Report: report, Files: files, Started: started, Issues: acc}, nil
}

func addAll(acc *qa.Accumulator, issues []schema.QAIssue) {
	for _, issue := range issues {
		acc.Add(issue)
	}
}

// Execute runs the benchmark for a validated CLI config and handles everything around the run:
// rule files, optional exports, the metrics textfile, the ledger and the terminal summary.
// ledger may be nil.
func Execute(ctx context.Context, cfg *contract.Config, clock contract.Clock, ledger contract.LedgerStore, stdout io.Writer) (*Outcome, error) {
	runCfg := cfg.Run
	if cfg.RulesFile != "" {
		list, err := rules.LoadFile(cfg.RulesFile)
		if err != nil {
			return nil, &contract.ConfigError{Input: "rules-file", Path: cfg.RulesFile, Err: err}
		}
		runCfg.CustomRulesText = rules.Format(list)
	}

	start := time.Now()
	outcome, err := Run(ctx, runCfg, clock)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start)

	if err := exportRun(cfg.Export, outcome); err != nil {
		return outcome, err
	}

	if cfg.MetricsFile != "" {
		rec := telemetry.NewRecorder()
		rec.ObserveRun(outcome.Result, outcome.Report.Issues, outcome.Started, duration)
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			contract.LogWarn("Failed to write metrics file", err)
		}
	}

	if ledger != nil {
		run, counts, err := ledgerRecord(outcome)
		if err == nil {
			err = ledger.RecordRun(ctx, run, counts)
		}
		if err != nil {
			contract.LogWarn("Failed to record run in ledger", err)
		}
	}

	if !cfg.Quiet {
		if err := outwriter.NewOutWriter().WriteSummaryTable(stdout, outcome.Report, outcome.Files, cfg); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// exportRun writes the optional json or parquet outputs next to the standard ones.
func exportRun(mode schema.ExportMode, outcome *Outcome) error {
	dir := outcome.Files.Dir
	switch mode {
	case schema.JSONExport:
		_, err := outwriter.NewOutWriter().WriteJSON(dir, outcome.Report)
		return err
	case schema.ParquetExport:
		cells := parquet.ConvertAnalysisRows(outcome.Result.RunID, outcome.Report.Rows)
		if err := parquet.WriteBenchmarkCellsParquet(cells, filepath.Join(dir, outwriter.AnalysisParquetName)); err != nil {
			return fmt.Errorf("error writing analysis parquet: %w", err)
		}
		issues := parquet.ConvertQAIssues(outcome.Result.RunID, outcome.Report.Issues)
		if err := parquet.WriteQAIssuesParquet(issues, filepath.Join(dir, outwriter.QAParquetName)); err != nil {
			return fmt.Errorf("error writing QA parquet: %w", err)
		}
	}
	return nil
}

// ledgerRecord builds the ledger rows for a finished run.
func ledgerRecord(outcome *Outcome) (schema.RunRecord, []schema.IssueCountRecord, error) {
	params, err := json.Marshal(outcome.Report.Config)
	if err != nil {
		return schema.RunRecord{}, nil, fmt.Errorf("failed to marshal config params: %w", err)
	}
	configParams := string(params)

	runUUID := uuid.NewString()
	run := schema.RunRecord{
		RunUUID:           runUUID,
		RunID:             outcome.Result.RunID,
		StartedAt:         outcome.Started,
		OutputDir:         outcome.Result.OutputDir,
		ValidationBlocked: outcome.Result.ValidationBlocked,
		RowCount:          outcome.Result.RowCount,
		QAIssueCount:      outcome.Result.QAIssueCount,
		QAErrorCount:      outcome.Result.QAErrorCount,
		ConfigParams:      &configParams,
	}

	grouped := outcome.Issues.CountByTypeSeverity()
	counts := make([]schema.IssueCountRecord, 0, len(grouped))
	for key, n := range grouped {
		counts = append(counts, schema.IssueCountRecord{
			RunUUID:   runUUID,
			IssueType: key.IssueType,
			Severity:  key.Severity,
			Count:     n,
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].IssueType != counts[j].IssueType {
			return counts[i].IssueType < counts[j].IssueType
		}
		return counts[i].Severity.Rank() < counts[j].Severity.Rank()
	})
	return run, counts, nil
}
