// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
)

// Output file names inside a run directory.
const (
	AnalysisCSVName  = "analysis.csv"
	QACSVName        = "qa.csv"
	QASummaryName    = "qa_summary.txt"
	PromptName       = "prompt.txt"
	AnalysisJSONName = "analysis.json"

	AnalysisParquetName = "analysis.parquet"
	QAParquetName       = "qa.parquet"
)

// Report is everything the writers need about one finished run.
type Report struct {
	RunID   string
	Config  schema.RunConfig
	Rows    []schema.AnalysisRow
	Issues  []schema.QAIssue // already in QA report order
	Blocked bool
}

// ErrorCount returns the number of error-severity issues in the report.
func (r *Report) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == schema.ErrorSeverity {
			n++
		}
	}
	return n
}

// RunFiles lists the paths written for a run.
type RunFiles struct {
	Dir         string
	AnalysisCSV string
	QACSV       string
	QASummary   string
	Prompt      string
}

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// PrepareRunDir creates dir if needed and refuses a directory that already holds run outputs.
func (ow *OutWriter) PrepareRunDir(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, AnalysisCSVName)); err == nil {
		return fmt.Errorf("%w: %s", contract.ErrRunExists, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// WriteRun writes the four standard outputs into dir.
func (ow *OutWriter) WriteRun(dir string, report *Report) (RunFiles, error) {
	files := RunFiles{
		Dir:         dir,
		AnalysisCSV: filepath.Join(dir, AnalysisCSVName),
		QACSV:       filepath.Join(dir, QACSVName),
		QASummary:   filepath.Join(dir, QASummaryName),
		Prompt:      filepath.Join(dir, PromptName),
	}
	if err := writeFileAt(files.AnalysisCSV, func(f *os.File) error { return writeAnalysisCSV(f, report.Rows) }); err != nil {
		return files, fmt.Errorf("error writing analysis CSV: %w", err)
	}
	if err := writeFileAt(files.QACSV, func(f *os.File) error { return writeQACSV(f, report.Issues) }); err != nil {
		return files, fmt.Errorf("error writing QA CSV: %w", err)
	}
	if err := writeFileAt(files.QASummary, func(f *os.File) error { return writeQASummary(f, report) }); err != nil {
		return files, fmt.Errorf("error writing QA summary: %w", err)
	}
	if err := writeFileAt(files.Prompt, func(f *os.File) error { return writePrompt(f, report) }); err != nil {
		return files, fmt.Errorf("error writing prompt: %w", err)
	}
	return files, nil
}

// WriteJSON writes the analysis rows and QA issues as analysis.json in dir.
func (ow *OutWriter) WriteJSON(dir string, report *Report) (string, error) {
	path := filepath.Join(dir, AnalysisJSONName)
	err := writeFileAt(path, func(f *os.File) error { return writeAnalysisJSON(f, report) })
	if err != nil {
		return "", fmt.Errorf("error writing JSON output: %w", err)
	}
	return path, nil
}
