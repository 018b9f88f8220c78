// Package parquet provides data structures and functions for exporting benchmark
// results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/seobench/schema"
	"github.com/parquet-go/parquet-go"
)

// BenchmarkCell is one metric comparison in long format: a row per URL, window and metric.
type BenchmarkCell struct {
	// RunID identifies the run that produced the cell
	RunID string `parquet:"run_id,snappy,dict"`

	URL            string  `parquet:"url,snappy"`
	DeclaredBucket string  `parquet:"declared_bucket,snappy,dict"`
	InferredBucket string  `parquet:"inferred_bucket,snappy,dict"`
	MatchedRule    *string `parquet:"matched_rule,optional,snappy"`
	Window         string  `parquet:"window,snappy,dict"`
	Metric         string  `parquet:"metric,snappy,dict"`

	// Numeric fields are null when the bucket failed validation
	Current  *int64 `parquet:"current,optional,snappy"`
	Prior    *int64 `parquet:"prior,optional,snappy"`
	AbsDelta *int64 `parquet:"abs_delta,optional,snappy"`

	// RelDelta keeps the rendered percentage, including the infinity token
	RelDelta *string `parquet:"rel_delta,optional,snappy"`

	Blocked bool   `parquet:"blocked"`
	Notes   string `parquet:"notes,snappy"`
}

// QAIssueRecord is one QA issue of a run.
type QAIssueRecord struct {
	RunID     string `parquet:"run_id,snappy,dict"`
	URL       string `parquet:"url,snappy"`
	IssueType string `parquet:"issue_type,snappy,dict"`
	Severity  string `parquet:"severity,snappy,dict"`
	Bucket    string `parquet:"bucket,snappy,dict"`
	Window    string `parquet:"window,snappy,dict"`
	Source    string `parquet:"source,snappy"`
	Column    string `parquet:"column,snappy,dict"`
	Detail    string `parquet:"detail,snappy"`
}

// RunSummary mirrors a run ledger record.
type RunSummary struct {
	RunUUID           string    `parquet:"run_uuid,snappy"`
	RunID             string    `parquet:"run_id,snappy"`
	StartedAt         time.Time `parquet:"started_at,snappy"`
	OutputDir         string    `parquet:"output_dir,snappy"`
	ValidationBlocked bool      `parquet:"validation_blocked"`
	RowCount          int32     `parquet:"row_count,snappy"`
	QAIssueCount      int32     `parquet:"qa_issue_count,snappy"`
	QAErrorCount      int32     `parquet:"qa_error_count,snappy"`

	// ConfigParams contains the JSON-encoded run configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// writeParquet writes rows of T to outputPath, inferring the schema from struct tags.
func writeParquet[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteBenchmarkCellsParquet writes benchmark cells to a Parquet file.
func WriteBenchmarkCellsParquet(data []BenchmarkCell, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteQAIssuesParquet writes QA issues to a Parquet file.
func WriteQAIssuesParquet(data []QAIssueRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunSummariesParquet writes run ledger records to a Parquet file.
func WriteRunSummariesParquet(data []RunSummary, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRows flattens analysis rows into long format, in row, window then metric order.
func ConvertAnalysisRows(runID string, rows []schema.AnalysisRow) []BenchmarkCell {
	result := make([]BenchmarkCell, 0, len(rows)*len(schema.AllWindows)*len(schema.AllMetrics))
	for _, row := range rows {
		var rule *string
		if row.MatchedRule != "" {
			name := row.MatchedRule
			rule = &name
		}
		for _, w := range schema.AllWindows {
			for _, m := range schema.AllMetrics {
				cell := row.Cell(w, m)
				result = append(result, BenchmarkCell{
					RunID:          runID,
					URL:            row.URL,
					DeclaredBucket: string(row.DeclaredBucket),
					InferredBucket: string(row.InferredBucket),
					MatchedRule:    rule,
					Window:         string(w),
					Metric:         string(m),
					Current:        parseOptional(cell.Current),
					Prior:          parseOptional(cell.Prior),
					AbsDelta:       parseOptional(cell.AbsDelta),
					RelDelta:       optionalString(cell.RelDelta),
					Blocked:        row.Blocked,
					Notes:          row.Notes,
				})
			}
		}
	}
	return result
}

// ConvertQAIssues converts QA issues for Parquet export.
func ConvertQAIssues(runID string, issues []schema.QAIssue) []QAIssueRecord {
	result := make([]QAIssueRecord, len(issues))
	for i, issue := range issues {
		result[i] = QAIssueRecord{
			RunID:     runID,
			URL:       issue.URL,
			IssueType: string(issue.IssueType),
			Severity:  string(issue.Severity),
			Bucket:    string(issue.Bucket),
			Window:    string(issue.Window),
			Source:    issue.Source,
			Column:    string(issue.Column),
			Detail:    issue.Detail,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to RunSummary for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []RunSummary {
	result := make([]RunSummary, len(records))
	for i, record := range records {
		result[i] = RunSummary{
			RunUUID:           record.RunUUID,
			RunID:             record.RunID,
			StartedAt:         record.StartedAt,
			OutputDir:         record.OutputDir,
			ValidationBlocked: record.ValidationBlocked,
			RowCount:          int32(record.RowCount),
			QAIssueCount:      int32(record.QAIssueCount),
			QAErrorCount:      int32(record.QAErrorCount),
			ConfigParams:      record.ConfigParams,
		}
	}
	return result
}

func parseOptional(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
