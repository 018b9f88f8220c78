package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/seobench/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []schema.AnalysisRow {
	cells := map[schema.Window]map[schema.Metric]schema.MetricCell{}
	for _, w := range schema.AllWindows {
		cells[w] = map[schema.Metric]schema.MetricCell{}
		for _, m := range schema.AllMetrics {
			cells[w][m] = schema.MetricCell{Current: "3", Prior: "0", AbsDelta: "3", RelDelta: "+∞"}
		}
	}
	return []schema.AnalysisRow{
		{URL: "/services/a/", DeclaredBucket: schema.ServiceBucket, InferredBucket: schema.ServiceBucket, MatchedRule: "Service", Cells: cells},
		{URL: "/locations/b/", DeclaredBucket: schema.LocationBucket, InferredBucket: schema.LocationBucket, Blocked: true, Notes: "Validation failed: x"},
	}
}

func TestSchemaColumns(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"benchmark cell", new(BenchmarkCell), []string{"run_id", "url", "declared_bucket", "inferred_bucket", "matched_rule", "window", "metric", "current", "prior", "abs_delta", "rel_delta", "blocked", "notes"}},
		{"qa issue", new(QAIssueRecord), []string{"run_id", "url", "issue_type", "severity", "bucket", "window", "source", "column", "detail"}},
		{"run summary", new(RunSummary), []string{"run_uuid", "run_id", "started_at", "output_dir", "validation_blocked", "row_count", "qa_issue_count", "qa_error_count", "config_params"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestConvertAnalysisRows(t *testing.T) {
	cells := ConvertAnalysisRows("20240309-070504", sampleRows())
	require.Len(t, cells, 2*len(schema.AllWindows)*len(schema.AllMetrics))

	first := cells[0]
	assert.Equal(t, "20240309-070504", first.RunID)
	assert.Equal(t, "L3M", first.Window)
	assert.Equal(t, "Clicks", first.Metric)
	require.NotNil(t, first.Current)
	assert.Equal(t, int64(3), *first.Current)
	require.NotNil(t, first.MatchedRule)
	assert.Equal(t, "Service", *first.MatchedRule)
	assert.Equal(t, "+∞", *first.RelDelta)

	blocked := cells[len(cells)-1]
	assert.True(t, blocked.Blocked)
	assert.Nil(t, blocked.Current)
	assert.Nil(t, blocked.RelDelta)
	assert.Nil(t, blocked.MatchedRule)
}

func TestWriteBenchmarkCellsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analysis.parquet")
	data := ConvertAnalysisRows("r1", sampleRows())
	require.NoError(t, WriteBenchmarkCellsParquet(data, outputPath))

	read, err := parquet.ReadFile[BenchmarkCell](outputPath)
	require.NoError(t, err)
	require.Len(t, read, len(data))
	assert.Equal(t, data[0].URL, read[0].URL)
	require.NotNil(t, read[0].AbsDelta)
	assert.Equal(t, int64(3), *read[0].AbsDelta)
	assert.Nil(t, read[len(read)-1].Prior)
}

func TestWriteQAIssuesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "qa.parquet")
	issues := []schema.QAIssue{
		{URL: "/a/", IssueType: schema.NonNumericIssue, Severity: schema.WarningSeverity, Bucket: schema.ServiceBucket, Window: schema.MoMWindow, Source: "mom_service.csv", Column: schema.ClicksPriorColumn, Detail: `MoM clicks_prior "n/a" treated as 0`},
	}
	require.NoError(t, WriteQAIssuesParquet(ConvertQAIssues("r1", issues), outputPath))

	read, err := parquet.ReadFile[QAIssueRecord](outputPath)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, "non_numeric", read[0].IssueType)
	assert.Equal(t, "clicks_prior", read[0].Column)
}

func TestWriteRunSummariesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	params := `{"output_root":"out"}`
	started := time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC)
	records := []schema.RunRecord{
		{RunUUID: "u1", RunID: "20240309-070504", StartedAt: started, RowCount: 4, ConfigParams: &params},
		{RunUUID: "u2", RunID: "20240310-070504", StartedAt: started.Add(24 * time.Hour), ValidationBlocked: true},
	}
	require.NoError(t, WriteRunSummariesParquet(ConvertRunRecords(records), outputPath))

	read, err := parquet.ReadFile[RunSummary](outputPath)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, int32(4), read[0].RowCount)
	require.NotNil(t, read[0].ConfigParams)
	assert.Equal(t, params, *read[0].ConfigParams)
	assert.Nil(t, read[1].ConfigParams)
	assert.True(t, read[1].ValidationBlocked)
	assert.WithinDuration(t, started, read[0].StartedAt, time.Millisecond)
}

func TestWriteParquetEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteQAIssuesParquet(nil, outputPath))
	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteBenchmarkCellsParquet(nil, "/nonexistent/dir/out.parquet")
	assert.ErrorContains(t, err, "failed to create output file")
}
