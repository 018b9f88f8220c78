package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/seobench/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	rec := NewRecorder()
	started := time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC)
	issues := []schema.QAIssue{
		{IssueType: schema.MissingColumnIssue, Severity: schema.ErrorSeverity},
		{IssueType: schema.NonNumericIssue, Severity: schema.WarningSeverity},
		{IssueType: schema.NonNumericIssue, Severity: schema.WarningSeverity},
	}

	rec.ObserveRun(schema.RunResult{ValidationBlocked: true, RowCount: 4}, issues, started, 250*time.Millisecond)
	rec.ObserveRun(schema.RunResult{RowCount: 2}, nil, started.Add(time.Hour), time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runsTotal.WithLabelValues("blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runsTotal.WithLabelValues("ok")))
	assert.Equal(t, 6.0, testutil.ToFloat64(rec.rowsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.issuesTotal.WithLabelValues("non_numeric", "warning")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.lastBlocked))
	assert.Equal(t, float64(started.Add(time.Hour).Unix()), testutil.ToFloat64(rec.lastRunStamp))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.runDuration))
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveRun(schema.RunResult{RowCount: 3}, nil, time.Unix(0, 0), time.Millisecond)

	path := filepath.Join(t.TempDir(), "seobench.prom")
	require.NoError(t, rec.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `seobench_runs_total{status="ok"} 1`)
	assert.Contains(t, string(content), "seobench_analysis_rows_total 3")
}

func TestWriteTextfileInvalidPath(t *testing.T) {
	err := NewRecorder().WriteTextfile("/nonexistent/dir/seobench.prom")
	assert.ErrorContains(t, err, "failed to write metrics textfile")
}
