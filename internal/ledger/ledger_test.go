package ledger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/seobench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(uuid, runID string, started time.Time, blocked bool) schema.RunRecord {
	params := `{"output_root":"seobench-out"}`
	return schema.RunRecord{
		RunUUID:           uuid,
		RunID:             runID,
		StartedAt:         started,
		OutputDir:         filepath.Join("seobench-out", runID),
		ValidationBlocked: blocked,
		RowCount:          4,
		QAIssueCount:      3,
		QAErrorCount:      1,
		ConfigParams:      &params,
	}
}

func TestStore_NoneBackend(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.RecordRun(ctx, schema.RunRecord{RunID: "x"}, nil))

	runs, err := store.ListRuns(ctx)
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Clear(ctx))
	assert.NoError(t, store.Close())
}

func TestStore_UnsupportedBackend(t *testing.T) {
	_, err := NewStore(schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	first := time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC)
	second := first.Add(24 * time.Hour)
	counts := []schema.IssueCountRecord{
		{RunUUID: "u1", IssueType: schema.MissingColumnIssue, Severity: schema.ErrorSeverity, Count: 1},
		{RunUUID: "u1", IssueType: schema.NonNumericIssue, Severity: schema.WarningSeverity, Count: 2},
	}
	require.NoError(t, store.RecordRun(ctx, sampleRun("u2", "20240310-070504", second, false), nil))
	require.NoError(t, store.RecordRun(ctx, sampleRun("u1", "20240309-070504", first, true), counts))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "20240309-070504", runs[0].RunID)
	assert.True(t, runs[0].StartedAt.Equal(first))
	assert.True(t, runs[0].ValidationBlocked)
	assert.Equal(t, 4, runs[0].RowCount)
	require.NotNil(t, runs[0].ConfigParams)
	assert.Contains(t, *runs[0].ConfigParams, "output_root")

	issueCounts, err := store.ListIssueCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, counts, issueCounts)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, 1, status.BlockedRuns)
	assert.Equal(t, "20240310-070504", status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(second))
	assert.True(t, status.OldestRunTime.Equal(first))
	assert.Equal(t, int64(2), status.TableSizes[issuesTable])

	require.NoError(t, store.Clear(ctx))
	runs, err = store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_DuplicateRunRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	started := time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC)

	require.NoError(t, store.RecordRun(ctx, sampleRun("u1", "20240309-070504", started, false), nil))
	err := store.RecordRun(ctx, sampleRun("u1", "20240309-070504", started, false), []schema.IssueCountRecord{
		{RunUUID: "u1", IssueType: schema.BlankURLIssue, Severity: schema.WarningSeverity, Count: 1},
	})
	assert.ErrorContains(t, err, "failed to insert run")

	counts, err := store.ListIssueCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestRebind(t *testing.T) {
	query := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, query, rebind(schema.SQLiteBackend, query))
	assert.Equal(t, query, rebind(schema.MySQLBackend, query))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", rebind(schema.PostgreSQLBackend, query))
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintStatus(&buf, schema.LedgerStatus{Backend: "none"})
	assert.Equal(t, "Ledger Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintStatus(&buf, schema.LedgerStatus{
		Backend:     "sqlite",
		Connected:   true,
		TotalRuns:   1,
		LastRunID:   "20240309-070504",
		LastRunTime: time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC),
		TableSizes:  map[string]int64{runsTable: 1, issuesTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 20240309-070504")
	assert.Contains(t, out, "Last Run: 2024-03-09 07:05:04")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(issuesTable)), bytes.Index(buf.Bytes(), []byte(runsTable+":")))
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC)
	runs := []schema.RunRecord{sampleRun("u1", "20240309-070504", started, false)}

	t.Run("csv file", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListRuns", mock.Anything).Return(runs, nil)
		path := filepath.Join(t.TempDir(), "runs.csv")

		require.NoError(t, Export(ctx, store, path, "csv", &bytes.Buffer{}))
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "u1,20240309-070504,2024-03-09T07:05:04Z")
		store.AssertExpectations(t)
	})

	t.Run("parquet file", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListRuns", mock.Anything).Return(runs, nil)
		path := filepath.Join(t.TempDir(), "runs.parquet")

		var out bytes.Buffer
		require.NoError(t, Export(ctx, store, path, "parquet", &out))
		assert.Contains(t, out.String(), "Exported 1 runs")
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("parquet needs file", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListRuns", mock.Anything).Return(runs, nil)
		assert.ErrorContains(t, Export(ctx, store, "", "parquet", &bytes.Buffer{}), "--output-file")
	})

	t.Run("store error", func(t *testing.T) {
		store := new(MockStore)
		store.On("ListRuns", mock.Anything).Return(nil, errors.New("boom"))
		assert.ErrorContains(t, Export(ctx, store, "", "json", &bytes.Buffer{}), "boom")
	})
}
