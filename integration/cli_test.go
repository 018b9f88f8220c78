//go:build basic

// Package integration contains integration tests for seobench.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/seobench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunWritesOutputs runs a full benchmark and checks the run directory.
func TestRunWritesOutputs(t *testing.T) {
	dir := writeFixtures(t)

	_, err := runSeobench(t, dir, nil, "run", "--input-dir", ".", "--output-root", "out", "--quiet", "--export", "json")
	require.NoError(t, err)

	runs, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	runDir := filepath.Join(dir, "out", runs[0].Name())

	for _, name := range []string{"analysis.csv", "qa.csv", "qa_summary.txt", "prompt.txt", "analysis.json"} {
		assert.FileExists(t, filepath.Join(runDir, name))
	}

	file, err := os.Open(filepath.Join(runDir, "analysis.csv"))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, schema.AnalysisHeader(), records[0])
	assert.Equal(t, "https://example.com/services/drains/", records[1][0])
	assert.Equal(t, "https://example.com/blog/clogged-drain/", records[3][0])
}

// TestRunMissingInputFails checks that a missing performance file stops the run before output.
func TestRunMissingInputFails(t *testing.T) {
	dir := writeFixtures(t)
	require.NoError(t, os.Remove(filepath.Join(dir, schema.DefaultInputFile(schema.MoMWindow, schema.LocationBucket))))

	_, err := runSeobench(t, dir, nil, "run", "--input-dir", ".", "--output-root", "out", "--quiet")
	require.Error(t, err)
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

// TestSQLiteLedger records two runs in a SQLite ledger and reads them back.
func TestSQLiteLedger(t *testing.T) {
	dir := writeFixtures(t)
	env := []string{
		"SEOBENCH_LEDGER_BACKEND=sqlite",
		"SEOBENCH_LEDGER_DB_CONNECT=" + filepath.Join(dir, "ledger.db"),
	}

	_, err := runSeobench(t, dir, env, "ledger", "migrate")
	require.NoError(t, err)

	_, err = runSeobench(t, dir, env, "run", "--input-dir", ".", "--output-root", "first", "--quiet")
	require.NoError(t, err)

	status, err := runSeobench(t, dir, env, "ledger", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 1")

	out, err := runSeobench(t, dir, env, "ledger", "export", "--format", "json")
	require.NoError(t, err)
	var runs []schema.RunRecord
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.False(t, runs[0].ValidationBlocked)
	assert.Equal(t, 3, runs[0].RowCount)

	_, err = runSeobench(t, dir, env, "ledger", "clear")
	require.NoError(t, err)
	status, err = runSeobench(t, dir, env, "ledger", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 0")
}

// TestRulesAndURLCommands covers the helper commands.
func TestRulesAndURLCommands(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.txt")
	require.NoError(t, os.WriteFile(rulesPath, []byte("Location: url_contains=/areas/\n"), 0o644))

	out, err := runSeobench(t, dir, nil, "rules", "export", rulesPath, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Location")

	require.NoError(t, os.WriteFile(rulesPath, []byte("Location url_contains=/areas/\n"), 0o644))
	_, err = runSeobench(t, dir, nil, "rules", "check", rulesPath)
	require.Error(t, err)

	out, err = runSeobench(t, dir, nil, "url", "HTTPS://Example.com/Services#top")
	require.NoError(t, err)
	assert.Equal(t, "HTTPS://Example.com/Services#top\thttps://example.com/services/", strings.TrimSpace(out))
}
