package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	okCells := map[schema.Window]map[schema.Metric]schema.MetricCell{}
	blankCells := map[schema.Window]map[schema.Metric]schema.MetricCell{}
	for _, w := range schema.AllWindows {
		okCells[w] = map[schema.Metric]schema.MetricCell{}
		blankCells[w] = map[schema.Metric]schema.MetricCell{}
		for _, m := range schema.AllMetrics {
			okCells[w][m] = schema.MetricCell{Current: "10", Prior: "8", AbsDelta: "2", RelDelta: "+25.0%"}
			blankCells[w][m] = schema.MetricCell{}
		}
	}
	var paths schema.InputPaths
	for _, w := range schema.AllWindows {
		for _, b := range schema.AllBuckets {
			paths.Set(w, b, "in/"+schema.DefaultInputFile(w, b))
		}
	}
	return &Report{
		RunID: "20240309-070504",
		Config: schema.RunConfig{
			InputPaths:      paths,
			MetadataPath:    "in/metadata.csv",
			CustomRulesText: "Blog: url_contains=/blog/",
		},
		Rows: []schema.AnalysisRow{
			{URL: "/services/a/", DeclaredBucket: schema.ServiceBucket, InferredBucket: schema.ServiceBucket, Cells: okCells},
			{
				URL: "/locations/b/", DeclaredBucket: schema.LocationBucket, InferredBucket: schema.SupportingBucket,
				Cells: blankCells, Blocked: true, Notes: "Validation failed: Location URL missing from MoM",
			},
		},
		Issues: []schema.QAIssue{
			{URL: "/locations/b/", IssueType: schema.URLSetMismatchIssue, Severity: schema.ErrorSeverity, Bucket: schema.LocationBucket, Detail: "Location URL missing from MoM"},
			{URL: "/locations/b/", IssueType: schema.TypeConflictIssue, Severity: schema.WarningSeverity, Bucket: schema.LocationBucket, Detail: "declared Location, inferred Supporting from default"},
		},
		Blocked: true,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteRun(t *testing.T) {
	ow := NewOutWriter()
	dir := filepath.Join(t.TempDir(), "20240309-070504")
	require.NoError(t, ow.PrepareRunDir(dir))

	files, err := ow.WriteRun(dir, sampleReport())
	require.NoError(t, err)

	analysis := readCSV(t, files.AnalysisCSV)
	require.Len(t, analysis, 3)
	assert.Equal(t, schema.AnalysisHeader(), analysis[0])
	assert.Equal(t, "/services/a/", analysis[1][0])
	assert.Equal(t, "+25.0%", analysis[1][7])
	assert.Equal(t, "", analysis[2][4])
	assert.Equal(t, "Validation failed: Location URL missing from MoM", analysis[2][len(analysis[2])-1])

	qaRecords := readCSV(t, files.QACSV)
	require.Len(t, qaRecords, 3)
	assert.Equal(t, schema.QAHeader(), qaRecords[0])
	assert.Equal(t, "url_set_mismatch", qaRecords[1][1])

	summary, err := os.ReadFile(files.QASummary)
	require.NoError(t, err)
	text := string(summary)
	assert.Contains(t, text, "Run ID:   20240309-070504")
	assert.Contains(t, text, "VALIDATION BLOCKED")
	assert.Contains(t, text, "ERROR    1")
	assert.Contains(t, text, "type_conflict (warning): 1")
	assert.Contains(t, text, "  - Location URL missing from MoM")

	prompt, err := os.ReadFile(files.Prompt)
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "Validation failed for: Location.")
	assert.Contains(t, string(prompt), `--mom-location "in/mom_location.csv"`)
	assert.Contains(t, string(prompt), "  Blog: url_contains=/blog/")
}

func TestPrepareRunDirRefusesExistingRun(t *testing.T) {
	ow := NewOutWriter()
	dir := t.TempDir()
	require.NoError(t, ow.PrepareRunDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, AnalysisCSVName), []byte("x"), 0o644))

	err := ow.PrepareRunDir(dir)
	assert.ErrorIs(t, err, contract.ErrRunExists)
}

func TestQASummaryCapsErrors(t *testing.T) {
	report := &Report{RunID: "r"}
	for i := range 7 {
		report.Issues = append(report.Issues, schema.QAIssue{
			IssueType: schema.URLSetMismatchIssue, Severity: schema.ErrorSeverity, Detail: "detail " + string(rune('a'+i)),
		})
	}
	data := buildSummaryData(report)
	assert.Len(t, data.FirstErrors, maxSummaryErrors)
	assert.Equal(t, "detail a", data.FirstErrors[0])
	require.Len(t, data.Types, 1)
	assert.Equal(t, 7, data.Types[0].Count)
}

func TestQASummaryNoIssues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeQASummary(&buf, &Report{RunID: "r"}))
	assert.Contains(t, buf.String(), "Status:   OK")
	assert.Equal(t, 2, strings.Count(buf.String(), "  none"))
}

func TestWriteJSONReport(t *testing.T) {
	dir := t.TempDir()
	path, err := NewOutWriter().WriteJSON(dir, sampleReport())
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, true, decoded["validation_blocked"])
	assert.Len(t, decoded["rows"], 2)
	assert.Equal(t, []any{"Service", "Location", "Supporting"}, decoded["bucket_order"])
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 120}
	err := NewOutWriter().WriteSummaryTable(&buf, sampleReport(), RunFiles{Dir: "out/20240309-070504"}, cfg)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Service")
	assert.Contains(t, out, "BLOCKED")
	assert.Contains(t, out, "url_set_mismatch")
	assert.Contains(t, out, "Run 20240309-070504: BLOCKED, 2 rows, 2 issues (1 errors). Outputs in out/20240309-070504")
}

func TestWriteRules(t *testing.T) {
	list := []schema.Rule{{Name: "Blog", URLContains: []string{"/blog/"}}}

	tests := []struct {
		format   string
		contains string
	}{
		{"dsl", "Blog: url_contains=/blog/\n"},
		{"yaml", "url_contains:"},
		{"json", `"url_contains": [`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeRules(&buf, tt.format, list))
			assert.Contains(t, buf.String(), tt.contains)
		})
	}

	var buf bytes.Buffer
	assert.Error(t, writeRules(&buf, "toml", list))
}

func TestWriteRulesTable(t *testing.T) {
	var buf bytes.Buffer
	list := []schema.Rule{
		{Name: "Services", URLContains: []string{"/services/"}},
		{Name: "Blog", URLContains: []string{"/blog/"}, Exclude: []string{"/tag/"}},
	}
	require.NoError(t, NewOutWriter().WriteRulesTable(&buf, list))
	out := buf.String()
	assert.Contains(t, out, "Service")
	assert.Contains(t, out, "(unknown)")
	assert.Contains(t, out, "2 rules parsed")
}

func TestWriteLedgerRunsCSV(t *testing.T) {
	var buf bytes.Buffer
	runs := []schema.RunRecord{{
		RunUUID: "u1", RunID: "20240309-070504", StartedAt: time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC),
		OutputDir: "out/20240309-070504", ValidationBlocked: true, RowCount: 3, QAIssueCount: 2, QAErrorCount: 1,
	}}
	require.NoError(t, writeLedgerRunsCSV(&buf, runs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "u1,20240309-070504,2024-03-09T07:05:04Z,out/20240309-070504,true,3,2,1", lines[1])
}
