package validate

import (
	"testing"

	"github.com/huangsam/seobench/core/qa"
	"github.com/huangsam/seobench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(w schema.Window, b schema.Bucket, urls ...string) *schema.Table {
	tbl := &schema.Table{
		Window:  w,
		Bucket:  b,
		Source:  schema.DefaultInputFile(w, b),
		Present: map[schema.Column]bool{schema.URLColumn: true},
		Rows:    map[string]*schema.Row{},
	}
	for _, u := range urls {
		tbl.Rows[u] = &schema.Row{URL: u}
	}
	return tbl
}

func fullDataset() schema.Dataset {
	ds := schema.Dataset{}
	for _, w := range schema.AllWindows {
		ds[w] = map[schema.Bucket]*schema.Table{}
		for _, b := range schema.AllBuckets {
			ds[w][b] = newTable(w, b, "/"+string(b)+"/a/", "/"+string(b)+"/b/")
		}
	}
	return ds
}

func TestCheckConsistent(t *testing.T) {
	assert.Empty(t, Check(fullDataset()))
}

func TestCheckURLSetMismatch(t *testing.T) {
	ds := fullDataset()
	ds[schema.MoMWindow][schema.ServiceBucket] = newTable(schema.MoMWindow, schema.ServiceBucket, "/Service/a/")

	issues := Check(ds)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, schema.URLSetMismatchIssue, issue.IssueType)
	assert.Equal(t, schema.ErrorSeverity, issue.Severity)
	assert.Equal(t, "/Service/b/", issue.URL)
	assert.Equal(t, schema.ServiceBucket, issue.Bucket)
	assert.Equal(t, schema.MoMWindow, issue.Window)
	assert.Contains(t, issue.Detail, "MoM")
}

func TestCheckMissingFromSeveralWindows(t *testing.T) {
	ds := fullDataset()
	ds[schema.L3MWindow][schema.LocationBucket].Rows["/extra/"] = &schema.Row{URL: "/extra/"}

	issues := Check(ds)
	require.Len(t, issues, 1)
	assert.Equal(t, "Location URL missing from MoM, YoY", issues[0].Detail)
	assert.Empty(t, issues[0].Window)
}

func TestCheckSkipsWindowWithoutURLColumn(t *testing.T) {
	ds := fullDataset()
	broken := newTable(schema.YoYWindow, schema.SupportingBucket)
	broken.Present = map[schema.Column]bool{}
	ds[schema.YoYWindow][schema.SupportingBucket] = broken

	assert.Empty(t, Check(ds))
}

func TestCheckEmptyBucket(t *testing.T) {
	ds := fullDataset()
	for _, w := range schema.AllWindows {
		ds[w][schema.SupportingBucket] = newTable(w, schema.SupportingBucket)
	}

	issues := Check(ds)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.EmptyBucketIssue, issues[0].IssueType)
	assert.Equal(t, schema.SupportingBucket, issues[0].Bucket)
}

func TestDecide(t *testing.T) {
	t.Run("warnings never block", func(t *testing.T) {
		acc := qa.New()
		acc.Add(schema.QAIssue{URL: "/a/", IssueType: schema.TypeConflictIssue, Severity: schema.WarningSeverity, Bucket: schema.ServiceBucket})
		gate := Decide(acc)
		assert.False(t, gate.Blocked)
		assert.Empty(t, gate.Failed)
	})

	t.Run("error blocks its bucket", func(t *testing.T) {
		acc := qa.New()
		acc.Add(schema.QAIssue{URL: "/b/", IssueType: schema.URLSetMismatchIssue, Severity: schema.ErrorSeverity, Bucket: schema.LocationBucket, Detail: "second"})
		acc.Add(schema.QAIssue{IssueType: schema.MissingColumnIssue, Severity: schema.ErrorSeverity, Bucket: schema.LocationBucket, Detail: "first"})
		gate := Decide(acc)
		assert.True(t, gate.Blocked)
		assert.Equal(t, map[schema.Bucket]bool{schema.LocationBucket: true}, gate.Failed)
		assert.Equal(t, "first", gate.Reasons[schema.LocationBucket])
	})

	t.Run("error without bucket fails every bucket", func(t *testing.T) {
		acc := qa.New()
		acc.Add(schema.QAIssue{IssueType: schema.MissingColumnIssue, Severity: schema.ErrorSeverity, Detail: "global"})
		gate := Decide(acc)
		assert.Len(t, gate.Failed, 3)
		assert.Equal(t, "global", gate.Reasons[schema.SupportingBucket])
	})
}
