// Package validate cross-checks the loaded windows and decides the validation-blocked gate.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/seobench/core/qa"
	"github.com/huangsam/seobench/schema"
)

// Check returns the structural errors for every bucket. Missing required columns are reported
// by the loader; here a window whose file has no URL column is left out of the URL set comparison.
func Check(ds schema.Dataset) []schema.QAIssue {
	var issues []schema.QAIssue
	for _, b := range schema.AllBuckets {
		issues = append(issues, checkURLSets(ds, b)...)
		if issue, empty := checkEmpty(ds, b); empty {
			issues = append(issues, issue)
		}
	}
	return issues
}

func checkURLSets(ds schema.Dataset, b schema.Bucket) []schema.QAIssue {
	var windows []schema.Window
	union := make(map[string]bool)
	for _, w := range schema.AllWindows {
		table := ds.Table(w, b)
		if table == nil || !table.Present[schema.URLColumn] {
			continue
		}
		windows = append(windows, w)
		for url := range table.Rows {
			union[url] = true
		}
	}

	urls := make([]string, 0, len(union))
	for url := range union {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	var issues []schema.QAIssue
	for _, url := range urls {
		var missing []string
		var lastMissing schema.Window
		for _, w := range windows {
			if _, ok := ds.Table(w, b).Rows[url]; !ok {
				missing = append(missing, string(w))
				lastMissing = w
			}
		}
		if len(missing) == 0 {
			continue
		}
		issue := schema.QAIssue{
			URL:       url,
			IssueType: schema.URLSetMismatchIssue,
			Severity:  schema.ErrorSeverity,
			Detail:    fmt.Sprintf("%s URL missing from %s", b, strings.Join(missing, ", ")),
			Bucket:    b,
		}
		if len(missing) == 1 {
			issue.Window = lastMissing
			issue.Source = ds.Table(lastMissing, b).Source
		}
		issues = append(issues, issue)
	}
	return issues
}

func checkEmpty(ds schema.Dataset, b schema.Bucket) (schema.QAIssue, bool) {
	for _, w := range schema.AllWindows {
		if table := ds.Table(w, b); table != nil && len(table.Rows) > 0 {
			return schema.QAIssue{}, false
		}
	}
	return schema.QAIssue{
		IssueType: schema.EmptyBucketIssue,
		Severity:  schema.ErrorSeverity,
		Detail:    fmt.Sprintf("%s has no rows in any window", b),
		Bucket:    b,
	}, true
}

// Gate is the validation outcome of a run.
type Gate struct {
	Blocked bool
	Failed  map[schema.Bucket]bool
	// Reasons holds the first error detail for every failed bucket.
	Reasons map[schema.Bucket]string
}

// Decide evaluates the gate over every issue collected so far. The run is blocked when any
// issue has error severity.
func Decide(acc *qa.Accumulator) Gate {
	gate := Gate{
		Blocked: acc.HasErrors(),
		Failed:  acc.FailedBuckets(),
		Reasons: make(map[schema.Bucket]string),
	}
	for b := range gate.Failed {
		if issue, ok := acc.FirstError(b); ok {
			gate.Reasons[b] = issue.Detail
		}
	}
	return gate
}
