// Package qa collects QA issues across every stage of a run.
package qa

import (
	"sort"

	"github.com/huangsam/seobench/schema"
)

// Accumulator is an ordered, de-duplicated collection of QA issues.
// It is owned by a single run and is not safe for concurrent use.
type Accumulator struct {
	issues []schema.QAIssue
	seen   map[schema.QAIssue]struct{}
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{seen: make(map[schema.QAIssue]struct{})}
}

// Add records an issue. Exact duplicates are dropped.
func (a *Accumulator) Add(issue schema.QAIssue) {
	if _, ok := a.seen[issue]; ok {
		return
	}
	a.seen[issue] = struct{}{}
	a.issues = append(a.issues, issue)
}

// Len returns the number of recorded issues.
func (a *Accumulator) Len() int {
	return len(a.issues)
}

// ErrorCount returns the number of error-severity issues.
func (a *Accumulator) ErrorCount() int {
	n := 0
	for _, issue := range a.issues {
		if issue.Severity == schema.ErrorSeverity {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity issue was recorded.
func (a *Accumulator) HasErrors() bool {
	return a.ErrorCount() > 0
}

// Sorted returns a copy of the issues ordered by severity (errors first), issue type, URL,
// then bucket, window, source, column and detail so that the order is total.
func (a *Accumulator) Sorted() []schema.QAIssue {
	out := make([]schema.QAIssue, len(a.issues))
	copy(out, a.issues)
	SortIssues(out)
	return out
}

// SortIssues orders issues in place using the QA report order.
func SortIssues(issues []schema.QAIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return less(issues[i], issues[j])
	})
}

func less(x, y schema.QAIssue) bool {
	if x.Severity.Rank() != y.Severity.Rank() {
		return x.Severity.Rank() < y.Severity.Rank()
	}
	if x.IssueType != y.IssueType {
		return x.IssueType < y.IssueType
	}
	if x.URL != y.URL {
		return x.URL < y.URL
	}
	if x.Bucket.Index() != y.Bucket.Index() {
		return x.Bucket.Index() < y.Bucket.Index()
	}
	if x.Window != y.Window {
		return windowIndex(x.Window) < windowIndex(y.Window)
	}
	if x.Source != y.Source {
		return x.Source < y.Source
	}
	if x.Column != y.Column {
		return x.Column < y.Column
	}
	return x.Detail < y.Detail
}

func windowIndex(w schema.Window) int {
	for i, candidate := range schema.AllWindows {
		if candidate == w {
			return i
		}
	}
	return len(schema.AllWindows)
}

// FailedBuckets returns the buckets that carry at least one error. An error that is not
// tied to a bucket fails every bucket.
func (a *Accumulator) FailedBuckets() map[schema.Bucket]bool {
	failed := make(map[schema.Bucket]bool)
	for _, issue := range a.issues {
		if issue.Severity != schema.ErrorSeverity {
			continue
		}
		if !issue.Bucket.Valid() {
			for _, b := range schema.AllBuckets {
				failed[b] = true
			}
			continue
		}
		failed[issue.Bucket] = true
	}
	return failed
}

// FirstError returns the first error, in report order, that fails bucket b.
func (a *Accumulator) FirstError(b schema.Bucket) (schema.QAIssue, bool) {
	for _, issue := range a.Sorted() {
		if issue.Severity != schema.ErrorSeverity {
			continue
		}
		if issue.Bucket == b || !issue.Bucket.Valid() {
			return issue, true
		}
	}
	return schema.QAIssue{}, false
}

// NonErrorsByURL groups warnings and info issues by URL, each group sorted by issue type then detail.
func (a *Accumulator) NonErrorsByURL() map[string][]schema.QAIssue {
	grouped := make(map[string][]schema.QAIssue)
	for _, issue := range a.issues {
		if issue.Severity == schema.ErrorSeverity || issue.URL == "" {
			continue
		}
		grouped[issue.URL] = append(grouped[issue.URL], issue)
	}
	for url := range grouped {
		group := grouped[url]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].IssueType != group[j].IssueType {
				return group[i].IssueType < group[j].IssueType
			}
			return group[i].Detail < group[j].Detail
		})
	}
	return grouped
}

// CountBySeverity counts issues per severity. Every severity is present in the result.
func (a *Accumulator) CountBySeverity() map[schema.Severity]int {
	counts := make(map[schema.Severity]int, len(schema.AllSeverities))
	for _, sev := range schema.AllSeverities {
		counts[sev] = 0
	}
	for _, issue := range a.issues {
		counts[issue.Severity]++
	}
	return counts
}

// CountByType counts issues per issue type.
func (a *Accumulator) CountByType() map[schema.IssueType]int {
	counts := make(map[schema.IssueType]int)
	for _, issue := range a.issues {
		counts[issue.IssueType]++
	}
	return counts
}

// TypeSeverity pairs an issue type with the severity it was raised at.
type TypeSeverity struct {
	IssueType schema.IssueType
	Severity  schema.Severity
}

// CountByTypeSeverity counts issues per (issue type, severity) pair.
func (a *Accumulator) CountByTypeSeverity() map[TypeSeverity]int {
	counts := make(map[TypeSeverity]int)
	for _, issue := range a.issues {
		counts[TypeSeverity{issue.IssueType, issue.Severity}]++
	}
	return counts
}
