package schema

import "fmt"

// Column is a canonical logical column produced by the loader.
type Column string

// Canonical logical columns. Every window carries the same eight metric columns.
const (
	URLColumn           Column = "url"
	ClicksCurrentColumn Column = "clicks_current"
	ClicksPriorColumn   Column = "clicks_prior"
	ImprCurrentColumn   Column = "impr_current"
	ImprPriorColumn     Column = "impr_prior"
	UsersCurrentColumn  Column = "users_current"
	UsersPriorColumn    Column = "users_prior"
	EventsCurrentColumn Column = "events_current"
	EventsPriorColumn   Column = "events_prior"
)

// MetricColumns lists the numeric columns in canonical order.
var MetricColumns = []Column{
	ClicksCurrentColumn, ClicksPriorColumn,
	ImprCurrentColumn, ImprPriorColumn,
	UsersCurrentColumn, UsersPriorColumn,
	EventsCurrentColumn, EventsPriorColumn,
}

// RequiredColumns returns the columns that must be present in every performance file.
// The set is the same for every window and bucket; the parameters keep call sites explicit.
func RequiredColumns(_ Window, _ Bucket) []Column {
	cols := make([]Column, 0, len(MetricColumns)+1)
	cols = append(cols, URLColumn)
	return append(cols, MetricColumns...)
}

// MetricPair returns the current and prior columns backing a metric.
func MetricPair(m Metric) (current, prior Column) {
	switch m {
	case ClicksMetric:
		return ClicksCurrentColumn, ClicksPriorColumn
	case ImpressionsMetric:
		return ImprCurrentColumn, ImprPriorColumn
	case NewUsersMetric:
		return UsersCurrentColumn, UsersPriorColumn
	default:
		return EventsCurrentColumn, EventsPriorColumn
	}
}

// Analysis CSV structural headers.
const (
	URLHeader            = "URL"
	DeclaredBucketHeader = "Declared Bucket"
	InferredBucketHeader = "Inferred Bucket"
	MatchedRuleHeader    = "Matched Rule"
	NotesHeader          = "Data Coverage Notes"
)

// Cell parts for every metric, in output order.
var CellParts = []string{"Current", "Prior", "Abs Delta", "Rel Delta"}

// BenchmarkHeader names one expanded benchmark column, e.g. "L3M Benchmark Clicks Rel Delta".
func BenchmarkHeader(w Window, m Metric, part string) string {
	return fmt.Sprintf("%s Benchmark %s %s", w, m, part)
}

// AnalysisHeader returns the full analysis CSV header in its stable order.
func AnalysisHeader() []string {
	header := []string{URLHeader, DeclaredBucketHeader, InferredBucketHeader, MatchedRuleHeader}
	for _, w := range AllWindows {
		for _, m := range AllMetrics {
			for _, part := range CellParts {
				header = append(header, BenchmarkHeader(w, m, part))
			}
		}
	}
	return append(header, NotesHeader)
}

// QAHeader returns the QA CSV header.
func QAHeader() []string {
	return []string{"URL", "Issue Type", "Severity", "Bucket", "Window", "Source", "Column", "Detail"}
}
