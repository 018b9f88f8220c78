package schema

// Custom string types for type safety.
type (
	// Window represents one of the three comparison windows.
	Window string

	// Bucket represents a page-type classification.
	Bucket string

	// Severity represents the severity of a QA issue.
	Severity string

	// IssueType represents the kind of QA issue.
	IssueType string

	// Metric represents a benchmark metric.
	Metric string

	// ExportMode represents an optional extra export format.
	ExportMode string

	// DatabaseBackend represents the database backend for the run ledger.
	DatabaseBackend string
)

// All comparison windows, in output order.
const (
	L3MWindow Window = "L3M" // last 3 months vs previous 3 months
	MoMWindow Window = "MoM" // last month vs previous month
	YoYWindow Window = "YoY" // last 3 months vs same 3 months last year
)

// All buckets, in output order.
const (
	ServiceBucket    Bucket = "Service"
	LocationBucket   Bucket = "Location"
	SupportingBucket Bucket = "Supporting"
)

// All severities supported.
const (
	ErrorSeverity   Severity = "error"
	WarningSeverity Severity = "warning"
	InfoSeverity    Severity = "info"
)

// Structural issues block the run.
const (
	MissingColumnIssue  IssueType = "missing_column"
	URLSetMismatchIssue IssueType = "url_set_mismatch"
	EmptyBucketIssue    IssueType = "empty_bucket"
)

// Classification and data issues never block.
const (
	TypeConflictIssue           IssueType = "type_conflict"
	MissingMetadataIssue        IssueType = "missing_metadata"
	UnknownRuleMatchIssue       IssueType = "unknown_rule_match"
	DeclaredBucketConflictIssue IssueType = "declared_bucket_conflict"
	NonNumericIssue             IssueType = "non_numeric"
	BlankURLIssue               IssueType = "blank_url"
	DuplicateURLIssue           IssueType = "duplicate_url"
)

// All benchmark metrics, in output order.
const (
	ClicksMetric      Metric = "Clicks"
	ImpressionsMetric Metric = "Impressions"
	NewUsersMetric    Metric = "New Users"
	KeyEventsMetric   Metric = "Key Events"
)

// All export modes supported.
const (
	NoExport      ExportMode = "none" // default
	JSONExport    ExportMode = "json"
	ParquetExport ExportMode = "parquet"
)

// All ledger backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// AllWindows lists the windows in output order.
var AllWindows = []Window{L3MWindow, MoMWindow, YoYWindow}

// AllBuckets lists the buckets in output order.
var AllBuckets = []Bucket{ServiceBucket, LocationBucket, SupportingBucket}

// AllMetrics lists the benchmark metrics in output order.
var AllMetrics = []Metric{ClicksMetric, ImpressionsMetric, NewUsersMetric, KeyEventsMetric}

// AllSeverities lists severities from most to least severe.
var AllSeverities = []Severity{ErrorSeverity, WarningSeverity, InfoSeverity}

// ValidExportModes lists all valid export modes.
var ValidExportModes = map[ExportMode]struct{}{
	NoExport:      {},
	JSONExport:    {},
	ParquetExport: {},
}

// ValidDatabaseBackends lists all valid ledger backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Rank orders severities so that errors sort first.
func (s Severity) Rank() int {
	switch s {
	case ErrorSeverity:
		return 0
	case WarningSeverity:
		return 1
	case InfoSeverity:
		return 2
	default:
		return 3
	}
}

// Index returns the position of the bucket in output order, or len(AllBuckets) when unknown.
func (b Bucket) Index() int {
	for i, candidate := range AllBuckets {
		if candidate == b {
			return i
		}
	}
	return len(AllBuckets)
}

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	return b.Index() < len(AllBuckets)
}
