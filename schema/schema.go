// Package schema has configs, models and constants for all parts of seobench.
package schema

// Rule is one custom classification rule from the rule DSL.
// Every non-exclude list is a set of case-insensitive substrings; a URL matches when each
// non-empty list has a hit in its field and no exclude substring hits anywhere.
type Rule struct {
	Name          string   `json:"name" yaml:"name"`
	URLContains   []string `json:"url_contains,omitempty" yaml:"url_contains,omitempty"`
	TitleContains []string `json:"title_contains,omitempty" yaml:"title_contains,omitempty"`
	MetaContains  []string `json:"meta_contains,omitempty" yaml:"meta_contains,omitempty"`
	H1Contains    []string `json:"h1_contains,omitempty" yaml:"h1_contains,omitempty"`
	Exclude       []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Field returns the list stored under a DSL clause key, or nil for an unknown key.
func (r *Rule) Field(key string) *[]string {
	switch key {
	case "url_contains":
		return &r.URLContains
	case "title_contains":
		return &r.TitleContains
	case "meta_contains":
		return &r.MetaContains
	case "h1_contains":
		return &r.H1Contains
	case "exclude":
		return &r.Exclude
	}
	return nil
}

// Values returns the list stored under a DSL clause key.
func (r Rule) Values(key string) []string {
	if f := r.Field(key); f != nil {
		return *f
	}
	return nil
}

// QAIssue is a single finding gathered during a run.
type QAIssue struct {
	URL       string    `json:"url"`
	IssueType IssueType `json:"issue_type"`
	Severity  Severity  `json:"severity"`
	Detail    string    `json:"detail"`
	Bucket    Bucket    `json:"bucket,omitempty"`
	Window    Window    `json:"window,omitempty"`
	Source    string    `json:"source,omitempty"` // input file path
	Column    Column    `json:"column,omitempty"`
}

// Metadata is one row of the metadata/H1 export.
type Metadata struct {
	URL             string
	Type            string
	Title           string
	MetaDescription string
	H1              string
}

// Value is a parsed numeric cell. Valid is false when the input was blank or non-numeric,
// in which case N is 0 and Raw keeps the original text.
type Value struct {
	N     int64
	Valid bool
	Raw   string
}

// Row is one canonical URL within a performance table.
type Row struct {
	URL    string
	Values map[Column]Value
}

// Table holds the rows loaded from a single performance file.
type Table struct {
	Window  Window
	Bucket  Bucket
	Source  string
	Present map[Column]bool // canonical columns found in the header
	Rows    map[string]*Row // keyed by canonical URL
}

// Dataset is every loaded performance table, keyed by window and declared bucket.
type Dataset map[Window]map[Bucket]*Table

// Table returns the table for w and b, or nil when it was not loaded.
func (d Dataset) Table(w Window, b Bucket) *Table {
	if byBucket, ok := d[w]; ok {
		return byBucket[b]
	}
	return nil
}

// MetricCell is the rendered comparison for one metric in one window.
// All fields are empty strings when the bucket is blocked or the URL has no data.
type MetricCell struct {
	Current  string `json:"current"`
	Prior    string `json:"prior"`
	AbsDelta string `json:"abs_delta"`
	RelDelta string `json:"rel_delta"`
}

// Parts returns the cell fields in CellParts order.
func (c MetricCell) Parts() []string {
	return []string{c.Current, c.Prior, c.AbsDelta, c.RelDelta}
}

// Blank reports whether every field of the cell is empty.
func (c MetricCell) Blank() bool {
	return c.Current == "" && c.Prior == "" && c.AbsDelta == "" && c.RelDelta == ""
}

// AnalysisRow is one line of the analysis output.
type AnalysisRow struct {
	URL            string                            `json:"url"`
	DeclaredBucket Bucket                            `json:"declared_bucket"`
	InferredBucket Bucket                            `json:"inferred_bucket"`
	MatchedRule    string                            `json:"matched_rule,omitempty"`
	Cells          map[Window]map[Metric]MetricCell `json:"cells"`
	Notes          string                            `json:"notes"`
	Blocked        bool                              `json:"blocked"`
}

// Cell returns the cell for w and m, or an empty cell.
func (r AnalysisRow) Cell(w Window, m Metric) MetricCell {
	if byMetric, ok := r.Cells[w]; ok {
		return byMetric[m]
	}
	return MetricCell{}
}

// Record flattens the row in AnalysisHeader order.
func (r AnalysisRow) Record() []string {
	record := []string{r.URL, string(r.DeclaredBucket), string(r.InferredBucket), r.MatchedRule}
	for _, w := range AllWindows {
		for _, m := range AllMetrics {
			record = append(record, r.Cell(w, m).Parts()...)
		}
	}
	return append(record, r.Notes)
}

// Record flattens the issue in QAHeader order.
func (q QAIssue) Record() []string {
	return []string{q.URL, string(q.IssueType), string(q.Severity), string(q.Bucket), string(q.Window), q.Source, string(q.Column), q.Detail}
}
