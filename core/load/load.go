// Package load reads the performance and metadata exports into canonical tables.
package load

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
)

// Load reads all nine performance files. Structural and data problems are returned as issues;
// only unreadable inputs return an error, which is always a *contract.ConfigError.
func Load(paths schema.InputPaths) (schema.Dataset, []schema.QAIssue, error) {
	dataset := make(schema.Dataset, len(schema.AllWindows))
	var issues []schema.QAIssue
	for _, w := range schema.AllWindows {
		dataset[w] = make(map[schema.Bucket]*schema.Table, len(schema.AllBuckets))
		for _, b := range schema.AllBuckets {
			table, tableIssues, err := LoadTable(paths.Path(w, b), w, b)
			if err != nil {
				return nil, nil, err
			}
			dataset[w][b] = table
			issues = append(issues, tableIssues...)
		}
	}
	return dataset, issues, nil
}

// LoadTable reads one performance file declared as window w and bucket b.
func LoadTable(path string, w schema.Window, b schema.Bucket) (*schema.Table, []schema.QAIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &contract.ConfigError{Input: schema.InputKey(w, b), Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	table, issues, err := ReadTable(f, path, w, b)
	if err != nil {
		return nil, nil, &contract.ConfigError{Input: schema.InputKey(w, b), Path: path, Err: err}
	}
	return table, issues, nil
}

// ReadTable parses a performance CSV from r. source is recorded on the table and on every issue.
func ReadTable(r io.Reader, source string, w schema.Window, b schema.Bucket) (*schema.Table, []schema.QAIssue, error) {
	table := &schema.Table{
		Window:  w,
		Bucket:  b,
		Source:  source,
		Present: make(map[schema.Column]bool),
		Rows:    make(map[string]*schema.Row),
	}
	reader := newCSVReader(r)

	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	lookup := TableFor(w)
	index := make(map[schema.Column]int)
	for i, raw := range header {
		col, ok := lookup.Resolve(raw)
		if !ok {
			continue
		}
		if _, seen := index[col]; seen {
			continue
		}
		index[col] = i
		table.Present[col] = true
	}

	var issues []schema.QAIssue
	for _, col := range schema.RequiredColumns(w, b) {
		if table.Present[col] {
			continue
		}
		issues = append(issues, schema.QAIssue{
			IssueType: schema.MissingColumnIssue,
			Severity:  schema.ErrorSeverity,
			Detail:    fmt.Sprintf("%s %s file %s has no column for %s", w, b, source, col),
			Bucket:    b,
			Window:    w,
			Source:    source,
			Column:    col,
		})
	}
	urlIdx, ok := index[schema.URLColumn]
	if !ok {
		return table, issues, nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		rawURL := cell(record, urlIdx)
		url := CanonicalURL(rawURL)
		if url == "" {
			if isBlankRecord(record) {
				continue
			}
			issues = append(issues, schema.QAIssue{
				IssueType: schema.BlankURLIssue,
				Severity:  schema.WarningSeverity,
				Detail:    fmt.Sprintf("%s line %d has a blank URL and was skipped", source, line),
				Bucket:    b,
				Window:    w,
				Source:    source,
				Column:    schema.URLColumn,
			})
			continue
		}

		row := &schema.Row{URL: url, Values: make(map[schema.Column]schema.Value, len(schema.MetricColumns))}
		for _, col := range schema.MetricColumns {
			idx, ok := index[col]
			if !ok {
				continue
			}
			raw := cell(record, idx)
			v := ParseInt(raw)
			if !v.Valid {
				issues = append(issues, schema.QAIssue{
					URL:       url,
					IssueType: schema.NonNumericIssue,
					Severity:  schema.WarningSeverity,
					Detail:    fmt.Sprintf("%s %s %q treated as 0", w, col, raw),
					Bucket:    b,
					Window:    w,
					Source:    source,
					Column:    col,
				})
			}
			row.Values[col] = v
		}

		if existing, dup := table.Rows[url]; dup {
			mergeRow(existing, row)
			issues = append(issues, schema.QAIssue{
				URL:       url,
				IssueType: schema.DuplicateURLIssue,
				Severity:  schema.InfoSeverity,
				Detail:    fmt.Sprintf("%s line %d (%s) repeats a URL; values summed", source, line, strings.TrimSpace(rawURL)),
				Bucket:    b,
				Window:    w,
				Source:    source,
			})
			continue
		}
		table.Rows[url] = row
	}
	return table, issues, nil
}

// ParseInt parses an integer cell. Thousands separators, surrounding whitespace and integral
// decimals ("12.0") are accepted. Anything else yields an invalid Value with N == 0.
func ParseInt(raw string) schema.Value {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return schema.Value{Raw: raw}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return schema.Value{N: n, Valid: true, Raw: raw}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return schema.Value{Raw: raw}
	}
	return schema.Value{N: int64(f), Valid: true, Raw: raw}
}

func mergeRow(dst, src *schema.Row) {
	for col, v := range src.Values {
		prev, ok := dst.Values[col]
		if !ok {
			dst.Values[col] = v
			continue
		}
		dst.Values[col] = schema.Value{
			N:     prev.N + v.N,
			Valid: prev.Valid && v.Valid,
			Raw:   prev.Raw + "+" + v.Raw,
		}
	}
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
