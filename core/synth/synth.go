// Package synth computes the per-URL benchmark cells and coverage notes.
package synth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/seobench/core/classify"
	"github.com/huangsam/seobench/core/qa"
	"github.com/huangsam/seobench/core/validate"
	"github.com/huangsam/seobench/schema"
)

// ValidationFailedPrefix starts the notes of every row in a failed bucket.
const ValidationFailedPrefix = "Validation failed: "

// Synthesizer renders analysis rows using the configured engine options.
type Synthesizer struct {
	opts schema.EngineOptions
}

// New returns a Synthesizer for opts. Options should already carry their defaults.
func New(opts schema.EngineOptions) *Synthesizer {
	return &Synthesizer{opts: opts}
}

// Rows builds one analysis row per classified URL in output order. Rows in failed buckets
// have every metric cell blank and notes explaining the failure.
func (s *Synthesizer) Rows(ds schema.Dataset, res classify.Result, gate validate.Gate, acc *qa.Accumulator) []schema.AnalysisRow {
	warnings := acc.NonErrorsByURL()
	urls := res.URLs()
	rows := make([]schema.AnalysisRow, 0, len(urls))
	for _, url := range urls {
		bucket := res.Declared[url]
		row := schema.AnalysisRow{
			URL:            url,
			DeclaredBucket: bucket,
			InferredBucket: res.Inferred[url],
			MatchedRule:    res.MatchedRule[url],
			Cells:          make(map[schema.Window]map[schema.Metric]schema.MetricCell, len(schema.AllWindows)),
			Blocked:        gate.Failed[bucket],
		}
		for _, w := range schema.AllWindows {
			row.Cells[w] = make(map[schema.Metric]schema.MetricCell, len(schema.AllMetrics))
			if row.Blocked {
				for _, m := range schema.AllMetrics {
					row.Cells[w][m] = schema.MetricCell{}
				}
				continue
			}
			var source *schema.Row
			if table := ds.Table(w, bucket); table != nil {
				source = table.Rows[url]
			}
			for _, m := range schema.AllMetrics {
				row.Cells[w][m] = s.cellFor(source, m)
			}
		}
		row.Notes = s.Notes(row.Blocked, gate.Reasons[bucket], warnings[url])
		rows = append(rows, row)
	}
	return rows
}

func (s *Synthesizer) cellFor(source *schema.Row, m schema.Metric) schema.MetricCell {
	if source == nil {
		return schema.MetricCell{}
	}
	currentCol, priorCol := schema.MetricPair(m)
	return s.Cell(source.Values[currentCol].N, source.Values[priorCol].N)
}

// Cell renders one metric comparison.
func (s *Synthesizer) Cell(current, prior int64) schema.MetricCell {
	return schema.MetricCell{
		Current:  strconv.FormatInt(current, 10),
		Prior:    strconv.FormatInt(prior, 10),
		AbsDelta: strconv.FormatInt(current-prior, 10),
		RelDelta: RelDelta(current, prior, s.opts.Precision, s.opts.InfinityToken),
	}
}

// RelDelta formats (current - prior) / prior as a signed percentage with the given precision.
// A zero prior yields "0%" when current is also zero and the infinity token otherwise, negated
// when current is below zero.
func RelDelta(current, prior int64, precision int, infinity string) string {
	if prior == 0 {
		switch {
		case current == 0:
			return "0%"
		case current > 0:
			return infinity
		default:
			return negate(infinity)
		}
	}
	ratio := float64(current-prior) / math.Abs(float64(prior)) * 100
	text := strconv.FormatFloat(ratio, 'f', precision, 64)
	if strings.Trim(text, "-0.") == "" {
		return strings.TrimPrefix(text, "-") + "%"
	}
	if ratio > 0 {
		return "+" + text + "%"
	}
	return text + "%"
}

func negate(token string) string {
	if rest, ok := strings.CutPrefix(token, "+"); ok {
		return "-" + rest
	}
	return "-" + token
}

// Notes renders the Data Coverage Notes cell. Failed rows start with the first error detail for
// their bucket; warnings and info issues follow in the order given.
func (s *Synthesizer) Notes(blocked bool, reason string, issues []schema.QAIssue) string {
	var parts []string
	if blocked {
		parts = append(parts, ValidationFailedPrefix+reason)
	}
	for _, issue := range issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.IssueType, issue.Detail))
	}
	return strings.Join(parts, s.opts.NoteSeparator)
}
