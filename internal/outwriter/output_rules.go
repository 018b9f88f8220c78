package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/seobench/core/rules"
	"github.com/huangsam/seobench/schema"
	"github.com/olekukonko/tablewriter"
)

// Rule export formats.
const (
	RulesDSLFormat  = "dsl"
	RulesYAMLFormat = "yaml"
	RulesJSONFormat = "json"
)

// WriteRules exports parsed rules to outputFile (stdout when empty) as DSL, YAML or JSON.
func (ow *OutWriter) WriteRules(outputFile, format string, list []schema.Rule) error {
	return writeWithFile(outputFile, func(w io.Writer) error {
		return writeRules(w, format, list)
	}, "Wrote rules")
}

func writeRules(w io.Writer, format string, list []schema.Rule) error {
	switch strings.ToLower(format) {
	case RulesDSLFormat, "":
		text := rules.Format(list)
		if text != "" {
			text += "\n"
		}
		_, err := io.WriteString(w, text)
		return err
	case RulesYAMLFormat:
		data, err := rules.MarshalYAML(list)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case RulesJSONFormat:
		if list == nil {
			list = []schema.Rule{}
		}
		return writeJSON(w, list)
	default:
		return fmt.Errorf("invalid rules format '%s'. must be dsl, yaml, json", format)
	}
}

// WriteRulesTable prints parsed rules in a table, one rule per row.
func (ow *OutWriter) WriteRulesTable(w io.Writer, list []schema.Rule) error {
	table := tablewriter.NewWriter(w)
	header := []string{"#", "Name", "Bucket"}
	for _, key := range rules.Keys {
		header = append(header, key)
	}
	table.Header(header)

	var data [][]string
	for i, r := range list {
		bucket := "(unknown)"
		if b, ok := schema.ParseBucket(r.Name); ok {
			bucket = string(b)
		}
		row := []string{strconv.Itoa(i + 1), r.Name, bucket}
		for _, key := range rules.Keys {
			row = append(row, strings.Join(r.Values(key), ", "))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d rules parsed\n", len(list))
	return err
}

// WriteLedgerRuns exports ledger run records to outputFile (stdout when empty) as JSON or CSV.
func (ow *OutWriter) WriteLedgerRuns(outputFile, format string, runs []schema.RunRecord) error {
	return writeWithFile(outputFile, func(w io.Writer) error {
		switch strings.ToLower(format) {
		case "csv":
			return writeLedgerRunsCSV(w, runs)
		case "json", "":
			if runs == nil {
				runs = []schema.RunRecord{}
			}
			return writeJSON(w, runs)
		default:
			return fmt.Errorf("invalid export format '%s'. must be json, csv", format)
		}
	}, "Wrote ledger runs")
}

func writeLedgerRunsCSV(w io.Writer, runs []schema.RunRecord) error {
	header := []string{"run_uuid", "run_id", "started_at", "output_dir", "validation_blocked", "row_count", "qa_issue_count", "qa_error_count"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range runs {
			rec := []string{
				r.RunUUID,
				r.RunID,
				r.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
				r.OutputDir,
				strconv.FormatBool(r.ValidationBlocked),
				strconv.Itoa(r.RowCount),
				strconv.Itoa(r.QAIssueCount),
				strconv.Itoa(r.QAErrorCount),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
