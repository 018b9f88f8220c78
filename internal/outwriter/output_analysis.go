package outwriter

import (
	"encoding/csv"
	"io"

	"github.com/huangsam/seobench/schema"
)

// writeAnalysisCSV writes one record per analysis row in the stable analysis header order.
func writeAnalysisCSV(w io.Writer, rows []schema.AnalysisRow) error {
	return writeCSVWithHeader(w, schema.AnalysisHeader(), func(cw *csv.Writer) error {
		for _, row := range rows {
			if err := cw.Write(row.Record()); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeQACSV writes one record per QA issue.
func writeQACSV(w io.Writer, issues []schema.QAIssue) error {
	return writeCSVWithHeader(w, schema.QAHeader(), func(cw *csv.Writer) error {
		for _, issue := range issues {
			if err := cw.Write(issue.Record()); err != nil {
				return err
			}
		}
		return nil
	})
}

// jsonReport is the layout of analysis.json.
type jsonReport struct {
	RunID             string               `json:"run_id"`
	ValidationBlocked bool                 `json:"validation_blocked"`
	BucketOrder       []string             `json:"bucket_order"`
	Rows              []schema.AnalysisRow `json:"rows"`
	Issues            []schema.QAIssue     `json:"issues"`
}

// writeAnalysisJSON writes the report as indented JSON. Empty lists are written as [] rather than null.
func writeAnalysisJSON(w io.Writer, report *Report) error {
	out := jsonReport{
		RunID:             report.RunID,
		ValidationBlocked: report.Blocked,
		BucketOrder:       schema.BucketOrderNames(),
		Rows:              report.Rows,
		Issues:            report.Issues,
	}
	if out.Rows == nil {
		out.Rows = []schema.AnalysisRow{}
	}
	if out.Issues == nil {
		out.Issues = []schema.QAIssue{}
	}
	return writeJSON(w, out)
}
