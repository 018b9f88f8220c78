package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSummaryTable prints the human-readable run summary: one table of buckets, one of
// issue counts, and the output location.
func (ow *OutWriter) WriteSummaryTable(w io.Writer, report *Report, files RunFiles, cfg *contract.Config) error {
	if err := writeBucketTable(w, report, cfg); err != nil {
		return err
	}
	if len(report.Issues) > 0 {
		if err := writeIssueTable(w, report, cfg); err != nil {
			return err
		}
	}
	status := contract.GetStatusLabel(report.Blocked, cfg.UseColors)
	_, err := fmt.Fprintf(w, "Run %s: %s, %d rows, %d issues (%d errors). Outputs in %s\n",
		report.RunID, status, len(report.Rows), len(report.Issues), report.ErrorCount(), files.Dir)
	return err
}

type bucketStats struct {
	urls      int
	conflicts int
	blocked   bool
}

func writeBucketTable(w io.Writer, report *Report, cfg *contract.Config) error {
	stats := make(map[schema.Bucket]*bucketStats, len(schema.AllBuckets))
	for _, b := range schema.AllBuckets {
		stats[b] = &bucketStats{}
	}
	for _, row := range report.Rows {
		s, ok := stats[row.DeclaredBucket]
		if !ok {
			continue
		}
		s.urls++
		if row.InferredBucket != row.DeclaredBucket {
			s.conflicts++
		}
		if row.Blocked {
			s.blocked = true
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Bucket", "URLs", "Type Conflicts", "Status"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, b := range schema.AllBuckets {
		s := stats[b]
		data = append(data, []string{
			string(b),
			strconv.Itoa(s.urls),
			strconv.Itoa(s.conflicts),
			contract.GetStatusLabel(s.blocked, cfg.UseColors),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeIssueTable(w io.Writer, report *Report, cfg *contract.Config) error {
	data := buildSummaryData(report)
	firstDetail := make(map[string]string)
	for _, issue := range report.Issues {
		key := string(issue.IssueType) + "|" + string(issue.Severity)
		if _, ok := firstDetail[key]; !ok {
			firstDetail[key] = issue.Detail
		}
	}

	width := GetMaxTableDetailWidth(cfg)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Issue Type", "Severity", "Count", "Example"})
	var rows [][]string
	for _, entry := range data.Types {
		severity := contract.GetPlainSeverity(schema.Severity(entry.Severity))
		if cfg.UseColors {
			severity = contract.GetColorSeverity(schema.Severity(entry.Severity))
		}
		rows = append(rows, []string{
			entry.Name,
			severity,
			strconv.Itoa(entry.Count),
			contract.TruncateText(firstDetail[entry.Name+"|"+entry.Severity], width),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
