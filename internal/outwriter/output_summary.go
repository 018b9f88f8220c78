package outwriter

import (
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/huangsam/seobench/schema"
)

// maxSummaryErrors is how many error details the QA summary quotes verbatim.
const maxSummaryErrors = 5

const qaSummaryTemplate = `SEO Benchmark QA Summary
{{ "=" | repeat 24 }}
Run ID:   {{ .RunID }}
Status:   {{ if .Blocked }}VALIDATION BLOCKED{{ else }}OK{{ end }}
Rows:     {{ .RowCount }}
Issues:   {{ .IssueCount }}

Issues by severity:
{{- range .Severities }}
  {{ .Name | upper | printf "%-8s" }} {{ .Count }}
{{- end }}

Issues by type:
{{- range .Types }}
  {{ .Name }} ({{ .Severity }}): {{ .Count }}
{{- else }}
  none
{{- end }}

First errors:
{{- range .FirstErrors }}
  - {{ . }}
{{- else }}
  none
{{- end }}
`

const promptTemplate = `You are reviewing an SEO benchmark run ({{ .RunID }}).

The analysis compares three windows for every URL:
  L3M: last 3 months vs the previous 3 months
  MoM: last month vs the previous month
  YoY: last 3 months vs the same 3 months last year
Buckets, in order: {{ .Buckets | join ", " }}.

Declared Bucket is what the exports say a page is; Inferred Bucket is what the classifier
concluded. Treat disagreements as questions for the analyst, never as corrections.
{{- if .Blocked }}

Validation failed for: {{ .FailedBuckets | join ", " }}. Metric cells in those buckets are blank;
read qa.csv and fix the exports before drawing conclusions.
{{- end }}

To repeat this run, supply the same files:
{{- range .Inputs }}
  --{{ .Key }} {{ .Path | quote }}
{{- end }}
  --metadata {{ .Metadata | quote }}

Custom rules:
{{ .Rules | default "(none)" | indent 2 }}
`

var (
	qaSummaryTmpl = template.Must(template.New("qa_summary").Funcs(sprig.TxtFuncMap()).Parse(qaSummaryTemplate))
	promptTmpl    = template.Must(template.New("prompt").Funcs(sprig.TxtFuncMap()).Parse(promptTemplate))
)

type countEntry struct {
	Name     string
	Severity string
	Count    int
}

type summaryData struct {
	RunID       string
	Blocked     bool
	RowCount    int
	IssueCount  int
	Severities  []countEntry
	Types       []countEntry
	FirstErrors []string
}

// buildSummaryData aggregates the report issues for the QA summary.
func buildSummaryData(report *Report) summaryData {
	data := summaryData{
		RunID:      report.RunID,
		Blocked:    report.Blocked,
		RowCount:   len(report.Rows),
		IssueCount: len(report.Issues),
	}

	bySeverity := make(map[schema.Severity]int)
	type typeKey struct {
		issueType schema.IssueType
		severity  schema.Severity
	}
	byType := make(map[typeKey]int)
	for _, issue := range report.Issues {
		bySeverity[issue.Severity]++
		byType[typeKey{issue.IssueType, issue.Severity}]++
		if issue.Severity == schema.ErrorSeverity && len(data.FirstErrors) < maxSummaryErrors {
			data.FirstErrors = append(data.FirstErrors, issue.Detail)
		}
	}
	for _, sev := range schema.AllSeverities {
		data.Severities = append(data.Severities, countEntry{Name: string(sev), Count: bySeverity[sev]})
	}

	keys := make([]typeKey, 0, len(byType))
	for k := range byType {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].severity.Rank() != keys[j].severity.Rank() {
			return keys[i].severity.Rank() < keys[j].severity.Rank()
		}
		return keys[i].issueType < keys[j].issueType
	})
	for _, k := range keys {
		data.Types = append(data.Types, countEntry{Name: string(k.issueType), Severity: string(k.severity), Count: byType[k]})
	}
	return data
}

// writeQASummary renders qa_summary.txt: counts by severity and issue type plus the first error details.
func writeQASummary(w io.Writer, report *Report) error {
	return qaSummaryTmpl.Execute(w, buildSummaryData(report))
}

// RenderPrompt returns the prompt.txt content for report.
func RenderPrompt(report *Report) (string, error) {
	var sb strings.Builder
	if err := writePrompt(&sb, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type promptInput struct {
	Key  string
	Path string
}

type promptData struct {
	RunID         string
	Buckets       []string
	Blocked       bool
	FailedBuckets []string
	Inputs        []promptInput
	Metadata      string
	Rules         string
}

// writePrompt renders prompt.txt, the prompt template for repeat runs.
func writePrompt(w io.Writer, report *Report) error {
	data := promptData{
		RunID:    report.RunID,
		Buckets:  schema.BucketOrderNames(),
		Blocked:  report.Blocked,
		Metadata: report.Config.MetadataPath,
		Rules:    report.Config.CustomRulesText,
	}
	failed := make(map[schema.Bucket]bool)
	for _, row := range report.Rows {
		if row.Blocked {
			failed[row.DeclaredBucket] = true
		}
	}
	for _, b := range schema.AllBuckets {
		if failed[b] {
			data.FailedBuckets = append(data.FailedBuckets, string(b))
		}
	}
	if report.Blocked && len(data.FailedBuckets) == 0 {
		data.FailedBuckets = schema.BucketOrderNames()
	}
	for _, win := range schema.AllWindows {
		for _, b := range schema.AllBuckets {
			data.Inputs = append(data.Inputs, promptInput{Key: schema.InputKey(win, b), Path: report.Config.InputPaths.Path(win, b)})
		}
	}
	return promptTmpl.Execute(w, data)
}
