package schema

import "time"

// RunRecord represents a row from the seobench_runs table.
type RunRecord struct {
	RunUUID           string    `json:"run_uuid"`
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	OutputDir         string    `json:"output_dir"`
	ValidationBlocked bool      `json:"validation_blocked"`
	RowCount          int       `json:"row_count"`
	QAIssueCount      int       `json:"qa_issue_count"`
	QAErrorCount      int       `json:"qa_error_count"`
	ConfigParams      *string   `json:"config_params,omitempty"`
}

// IssueCountRecord represents a row from the seobench_run_issues table.
type IssueCountRecord struct {
	RunUUID   string    `json:"run_uuid"`
	IssueType IssueType `json:"issue_type"`
	Severity  Severity  `json:"severity"`
	Count     int       `json:"count"`
}
