package schema

import "time"

// LedgerStatus represents the status of the run ledger.
type LedgerStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	BlockedRuns   int              `json:"blocked_runs"`
	LastRunID     string           `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
