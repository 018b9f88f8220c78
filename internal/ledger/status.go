package ledger

import (
	"fmt"
	"io"
	"sort"

	"github.com/huangsam/seobench/schema"
)

// PrintStatus prints ledger status information.
func PrintStatus(w io.Writer, status schema.LedgerStatus) {
	_, _ = fmt.Fprintf(w, "Ledger Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Blocked Runs: %d\n", status.BlockedRuns)
		_, _ = fmt.Fprintf(w, "Last Run ID: %s\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
	}

	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
