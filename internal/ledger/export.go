package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/internal/outwriter"
	"github.com/huangsam/seobench/internal/parquet"
)

// Export writes every recorded run to outputFile as json, csv or parquet.
// JSON and CSV go to stdout when outputFile is empty; parquet requires a file.
func Export(ctx context.Context, store contract.LedgerStore, outputFile, format string, w io.Writer) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "parquet":
		if outputFile == "" {
			return errors.New("--output-file is required for parquet export")
		}
		if err := parquet.WriteRunSummariesParquet(parquet.ConvertRunRecords(runs), outputFile); err != nil {
			return fmt.Errorf("failed to write runs: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), outputFile)
		return nil
	default:
		return outwriter.NewOutWriter().WriteLedgerRuns(outputFile, format, runs)
	}
}
