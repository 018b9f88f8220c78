// Package ledger keeps an append-only audit log of benchmark runs in SQL.
// The engine only writes to it; the ledger commands read it back.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// sqliteTimeFormat has a fixed width so that text timestamps sort chronologically.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Table names for the run ledger.
const (
	runsTable   = "seobench_runs"
	issuesTable = "seobench_run_issues"
)

// Store implements contract.LedgerStore on top of database/sql.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.LedgerStore = &Store{} // Compile-time check

// driverName returns the database/sql driver registered for backend.
func driverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported backend: %s", backend)
}

// openDB opens and pings the database for backend. A blank SQLite path means the default file.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	name, err := driverName(backend)
	if err != nil {
		return nil, err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetLedgerDBFilePath()
	}

	db, err := sql.Open(name, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// A single connection avoids "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}
	return db, nil
}

// NewStore opens the ledger for backend and creates its tables when missing.
// NoneBackend returns a store that accepts writes and reports nothing.
func NewStore(backend schema.DatabaseBackend, connStr string) (*Store, error) {
	if backend == schema.NoneBackend || backend == "" {
		return &Store{backend: schema.NoneBackend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create ledger tables: %w", err)
	}
	return &Store{db: db, backend: backend}, nil
}

func (s *Store) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// createTables creates the ledger tables if they do not exist.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range []struct {
		name  string
		query string
	}{
		{runsTable, createRunsQuery(backend)},
		{issuesTable, createIssuesQuery(backend)},
	} {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

func createRunsQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `CREATE TABLE IF NOT EXISTS seobench_runs (
			run_uuid CHAR(36) PRIMARY KEY,
			run_id VARCHAR(15) NOT NULL,
			started_at DATETIME(6) NOT NULL,
			output_dir VARCHAR(1024) NOT NULL,
			validation_blocked BOOLEAN NOT NULL,
			row_count INT NOT NULL,
			qa_issue_count INT NOT NULL,
			qa_error_count INT NOT NULL,
			config_params TEXT
		)`
	case schema.PostgreSQLBackend:
		return `CREATE TABLE IF NOT EXISTS seobench_runs (
			run_uuid TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			output_dir TEXT NOT NULL,
			validation_blocked BOOLEAN NOT NULL,
			row_count INT NOT NULL,
			qa_issue_count INT NOT NULL,
			qa_error_count INT NOT NULL,
			config_params TEXT
		)`
	default: // SQLite
		return `CREATE TABLE IF NOT EXISTS seobench_runs (
			run_uuid TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			validation_blocked INTEGER NOT NULL,
			row_count INTEGER NOT NULL,
			qa_issue_count INTEGER NOT NULL,
			qa_error_count INTEGER NOT NULL,
			config_params TEXT
		)`
	}
}

func createIssuesQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `CREATE TABLE IF NOT EXISTS seobench_run_issues (
			run_uuid CHAR(36) NOT NULL,
			issue_type VARCHAR(64) NOT NULL,
			severity VARCHAR(16) NOT NULL,
			issue_count INT NOT NULL,
			PRIMARY KEY (run_uuid, issue_type, severity)
		)`
	case schema.PostgreSQLBackend:
		return `CREATE TABLE IF NOT EXISTS seobench_run_issues (
			run_uuid TEXT NOT NULL,
			issue_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			issue_count INT NOT NULL,
			PRIMARY KEY (run_uuid, issue_type, severity)
		)`
	default: // SQLite
		return `CREATE TABLE IF NOT EXISTS seobench_run_issues (
			run_uuid TEXT NOT NULL,
			issue_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			issue_count INTEGER NOT NULL,
			PRIMARY KEY (run_uuid, issue_type, severity)
		)`
	}
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func rebind(backend schema.DatabaseBackend, query string) string {
	if backend != schema.PostgreSQLBackend {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// RecordRun stores a run and its issue counts in one transaction.
func (s *Store) RecordRun(ctx context.Context, run schema.RunRecord, counts []schema.IssueCountRecord) error {
	if s.disabled() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runQuery := rebind(s.backend, `INSERT INTO seobench_runs (run_uuid, run_id, started_at, output_dir,
		validation_blocked, row_count, qa_issue_count, qa_error_count, config_params)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, runQuery,
		run.RunUUID, run.RunID, formatTime(run.StartedAt, s.backend), run.OutputDir,
		run.ValidationBlocked, run.RowCount, run.QAIssueCount, run.QAErrorCount, run.ConfigParams,
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	issueQuery := rebind(s.backend, `INSERT INTO seobench_run_issues (run_uuid, issue_type, severity, issue_count)
		VALUES (?, ?, ?, ?)`)
	for _, c := range counts {
		if _, err := tx.ExecContext(ctx, issueQuery, run.RunUUID, string(c.IssueType), string(c.Severity), c.Count); err != nil {
			return fmt.Errorf("failed to insert issue count %s/%s: %w", c.IssueType, c.Severity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

// ListRuns returns every recorded run ordered by start time.
func (s *Store) ListRuns(ctx context.Context) ([]schema.RunRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT run_uuid, run_id, started_at, output_dir, validation_blocked,
		row_count, qa_issue_count, qa_error_count, config_params
		FROM seobench_runs ORDER BY started_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		if err := rows.Scan(&record.RunUUID, &record.RunID, s.timeScanner(&record.StartedAt), &record.OutputDir,
			&record.ValidationBlocked, &record.RowCount, &record.QAIssueCount, &record.QAErrorCount,
			&record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// ListIssueCounts returns every recorded issue count ordered by run and issue type.
func (s *Store) ListIssueCounts(ctx context.Context) ([]schema.IssueCountRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT run_uuid, issue_type, severity, issue_count
		FROM seobench_run_issues ORDER BY run_uuid, issue_type, severity`)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.IssueCountRecord
	for rows.Next() {
		var record schema.IssueCountRecord
		var issueType, severity string
		if err := rows.Scan(&record.RunUUID, &issueType, &severity, &record.Count); err != nil {
			return nil, fmt.Errorf("failed to scan issue count: %w", err)
		}
		record.IssueType = schema.IssueType(issueType)
		record.Severity = schema.Severity(severity)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue counts: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the ledger.
func (s *Store) GetStatus(ctx context.Context) (schema.LedgerStatus, error) {
	status := schema.LedgerStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.disabled() {
		return status, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(CASE WHEN validation_blocked THEN 1 ELSE 0 END), 0) FROM seobench_runs`)
	if err := row.Scan(&status.TotalRuns, &status.BlockedRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row = s.db.QueryRowContext(ctx, `SELECT run_id, started_at FROM seobench_runs ORDER BY started_at DESC, run_id DESC LIMIT 1`)
		if err := row.Scan(&status.LastRunID, s.timeScanner(&status.LastRunTime)); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		row = s.db.QueryRowContext(ctx, `SELECT started_at FROM seobench_runs ORDER BY started_at ASC LIMIT 1`)
		if err := row.Scan(s.timeScanner(&status.OldestRunTime)); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	for _, table := range []string{runsTable, issuesTable} {
		var count int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// Clear removes all recorded runs.
func (s *Store) Clear(ctx context.Context) error {
	if s.disabled() {
		return nil
	}
	for _, table := range []string{issuesTable, runsTable} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// formatTime converts t to the storage format of the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(sqliteTimeFormat)
	}
	return t
}

// timeColumn scans a timestamp stored as RFC 3339 text (SQLite) or a native datetime.
type timeColumn struct {
	dest *time.Time
	text bool
}

func (s *Store) timeScanner(dest *time.Time) *timeColumn {
	return &timeColumn{dest: dest, text: s.backend == schema.SQLiteBackend}
}

// Scan implements sql.Scanner.
func (c *timeColumn) Scan(src any) error {
	if !c.text {
		var t sql.NullTime
		if err := t.Scan(src); err != nil {
			return err
		}
		*c.dest = t.Time
		return nil
	}

	var raw sql.NullString
	if err := raw.Scan(src); err != nil {
		return err
	}
	if !raw.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", raw.String, err)
	}
	*c.dest = t
	return nil
}
