//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestSeobenchWithMySQL tests the seobench CLI with a MySQL ledger.
func TestSeobenchWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "seobench",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/seobench?parseTime=true&multiStatements=true", host, port.Port())
	exerciseLedger(t, []string{
		"SEOBENCH_LEDGER_BACKEND=mysql",
		"SEOBENCH_LEDGER_DB_CONNECT=" + connStr,
	})
}

// TestSeobenchWithPostgres tests the seobench CLI with a PostgreSQL ledger.
func TestSeobenchWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseLedger(t, []string{
		"SEOBENCH_LEDGER_BACKEND=postgresql",
		"SEOBENCH_LEDGER_DB_CONNECT=" + connStr,
	})
}

// exerciseLedger migrates, records a run, checks status and clears the ledger.
func exerciseLedger(t *testing.T, env []string) {
	t.Helper()
	dir := writeFixtures(t)

	_, err := runSeobench(t, dir, env, "ledger", "migrate")
	require.NoError(t, err)

	_, err = runSeobench(t, dir, env, "ledger", "clear")
	require.NoError(t, err)

	_, err = runSeobench(t, dir, env, "run", "--input-dir", ".", "--output-root", "out", "--quiet")
	require.NoError(t, err)

	status, err := runSeobench(t, dir, env, "ledger", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 1")

	_, err = runSeobench(t, dir, env, "ledger", "export", "--format", "csv")
	require.NoError(t, err)
}
