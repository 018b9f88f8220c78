package ledger

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/seobench/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationDir maps a backend to its directory under migrations/.
var migrationDir = map[schema.DatabaseBackend]string{
	schema.SQLiteBackend:     "sqlite",
	schema.MySQLBackend:      "mysql",
	schema.PostgreSQLBackend: "postgres",
}

// Migrate runs schema migrations for the ledger and reports progress to w.
//   - If targetVersion < 0, it migrates to the latest version.
//   - If targetVersion == 0, it rolls back all migrations.
//   - If targetVersion > 0, it migrates to the specified version.
func Migrate(backend schema.DatabaseBackend, connStr string, targetVersion int, w io.Writer) error {
	if backend == schema.NoneBackend || backend == "" {
		return fmt.Errorf("migrations are not supported for the none backend")
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+migrationDir[backend])
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "seobench", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		_, _ = fmt.Fprintf(w, "No migration needed. Ledger is already at version %d\n", currentVersion)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to migrate ledger: %w", err)
	}

	newVersion, _, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		newVersion = 0
	}
	_, _ = fmt.Fprintf(w, "Successfully migrated ledger from version %d to version %d\n", currentVersion, newVersion)
	return nil
}
