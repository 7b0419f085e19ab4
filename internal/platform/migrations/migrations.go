// Package migrations applies the embedded schema migrations for whichever
// local store backend is configured.
package migrations

import (
	"embed"
	"fmt"

	"database/sql"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var embedded embed.FS

// Up migrates the database to the latest schema version. dialect is the
// configured store driver, sqlite or postgres.
func Up(db *sql.DB, dialect string) error {
	var gooseDialect, dir string
	switch dialect {
	case "sqlite":
		gooseDialect, dir = "sqlite3", "sqlite"
	case "postgres":
		gooseDialect, dir = "postgres", "postgres"
	default:
		return fmt.Errorf("unknown store dialect %q", dialect)
	}

	goose.SetBaseFS(embedded)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
