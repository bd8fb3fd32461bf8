package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/iliyamo/venue-directory/internal/config"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the embedded schema for driver.  Every statement uses
// CREATE ... IF NOT EXISTS so running it against an existing database is a
// no-op.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var file string
	switch driver {
	case config.DriverMySQL:
		file = "schema/mysql.sql"
	case config.DriverSQLite:
		file = "schema/sqlite.sql"
	default:
		return fmt.Errorf("database: no schema for driver %q", driver)
	}
	raw, err := schemaFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("database: reading %s: %w", file, err)
	}
	for _, stmt := range splitStatements(string(raw)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database: applying schema: %w", err)
		}
	}
	return nil
}

// splitStatements breaks a schema file into single statements so the MySQL
// driver does not need multiStatements enabled.  Lines starting with "--"
// are dropped.
func splitStatements(src string) []string {
	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
