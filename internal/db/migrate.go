package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS appointments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	name TEXT NOT NULL,
	phone TEXT,
	notes TEXT,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments (date);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS appointments (
	id BIGSERIAL PRIMARY KEY,
	date TEXT NOT NULL,
	name TEXT NOT NULL,
	phone TEXT,
	notes TEXT,
	created_at TEXT NOT NULL DEFAULT to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
);

CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments (date);
`

// Migrate creates the appointments table and its date index. Both statements
// are idempotent so the migration can run on every startup.
func Migrate(ctx context.Context, database *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == DialectPostgres {
		schema = postgresSchema
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}
