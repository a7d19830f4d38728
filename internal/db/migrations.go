package db

import (
	"database/sql"
	"fmt"
)

// column is a column added to a table after its first release.
type column struct {
	table, name, definition string
}

// migrations are applied in order after schema creation. Each must be
// idempotent. Append new migrations at the end.
var migrations = []column{
	// Migration 1: account status for admin blocking.
	{"users", "status", "TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'blocked'))"},
}

// Migrate brings tables created by an older schema up to date.
func Migrate(db *sql.DB, d Dialect) error {
	for i, m := range migrations {
		if err := addColumn(db, d, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}

func addColumn(db *sql.DB, d Dialect, c column) error {
	if d.Name == DriverPostgres {
		_, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s`, c.table, c.name, c.definition))
		return err
	}

	// SQLite has no IF NOT EXISTS for columns.
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, c.table, c.name).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, c.table, c.name, c.definition))
	return err
}
