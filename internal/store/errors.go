package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraintKind names the relational constraint a driver error reports.
type constraintKind int

const (
	noConstraint constraintKind = iota
	foreignKey
	unique
	check
)

// Postgres SQLSTATE codes.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// classifyConstraint inspects a driver error for an integrity violation.
func classifyConstraint(err error) constraintKind {
	if err == nil {
		return noConstraint
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKey
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return unique
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return check
		}
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		switch pe.Code {
		case pgForeignKeyViolation:
			return foreignKey
		case pgUniqueViolation:
			return unique
		case pgCheckViolation:
			return check
		}
	}

	// Primary result codes only carry the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return foreignKey
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return unique
	case strings.Contains(msg, "CHECK constraint failed"):
		return check
	}
	return noConstraint
}
