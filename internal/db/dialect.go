package db

import (
	"strconv"
	"strings"
)

// Dialect captures the few SQL differences between the supported engines.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect struct {
	Name string
	// Fold is the SQL function used to case-fold text before LIKE matching.
	Fold string
	// numbered placeholders ($1, $2, ...) instead of '?'.
	numbered bool
}

var (
	SQLite   = Dialect{Name: DriverSQLite, Fold: "casefold"}
	Postgres = Dialect{Name: DriverPostgres, Fold: "LOWER", numbered: true}
)

// DialectFor returns the dialect spoken by the given driver name.
func DialectFor(driverName string) Dialect {
	switch driverName {
	case DriverPostgres, "postgres":
		return Postgres
	default:
		return SQLite
	}
}

// Rebind rewrites '?' placeholders into the dialect's native form. Queries
// must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Page renders a LIMIT/OFFSET clause with its arguments. A zero limit means
// no limit; SQLite only accepts OFFSET after a LIMIT, so it gets LIMIT -1.
func (d Dialect) Page(limit, offset int) (string, []any) {
	switch {
	case limit > 0:
		return " LIMIT ? OFFSET ?", []any{limit, offset}
	case offset <= 0:
		return "", nil
	case d.numbered:
		return " OFFSET ?", []any{offset}
	default:
		return " LIMIT -1 OFFSET ?", []any{offset}
	}
}
