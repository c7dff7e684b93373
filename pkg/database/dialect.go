package database

import "github.com/jmoiron/sqlx"

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

type LockMode int

const (
	LockNone LockMode = iota
	LockShare
	LockUpdate
)

func DialectOf(db *sqlx.DB) Dialect {
	switch db.DriverName() {
	case "sqlite", "sqlite3":
		return SQLite
	default:
		return Postgres
	}
}

// LockClause returns the row-locking suffix for a SELECT. SQLite has no row locks;
// it serializes writers for the whole database instead, so the clause is empty.
func (d Dialect) LockClause(mode LockMode) string {
	if d != Postgres {
		return ""
	}
	switch mode {
	case LockShare:
		return " FOR SHARE"
	case LockUpdate:
		return " FOR UPDATE"
	default:
		return ""
	}
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}
