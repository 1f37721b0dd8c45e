package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqliteDriverName = "sqlite3_shelf"

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS books (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL CHECK (title <> ''),
	author     TEXT NOT NULL DEFAULT '',
	isbn       TEXT NOT NULL DEFAULT '',
	year       INTEGER,
	copies     INTEGER,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS books (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL CHECK (title <> ''),
	author     TEXT NOT NULL DEFAULT '',
	isbn       TEXT NOT NULL DEFAULT '',
	year       BIGINT,
	copies     BIGINT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

func init() {
	// SQLite's lower() only folds ASCII; register a Unicode-aware one so that
	// filtering matches strings.ToLower on both backends.
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("shelf_lower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(sqliteDriverName, sqlx.QUESTION)
}

// lowerFunc is the SQL function used for case-insensitive filtering.
type lowerFunc string

const (
	sqliteLower   lowerFunc = "shelf_lower"
	postgresLower lowerFunc = "lower"
)

// DB wraps a sqlx.DB with book-specific operations.
type DB struct {
	conn  *sqlx.DB
	lower lowerFunc
}

// Open opens the store for driver ("sqlite" or "postgres") and applies the schema.
// For sqlite, dsn is a file path.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite, "":
		return open(sqliteDriverName, sqliteDSN(dsn), sqliteSchemaSQL, sqliteLower)
	case DriverPostgres:
		return open("postgres", dsn, postgresSchemaSQL, postgresLower)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
}

// sqliteDSN appends the connection parameters, keeping any the caller already set.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteParams
	}
	return dsn + "?" + sqliteParams
}

func open(driverName, dsn, schema string, lower lowerFunc) (*DB, error) {
	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn, lower: lower}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
