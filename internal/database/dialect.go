package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect abstracts the differences between the supported SQL backends.
// Queries are written with ? placeholders and rewritten per dialect.
type Dialect interface {
	DriverName() string
	DSN(cfg DialectConfig) string
	RewriteQuery(query string) string
	ConfigureConnection(db *sql.DB, cfg DialectConfig) error
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string
}

// DialectConfig holds connection parameters.
type DialectConfig struct {
	Path string // sqlite file path
	URL  string // postgres/mysql connection string
}

var placeholderRegexp = regexp.MustCompile(`\?`)

func rewritePlaceholdersToNumbered(query string) string {
	n := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
}

// SQLiteDialect implements Dialect for SQLite.
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect { return &SQLiteDialect{} }

func (d *SQLiteDialect) DriverName() string               { return "sqlite3" }
func (d *SQLiteDialect) DSN(cfg DialectConfig) string     { return cfg.Path }
func (d *SQLiteDialect) RewriteQuery(query string) string { return query }
func (d *SQLiteDialect) MigrationsSubdir() string         { return "sqlite" }

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB, cfg DialectConfig) error {
	if cfg.Path == ":memory:" {
		// A pooled in-memory database is one database per connection;
		// a single connection keeps every query on the same one.
		db.SetMaxOpenConns(1)
	} else {
		configurePool(db)
		// WAL mode for better concurrency between the API and background jobs
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return err
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}
	return nil
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT UNIQUE NOT NULL,
		executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
}

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect { return &PostgresDialect{} }

func (d *PostgresDialect) DriverName() string           { return "postgres" }
func (d *PostgresDialect) DSN(cfg DialectConfig) string { return cfg.URL }
func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}
func (d *PostgresDialect) MigrationsSubdir() string { return "postgres" }

func (d *PostgresDialect) ConfigureConnection(db *sql.DB, cfg DialectConfig) error {
	configurePool(db)
	return nil
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT UNIQUE NOT NULL,
		executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`
}

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect { return &MySQLDialect{} }

func (d *MySQLDialect) DriverName() string { return "mysql" }

// DSN returns the MySQL connection string. Migration files run as
// multi-statement scripts, so multiStatements is forced on unless the
// configured DSN already sets it.
func (d *MySQLDialect) DSN(cfg DialectConfig) string {
	if strings.Contains(cfg.URL, "multiStatements=") {
		return cfg.URL
	}
	sep := "?"
	if strings.Contains(cfg.URL, "?") {
		sep = "&"
	}
	return cfg.URL + sep + "multiStatements=true"
}

func (d *MySQLDialect) RewriteQuery(query string) string { return query }
func (d *MySQLDialect) MigrationsSubdir() string         { return "mysql" }

func (d *MySQLDialect) ConfigureConnection(db *sql.DB, cfg DialectConfig) error {
	configurePool(db)
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}
	return nil
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		filename VARCHAR(255) UNIQUE NOT NULL,
		executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
	);`
}
