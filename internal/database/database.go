// Package database opens the bun handle used by every repository and runs
// module migrations against it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	_ "modernc.org/sqlite"
)

// ErrEmptyDSN is returned when no DSN is configured.
var ErrEmptyDSN = errors.New("database DSN is empty")

// Dialect names the SQL backend selected from a DSN.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DetectDialect picks Postgres for postgres:// URLs and SQLite for anything
// else (a file path, file: URI or :memory:).
func DetectDialect(dsn string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the database described by dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}

	var db *bun.DB
	switch DetectDialect(dsn) {
	case DialectPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err := sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// SQLite serialises writers; one connection keeps transactions and
		// in-memory databases consistent.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// MigrationGroup is one module's migration set.
type MigrationGroup struct {
	Name       string
	Migrations *migrate.Migrations
}

// NewMigrator builds a migrator that tracks its state in tables named after
// the group so several modules can share one database.
func NewMigrator(db *bun.DB, group MigrationGroup) *migrate.Migrator {
	return migrate.NewMigrator(db, group.Migrations,
		migrate.WithTableName("bun_migrations_"+group.Name),
		migrate.WithLocksTableName("bun_migration_locks_"+group.Name),
	)
}

// Migrate initialises and applies every group in order.
func Migrate(ctx context.Context, db *bun.DB, groups ...MigrationGroup) error {
	for _, group := range groups {
		migrator := NewMigrator(db, group)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init migrations for %s: %w", group.Name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations for %s: %w", group.Name, err)
		}
	}
	return nil
}
