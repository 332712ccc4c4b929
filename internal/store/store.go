// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package store keeps tortoise's local state: peer aliases, the relay
// history and periodic statistics snapshots. SQLite, PostgreSQL and MySQL
// are supported through bun.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tortoise-ln/tortoise/internal/logging"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// Store is the state database. It is safe for concurrent use.
type Store struct {
	dbType string
	sql    *sql.DB
	bun    *bun.DB
}

func driverName(dbType string) string {
	// The pgx stdlib registers driver name "pgx".
	if dbType == "postgres" {
		return "pgx"
	}
	return dbType
}

func isMemorySQLite(dbType, dsn string) bool {
	return dbType == "sqlite" && (dsn == ":memory:" || strings.Contains(dsn, "mode=memory"))
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// Open connects to the database, applies pending migrations and returns a
// ready Store.
func Open(ctx context.Context, dbType, dsn string) (*Store, error) {
	switch dbType {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName(dbType), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := envInt("TORTOISE_DB_MAX_OPEN_CONNS", 10)
	maxIdle := envInt("TORTOISE_DB_MAX_IDLE_CONNS", 10)
	// Every connection to an in-memory SQLite DSN sees its own database.
	if isMemorySQLite(dbType, dsn) {
		maxOpen, maxIdle = 1, 1
	}
	connMax := time.Duration(envInt("TORTOISE_DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMax)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dbType, err)
	}
	logging.Debugf("store: opened %s driver in %s (max open=%d, max lifetime=%s)", driverName(dbType), time.Since(start), maxOpen, connMax)

	migStart := time.Now()
	if err := RunMigrations(ctx, sqlDB, dbType); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logging.Debugf("store: migrations for %s completed in %s", dbType, time.Since(migStart))

	return &Store{dbType: dbType, sql: sqlDB, bun: createBunDB(sqlDB, dbType)}, nil
}

// createBunDB wraps sqlDB with the bun dialect matching dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// Type returns the database type the store was opened with.
func (s *Store) Type() string { return s.dbType }

func (s *Store) Close() error {
	return s.bun.Close()
}

// Maintain runs engine-specific housekeeping. For SQLite it runs PRAGMA
// optimize, VACUUM and a WAL checkpoint, for Postgres VACUUM ANALYZE and for
// MySQL OPTIMIZE TABLE on every table.
func (s *Store) Maintain(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	switch s.dbType {
	case "sqlite":
		// PRAGMA optimize is not supported everywhere.
		if _, err := s.sql.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			logging.Debugf("store: sqlite optimize failed (ignored): %v", err)
		}
		if _, err := s.sql.ExecContext(ctx, "VACUUM;"); err != nil {
			return fmt.Errorf("sqlite vacuum failed: %w", err)
		}
		_, _ = s.sql.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")
		var res string
		if err := s.sql.QueryRowContext(ctx, "PRAGMA integrity_check;").Scan(&res); err == nil && res != "ok" {
			return fmt.Errorf("sqlite integrity_check failed: %s", res)
		}
	case "postgres":
		if _, err := s.sql.ExecContext(ctx, "VACUUM ANALYZE;"); err != nil {
			return fmt.Errorf("postgres vacuum failed: %w", err)
		}
	case "mysql":
		rows, err := s.sql.QueryContext(ctx, "SHOW TABLES")
		if err != nil {
			return fmt.Errorf("mysql show tables failed: %w", err)
		}
		var tables []string
		for rows.Next() {
			var table string
			if err := rows.Scan(&table); err != nil {
				_ = rows.Close()
				return fmt.Errorf("mysql read table name failed: %w", err)
			}
			tables = append(tables, table)
		}
		_ = rows.Close()
		var lastErr error
		for _, table := range tables {
			if _, err := s.sql.ExecContext(ctx, "OPTIMIZE TABLE `"+table+"`"); err != nil {
				logging.Warnf("store: mysql optimize table %s failed: %v", table, err)
				lastErr = err
			}
		}
		if lastErr != nil {
			return fmt.Errorf("mysql optimize encountered errors: %w", lastErr)
		}
	}
	return nil
}
