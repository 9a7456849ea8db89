// Package repository persists pools and the competitor roster through sqlx.
// The same queries run against PostgreSQL (lib/pq) and SQLite (modernc);
// every statement is written with ? placeholders and rebound per driver.
package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jaektomo/SweepstakeManager/internal/config"
)

//go:embed schema.sql
var schemaSQL string

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open connects to the store described by cfg and verifies the connection.
// SQLite handles are limited to a single connection so that ":memory:"
// databases are shared by every query.
func Open(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("repository.Open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent, so it
// is safe to run on each start-up.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}
	return nil
}
