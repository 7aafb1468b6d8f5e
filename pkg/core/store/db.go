// Package store - Postgres connection management
// Backs the optional persistence of historical mapping outcomes and
// generated reports. The rest of the pipeline runs fully in-memory when
// DATABASE_URL is not set.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the database connection pool using the DATABASE_URL environment variable
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the database connection pool
func GetPool() *pgxpool.Pool {
	return pool
}

// EnsureSchema creates the mapping-history table when it does not exist
func EnsureSchema(ctx context.Context) error {
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS mapping_history (
			source_column  TEXT NOT NULL,
			target_field   TEXT NOT NULL,
			document_type  TEXT NOT NULL,
			success_count  BIGINT NOT NULL DEFAULT 0,
			total_count    BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (source_column, target_field, document_type)
		)`)
	if err != nil {
		return fmt.Errorf("ensure mapping_history schema: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ingestion_reports (
			source_path    TEXT PRIMARY KEY,
			report_id      TEXT NOT NULL,
			document_type  TEXT NOT NULL,
			report_json    JSONB NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure ingestion_reports schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}
