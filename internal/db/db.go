// Package db provides PostgreSQL storage for users, projects and the
// campaign assets generated for them.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// EnsureSchema creates any missing tables and indexes. Safe to run repeatedly.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Schema returns the DDL applied by EnsureSchema.
func Schema() string {
	return schemaSQL
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// deleteOwned removes one row from table when it belongs to userID and
// reports whether a row matched.
func (db *DB) deleteOwned(ctx context.Context, table string, id, userID uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table),
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return result.RowsAffected() > 0, nil
}
