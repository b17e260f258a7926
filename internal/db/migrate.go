package db

import (
	"context"
	"fmt"
)

// migrate brings the schema up to the current version. It runs on
// every open and is idempotent.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, createSchemaVersion); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	version, err := db.schemaVersion(ctx)
	if err != nil {
		return err
	}

	if version < 1 {
		if err := db.migrateV1(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) setSchemaVersion(ctx context.Context, version int) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))", version)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// migrateV1 creates the initial tables.
func (db *DB) migrateV1(ctx context.Context) error {
	for _, stmt := range createTables {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply initial schema: %w", err)
		}
	}
	return db.setSchemaVersion(ctx, 1)
}
