package repository

import (
	"context"
	"fmt"
)

const fileRecordsTable = "file_records"

// Columns of file_records, in scan order.
const (
	colID            = "id"
	colFileName      = "file_name"
	colFilePath      = "file_path"
	colSuggestedName = "suggested_name"
	colStatus        = "status"
	colCreatedAt     = "created_at"
	colUpdatedAt     = "updated_at"
)

var fileRecordColumns = []string{
	colID, colFileName, colFilePath, colSuggestedName, colStatus, colCreatedAt, colUpdatedAt,
}

// Timestamps are unix milliseconds so both dialects share one schema.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS file_records (
		id             TEXT PRIMARY KEY,
		file_name      TEXT NOT NULL,
		file_path      TEXT NOT NULL UNIQUE,
		suggested_name TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		created_at     BIGINT NOT NULL,
		updated_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS file_records_status_idx ON file_records (status)`,
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if err := db.Driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
