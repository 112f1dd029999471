package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var baseSchema string

// migrations[i] moves a database from user_version i to i+1.
var migrations = []string{
	baseSchema,
	`CREATE INDEX IF NOT EXISTS idx_transcripts_run ON transcripts(run_id);
     CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at);`,
}

// ErrSchemaMismatch reports a catalog written by a newer subman.
var ErrSchemaMismatch = errors.New("catalog schema is newer than this build")

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read catalog version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("%w: %s is at version %d, this build knows %d",
			ErrSchemaMismatch, s.path, version, len(migrations))
	}

	for next := version; next < len(migrations); next++ {
		if err := s.applyMigration(ctx, next); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, index int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", index+1, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrations[index]); err != nil {
		return fmt.Errorf("apply migration %d: %w", index+1, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", index+1)); err != nil {
		return fmt.Errorf("record catalog version %d: %w", index+1, err)
	}
	return tx.Commit()
}
