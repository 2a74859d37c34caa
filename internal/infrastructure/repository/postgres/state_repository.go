package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

const schemaLockID int64 = 2026101501

// StateRepository keeps the whole ledger document in one row keyed by name.
// The document is stored as TEXT so the pretty-printed layout survives.
type StateRepository struct {
	db  *sql.DB
	key string
}

func NewStateRepository(db *sql.DB, key string) *StateRepository {
	if key == "" {
		key = "default"
	}
	return &StateRepository{db: db, key: key}
}

func (r *StateRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/cli startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS intake_state (
	state_key TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *StateRepository) Read(ctx context.Context) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document FROM intake_state
WHERE state_key = $1
`, r.key)

	var document string
	if err := row.Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrStateNotFound, "read state", fmt.Errorf("key=%s", r.key))
		}
		return nil, domain.WrapError(domain.ErrStoreUnavailable, "read state", err)
	}
	return []byte(document), nil
}

func (r *StateRepository) Write(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO intake_state (state_key, document, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (state_key) DO UPDATE
SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
`, r.key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}
