package ledger

import (
	"context"
	"database/sql"
	"fmt"

	txcontext "cradle/pkg/platform/tx"
)

// PostgresStore appends to and reads the identifier_history table. Appends go
// through execer so they join the reassignment transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO identifier_history (child_id, old_identifier, new_identifier, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ChildID,
		entry.OldIdentifier,
		entry.NewIdentifier,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert identifier history entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFor(ctx context.Context, childID int64) ([]Entry, error) {
	query := `
		SELECT id, child_id, old_identifier, new_identifier, reason, created_at
		FROM identifier_history
		WHERE child_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("query identifier history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ChildID, &e.OldIdentifier, &e.NewIdentifier, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identifier history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifier history: %w", err)
	}
	return entries, nil
}
