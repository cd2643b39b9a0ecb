package guardian

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cradle/pkg/platform/sentinel"
	txcontext "cradle/pkg/platform/tx"
)

// PostgresDirectory reads the guardians table owned by the user-management
// collaborator. Strictly read-only.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) FindByID(ctx context.Context, guardianID int64) (Guardian, error) {
	query := `
		SELECT id, full_name, email, phone, role, is_active, created_at
		FROM guardians
		WHERE id = $1
	`
	var row interface {
		Scan(dest ...any) error
	}
	if tx, ok := txcontext.From(ctx); ok {
		row = tx.QueryRowContext(ctx, query, guardianID)
	} else {
		row = d.db.QueryRowContext(ctx, query, guardianID)
	}

	var g Guardian
	err := row.Scan(&g.ID, &g.FullName, &g.Email, &g.Phone, &g.Role, &g.Active, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Guardian{}, sentinel.ErrNotFound
		}
		return Guardian{}, fmt.Errorf("find guardian: %w", err)
	}
	return g, nil
}
