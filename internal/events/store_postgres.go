package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	txcontext "cradle/pkg/platform/tx"
)

// PostgresStore is the outbox table. Record goes through execer so the event
// commits or rolls back with the mutation that produced it; the relay's reads
// and acknowledgements run outside any transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Record(ctx context.Context, eventType Type, aggregateID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	query := `
		INSERT INTO outbox (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		aggregateID,
		string(eventType),
		body,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var batch []Event
	for rows.Next() {
		var (
			e         Event
			eventType string
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &eventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Type = Type(eventType)
		batch = append(batch, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return batch, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE outbox SET published_at = $1 WHERE id = ANY($2)`
	if _, err := s.db.ExecContext(ctx, query, at, ids); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
