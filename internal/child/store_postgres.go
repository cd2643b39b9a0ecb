package child

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"cradle/pkg/platform/sentinel"
	txcontext "cradle/pkg/platform/tx"
)

// PostgresStore persists child records. All statements go through execer so a
// transaction stashed in context by the service layer spans child, ledger,
// and outbox writes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// pgUniqueViolation is the class 23 code raised when the identifier unique
// constraint rejects a write.
const pgUniqueViolation = "23505"

func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return sentinel.ErrConflict
	}
	return err
}

const recordColumns = `id, name, birth_date, gender, weight_at_birth, height_at_birth,
	       blood_type, notes, guardian_id, unique_identifier, is_active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO children (
			name, birth_date, gender, weight_at_birth, height_at_birth,
			blood_type, notes, guardian_id, unique_identifier, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $10)
		RETURNING id
	`
	now := record.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	err := s.execer(ctx).QueryRowContext(ctx, query,
		record.Name,
		record.BirthDate,
		record.Gender,
		record.WeightAtBirth,
		record.HeightAtBirth,
		record.BloodType,
		record.Notes,
		record.GuardianID,
		record.Identifier,
		now,
	).Scan(&record.ID)
	if err != nil {
		if conflict := translateConflict(err); errors.Is(conflict, sentinel.ErrConflict) {
			return conflict
		}
		return fmt.Errorf("insert child record: %w", err)
	}
	record.Active = true
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, childID int64) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM children WHERE id = $1 AND is_active = TRUE`
	return s.scanRecord(s.execer(ctx).QueryRowContext(ctx, query, childID))
}

func (s *PostgresStore) FindByIdentifier(ctx context.Context, identifier string) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM children WHERE unique_identifier = $1 AND is_active = TRUE`
	return s.scanRecord(s.execer(ctx).QueryRowContext(ctx, query, identifier))
}

func (s *PostgresStore) FindByIdentifierWithGuardian(ctx context.Context, identifier string) (WithGuardian, error) {
	query := `
		SELECT c.id, c.name, c.birth_date, c.gender, c.weight_at_birth, c.height_at_birth,
		       c.blood_type, c.notes, c.guardian_id, c.unique_identifier, c.is_active,
		       c.created_at, c.updated_at,
		       g.full_name, g.email, g.phone
		FROM children c
		JOIN guardians g ON g.id = c.guardian_id
		WHERE c.unique_identifier = $1 AND c.is_active = TRUE
	`
	var joined WithGuardian
	err := s.execer(ctx).QueryRowContext(ctx, query, identifier).Scan(
		&joined.ID,
		&joined.Name,
		&joined.BirthDate,
		&joined.Gender,
		&joined.WeightAtBirth,
		&joined.HeightAtBirth,
		&joined.BloodType,
		&joined.Notes,
		&joined.GuardianID,
		&joined.Identifier,
		&joined.Active,
		&joined.CreatedAt,
		&joined.UpdatedAt,
		&joined.GuardianName,
		&joined.GuardianEmail,
		&joined.GuardianPhone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WithGuardian{}, sentinel.ErrNotFound
		}
		return WithGuardian{}, fmt.Errorf("find child with guardian: %w", err)
	}
	return joined, nil
}

func (s *PostgresStore) IdentifierInUse(ctx context.Context, identifier string, excludeChildID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM children WHERE unique_identifier = $1 AND id <> $2)`
	var inUse bool
	if err := s.execer(ctx).QueryRowContext(ctx, query, identifier, excludeChildID).Scan(&inUse); err != nil {
		return false, fmt.Errorf("check identifier in use: %w", err)
	}
	return inUse, nil
}

func (s *PostgresStore) UpdateIdentifier(ctx context.Context, childID int64, identifier string, now time.Time) error {
	query := `UPDATE children SET unique_identifier = $1, updated_at = $2 WHERE id = $3`
	res, err := s.execer(ctx).ExecContext(ctx, query, identifier, now, childID)
	if err != nil {
		if conflict := translateConflict(err); errors.Is(conflict, sentinel.ErrConflict) {
			return conflict
		}
		return fmt.Errorf("update identifier: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateGuardian(ctx context.Context, childID int64, guardianID int64, now time.Time) error {
	query := `UPDATE children SET guardian_id = $1, updated_at = $2 WHERE id = $3`
	res, err := s.execer(ctx).ExecContext(ctx, query, guardianID, now, childID)
	if err != nil {
		return fmt.Errorf("update guardian: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Deactivate(ctx context.Context, childID int64, now time.Time) error {
	query := `UPDATE children SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND is_active = TRUE`
	res, err := s.execer(ctx).ExecContext(ctx, query, now, childID)
	if err != nil {
		return fmt.Errorf("deactivate child record: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) ListForAdmin(ctx context.Context) ([]AdminListing, error) {
	query := `
		SELECT c.id, c.name, c.birth_date, c.gender, c.unique_identifier,
		       c.guardian_id, g.full_name, g.email, c.created_at
		FROM children c
		JOIN guardians g ON g.id = c.guardian_id
		WHERE c.is_active = TRUE
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list children for admin: %w", err)
	}
	defer rows.Close()

	var listings []AdminListing
	for rows.Next() {
		var l AdminListing
		if err := rows.Scan(
			&l.ChildID,
			&l.Name,
			&l.BirthDate,
			&l.Gender,
			&l.Identifier,
			&l.GuardianID,
			&l.GuardianName,
			&l.GuardianEmail,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan admin listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin listings: %w", err)
	}
	return listings, nil
}

func (s *PostgresStore) scanRecord(row *sql.Row) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.BirthDate,
		&r.Gender,
		&r.WeightAtBirth,
		&r.HeightAtBirth,
		&r.BloodType,
		&r.Notes,
		&r.GuardianID,
		&r.Identifier,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("scan child record: %w", err)
	}
	return r, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
