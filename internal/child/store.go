package child

import (
	"context"
	"time"
)

// Store persists child records. Lookups by identifier only ever see active
// records; soft-deleted rows keep their identifier reserved but are invisible.
//
// Implementations return pkg/platform/sentinel errors: ErrNotFound for
// missing/inactive rows, ErrConflict when the identifier unique constraint
// rejects a write. Services translate those into coded domain errors.
type Store interface {
	// Create inserts an active record and fills in ID/CreatedAt/UpdatedAt.
	Create(ctx context.Context, record *Record) error

	// FindByID returns the active record with the given primary key.
	FindByID(ctx context.Context, childID int64) (Record, error)

	// FindByIdentifier returns the active record holding the identifier.
	// Case-sensitive exact match.
	FindByIdentifier(ctx context.Context, identifier string) (Record, error)

	// FindByIdentifierWithGuardian is FindByIdentifier joined with the owning
	// guardian's contact details.
	FindByIdentifierWithGuardian(ctx context.Context, identifier string) (WithGuardian, error)

	// IdentifierInUse reports whether any record other than excludeChildID
	// holds the identifier, active or not.
	IdentifierInUse(ctx context.Context, identifier string, excludeChildID int64) (bool, error)

	// UpdateIdentifier overwrites the record's identifier.
	UpdateIdentifier(ctx context.Context, childID int64, identifier string, now time.Time) error

	// UpdateGuardian moves the record to a new owning guardian.
	UpdateGuardian(ctx context.Context, childID int64, guardianID int64, now time.Time) error

	// Deactivate soft-deletes the record.
	Deactivate(ctx context.Context, childID int64, now time.Time) error

	// ListForAdmin returns all active records with guardian contact info,
	// newest-first.
	ListForAdmin(ctx context.Context) ([]AdminListing, error)
}
