// Package ledger is the append-only audit trail of identifier changes.
// Entries are written in the same transaction as the identifier update, so a
// committed reassignment always has its history row and vice versa. Entries
// are never edited or removed.
package ledger

import (
	"context"
	"time"

	"cradle/pkg/requestcontext"
)

// Fixed reason strings recorded per reassignment path.
const (
	ReasonUserRequested     = "User requested regeneration"
	ReasonAdminReassignment = "Admin reassignment"
)

// Entry records one identifier transition for a child record.
type Entry struct {
	ID            int64
	ChildID       int64
	OldIdentifier string
	NewIdentifier string
	Reason        string
	CreatedAt     time.Time
}

// Store persists ledger entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	// ListFor returns all entries for a child, newest-first.
	ListFor(ctx context.Context, childID int64) ([]Entry, error)
}

// Service stamps and appends entries. It uses the request-scoped clock so an
// entry's timestamp agrees with the updated_at the same transaction writes.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Append(ctx context.Context, childID int64, oldIdentifier, newIdentifier, reason string) error {
	return s.store.Append(ctx, Entry{
		ChildID:       childID,
		OldIdentifier: oldIdentifier,
		NewIdentifier: newIdentifier,
		Reason:        reason,
		CreatedAt:     requestcontext.Now(ctx),
	})
}

func (s *Service) ListFor(ctx context.Context, childID int64) ([]Entry, error) {
	return s.store.ListFor(ctx, childID)
}
