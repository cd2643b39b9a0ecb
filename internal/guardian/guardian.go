// Package guardian is the read-only adapter to the user-management
// collaborator. The identifier lifecycle only ever reads guardians; accounts
// are created, authenticated, and deactivated elsewhere.
package guardian

import (
	"context"
	"time"
)

// Guardian is the user record the collaborator exposes.
type Guardian struct {
	ID        int64
	FullName  string
	Email     string
	Phone     string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// Directory looks up guardians by id. Implementations return
// sentinel.ErrNotFound when no such account exists; callers decide what an
// inactive account means for their operation.
type Directory interface {
	FindByID(ctx context.Context, guardianID int64) (Guardian, error)
}
