package guardian

import (
	"context"
	"sync"

	"cradle/internal/child"
	"cradle/pkg/platform/sentinel"
)

// InMemoryDirectory backs tests and local development.
type InMemoryDirectory struct {
	mu        sync.RWMutex
	guardians map[int64]Guardian
}

func NewInMemoryDirectory(guardians ...Guardian) *InMemoryDirectory {
	d := &InMemoryDirectory{guardians: make(map[int64]Guardian)}
	for _, g := range guardians {
		d.guardians[g.ID] = g
	}
	return d
}

func (d *InMemoryDirectory) Put(g Guardian) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.guardians[g.ID] = g
}

func (d *InMemoryDirectory) FindByID(_ context.Context, guardianID int64) (Guardian, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.guardians[guardianID]
	if !ok {
		return Guardian{}, sentinel.ErrNotFound
	}
	return g, nil
}

// Contact satisfies child.GuardianResolver so the in-memory child store can
// join guardian details the way the postgres store does with SQL.
func (d *InMemoryDirectory) Contact(ctx context.Context, guardianID int64) (child.GuardianContact, error) {
	g, err := d.FindByID(ctx, guardianID)
	if err != nil {
		return child.GuardianContact{}, err
	}
	return child.GuardianContact{Name: g.FullName, Email: g.Email, Phone: g.Phone}, nil
}
