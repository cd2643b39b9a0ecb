package child

import (
	"context"
	"sort"
	"sync"
	"time"

	"cradle/pkg/platform/sentinel"
)

// GuardianContact is the slice of guardian data the store joins into
// identifier lookups.
type GuardianContact struct {
	Name  string
	Email string
	Phone string
}

// GuardianResolver supplies guardian contact details for joined reads. The
// postgres store does this with a SQL join; the memory store asks the
// directory.
type GuardianResolver interface {
	Contact(ctx context.Context, guardianID int64) (GuardianContact, error)
}

// InMemoryStore keeps records in process memory. It enforces the same
// identifier uniqueness the postgres schema does so service tests exercise
// the collision path.
type InMemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	records   map[int64]*Record
	guardians GuardianResolver
}

func NewInMemoryStore(guardians GuardianResolver) *InMemoryStore {
	return &InMemoryStore{
		nextID:    1,
		records:   make(map[int64]*Record),
		guardians: guardians,
	}
}

func (s *InMemoryStore) Create(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records {
		if existing.Identifier == record.Identifier {
			return sentinel.ErrConflict
		}
	}
	record.ID = s.nextID
	s.nextID++
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = record.CreatedAt
	record.Active = true
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, childID int64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[childID]
	if !ok || !record.Active {
		return Record{}, sentinel.ErrNotFound
	}
	return *record, nil
}

func (s *InMemoryStore) FindByIdentifier(_ context.Context, identifier string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.Identifier == identifier && record.Active {
			return *record, nil
		}
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByIdentifierWithGuardian(ctx context.Context, identifier string) (WithGuardian, error) {
	record, err := s.FindByIdentifier(ctx, identifier)
	if err != nil {
		return WithGuardian{}, err
	}
	joined := WithGuardian{Record: record}
	if s.guardians != nil {
		contact, err := s.guardians.Contact(ctx, record.GuardianID)
		if err != nil {
			return WithGuardian{}, err
		}
		joined.GuardianName = contact.Name
		joined.GuardianEmail = contact.Email
		joined.GuardianPhone = contact.Phone
	}
	return joined, nil
}

func (s *InMemoryStore) IdentifierInUse(_ context.Context, identifier string, excludeChildID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.Identifier == identifier && record.ID != excludeChildID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) UpdateIdentifier(_ context.Context, childID int64, identifier string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[childID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for _, other := range s.records {
		if other.ID != childID && other.Identifier == identifier {
			return sentinel.ErrConflict
		}
	}
	record.Identifier = identifier
	record.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) UpdateGuardian(_ context.Context, childID int64, guardianID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[childID]
	if !ok {
		return sentinel.ErrNotFound
	}
	record.GuardianID = guardianID
	record.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, childID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[childID]
	if !ok || !record.Active {
		return sentinel.ErrNotFound
	}
	record.Active = false
	record.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) ListForAdmin(ctx context.Context) ([]AdminListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listings []AdminListing
	for _, record := range s.records {
		if !record.Active {
			continue
		}
		listing := AdminListing{
			ChildID:    record.ID,
			Name:       record.Name,
			BirthDate:  record.BirthDate,
			Gender:     record.Gender,
			Identifier: record.Identifier,
			GuardianID: record.GuardianID,
			CreatedAt:  record.CreatedAt,
		}
		if s.guardians != nil {
			if contact, err := s.guardians.Contact(ctx, record.GuardianID); err == nil {
				listing.GuardianName = contact.Name
				listing.GuardianEmail = contact.Email
			}
		}
		listings = append(listings, listing)
	}
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].ChildID > listings[j].ChildID
		}
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}
