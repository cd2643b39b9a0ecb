//go:build integration

package child_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cradle/internal/child"
	"cradle/pkg/platform/sentinel"
	"cradle/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *child.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = child.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "identifier_history", "outbox", "children", "guardians"))
	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO guardians (full_name, email, phone, role, is_active)
		VALUES ('Maya Chen', 'maya@example.com', '+62-811', 'patient', TRUE),
		       ('Dewi Putri', 'dewi@example.com', '', 'patient', TRUE)
	`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newRecord(identifier string) *child.Record {
	return &child.Record{
		Name:       "Aria",
		BirthDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Gender:     "female",
		GuardianID: 1,
		Identifier: identifier,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	record := s.newRecord("BABY-2026-1A2B3C4D")
	s.Require().NoError(s.store.Create(ctx, record))
	s.NotZero(record.ID)

	byID, err := s.store.FindByID(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal("BABY-2026-1A2B3C4D", byID.Identifier)

	byIdentifier, err := s.store.FindByIdentifier(ctx, "BABY-2026-1A2B3C4D")
	s.Require().NoError(err)
	s.Equal(record.ID, byIdentifier.ID)

	_, err = s.store.FindByIdentifier(ctx, "baby-2026-1a2b3c4d")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUniqueConstraintOnCreate() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newRecord("BABY-2026-SAME0000")))

	err := s.store.Create(ctx, s.newRecord("BABY-2026-SAME0000"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUniqueConstraintOnUpdate() {
	ctx := context.Background()
	first := s.newRecord("BABY-2026-AAAA0000")
	second := s.newRecord("BABY-2026-BBBB0000")
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	err := s.store.UpdateIdentifier(ctx, second.ID, "BABY-2026-AAAA0000", time.Now())
	s.ErrorIs(err, sentinel.ErrConflict)
}

// TestConcurrentIdentifierClaim verifies the constraint serializes concurrent
// writers claiming the same identifier: exactly one wins.
func (s *PostgresStoreSuite) TestConcurrentIdentifierClaim() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, s.newRecord("BABY-2026-RACE0000"))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestDeactivateHidesButReserves() {
	ctx := context.Background()
	record := s.newRecord("BABY-2026-CCCC0000")
	s.Require().NoError(s.store.Create(ctx, record))
	s.Require().NoError(s.store.Deactivate(ctx, record.ID, time.Now()))

	_, err := s.store.FindByID(ctx, record.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByIdentifier(ctx, "BABY-2026-CCCC0000")
	s.ErrorIs(err, sentinel.ErrNotFound)

	inUse, err := s.store.IdentifierInUse(ctx, "BABY-2026-CCCC0000", 0)
	s.Require().NoError(err)
	s.True(inUse)

	err = s.store.Create(ctx, s.newRecord("BABY-2026-CCCC0000"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindByIdentifierWithGuardian() {
	ctx := context.Background()
	record := s.newRecord("BABY-2026-DDDD0000")
	s.Require().NoError(s.store.Create(ctx, record))

	joined, err := s.store.FindByIdentifierWithGuardian(ctx, "BABY-2026-DDDD0000")
	s.Require().NoError(err)
	s.Equal("Maya Chen", joined.GuardianName)
	s.Equal("maya@example.com", joined.GuardianEmail)
	s.Equal("+62-811", joined.GuardianPhone)
}

func (s *PostgresStoreSuite) TestUpdateGuardianAndAdminListing() {
	ctx := context.Background()
	record := s.newRecord("BABY-2026-EEEE0000")
	s.Require().NoError(s.store.Create(ctx, record))
	s.Require().NoError(s.store.UpdateGuardian(ctx, record.ID, 2, time.Now()))

	listings, err := s.store.ListForAdmin(ctx)
	s.Require().NoError(err)
	s.Require().Len(listings, 1)
	s.Equal(int64(2), listings[0].GuardianID)
	s.Equal("Dewi Putri", listings[0].GuardianName)
}

func (s *PostgresStoreSuite) TestUpdateMissingRecord() {
	ctx := context.Background()
	s.ErrorIs(s.store.UpdateIdentifier(ctx, 404, "BABY-2026-FFFF0000", time.Now()), sentinel.ErrNotFound)
	s.ErrorIs(s.store.UpdateGuardian(ctx, 404, 1, time.Now()), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Deactivate(ctx, 404, time.Now()), sentinel.ErrNotFound)
}
