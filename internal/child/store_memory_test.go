package child

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradle/pkg/platform/sentinel"
)

func newRecord(identifier string, guardianID int64) *Record {
	return &Record{
		Name:       "Aria",
		BirthDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Gender:     "female",
		GuardianID: guardianID,
		Identifier: identifier,
	}
}

func TestInMemoryStoreCreateAssignsIDs(t *testing.T) {
	store := NewInMemoryStore(nil)
	ctx := context.Background()

	first := newRecord("BABY-2024-AAAAAAAA", 1)
	second := newRecord("BABY-2024-BBBBBBBB", 1)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.True(t, first.Active)
}

func TestInMemoryStoreCreateRejectsDuplicateIdentifier(t *testing.T) {
	store := NewInMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newRecord("BABY-2024-AAAAAAAA", 1)))
	err := store.Create(ctx, newRecord("BABY-2024-AAAAAAAA", 2))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemoryStoreLookupIgnoresInactive(t *testing.T) {
	store := NewInMemoryStore(nil)
	ctx := context.Background()

	record := newRecord("BABY-2024-AAAAAAAA", 1)
	require.NoError(t, store.Create(ctx, record))
	require.NoError(t, store.Deactivate(ctx, record.ID, time.Now()))

	_, err := store.FindByIdentifier(ctx, "BABY-2024-AAAAAAAA")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = store.FindByID(ctx, record.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// The identifier stays reserved even after soft delete.
	inUse, err := store.IdentifierInUse(ctx, "BABY-2024-AAAAAAAA", 0)
	require.NoError(t, err)
	assert.True(t, inUse)
}

func TestInMemoryStoreLookupIsCaseSensitive(t *testing.T) {
	store := NewInMemoryStore(nil)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newRecord("BABY-2024-ABCDEF12", 1)))

	_, err := store.FindByIdentifier(ctx, "baby-2024-abcdef12")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreUpdateIdentifierConflict(t *testing.T) {
	store := NewInMemoryStore(nil)
	ctx := context.Background()

	a := newRecord("BABY-2024-AAAAAAAA", 1)
	b := newRecord("BABY-2024-BBBBBBBB", 2)
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	err := store.UpdateIdentifier(ctx, b.ID, "BABY-2024-AAAAAAAA", time.Now())
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	unchanged, err := store.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "BABY-2024-BBBBBBBB", unchanged.Identifier)
}

func TestInMemoryStoreListForAdminNewestFirst(t *testing.T) {
	store := NewInMemoryStore(nil)
	ctx := context.Background()

	old := newRecord("BABY-2023-AAAAAAAA", 1)
	old.CreatedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := newRecord("BABY-2024-BBBBBBBB", 1)
	recent.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, old))
	require.NoError(t, store.Create(ctx, recent))

	listings, err := store.ListForAdmin(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, recent.ID, listings[0].ChildID)
	assert.Equal(t, old.ID, listings[1].ChildID)
}
