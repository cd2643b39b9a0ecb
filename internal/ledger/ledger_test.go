package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradle/pkg/requestcontext"
)

func TestServiceAppendStampsRequestTime(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store)
	pinned := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), pinned)

	require.NoError(t, svc.Append(ctx, 1, "BABY-2024-AAAAAAAA", "BABY-2024-BBBBBBBB", ReasonUserRequested))

	entries, err := svc.ListFor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, pinned, entries[0].CreatedAt)
	assert.Equal(t, ReasonUserRequested, entries[0].Reason)
}

func TestListForNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, svc.Append(ctx, 1, "old", "new", ReasonAdminReassignment))
	}

	entries, err := svc.ListFor(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].CreatedAt.After(entries[i].CreatedAt),
			"entries must be ordered newest-first")
	}
}

func TestListForScopedToChild(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, 1, "a", "b", ReasonUserRequested))
	require.NoError(t, svc.Append(ctx, 2, "c", "d", ReasonUserRequested))

	entries, err := svc.ListFor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ChildID)
}
