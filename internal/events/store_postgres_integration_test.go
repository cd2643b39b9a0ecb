//go:build integration

package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cradle/internal/events"
	txcontext "cradle/pkg/platform/tx"
	"cradle/pkg/testutil/containers"
)

type PostgresOutboxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *events.PostgresStore
}

func TestPostgresOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresOutboxSuite))
}

func (s *PostgresOutboxSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = events.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresOutboxSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox"))
}

func (s *PostgresOutboxSuite) record(aggregateID string) {
	err := s.store.Record(context.Background(), events.TypeIdentifierRegenerated, aggregateID, map[string]string{
		"old_identifier": "BABY-2026-AAAAAAAA",
		"new_identifier": "BABY-2026-BBBBBBBB",
	})
	s.Require().NoError(err)
}

func (s *PostgresOutboxSuite) TestFetchUnpublishedOldestFirst() {
	ctx := context.Background()
	s.record("1")
	s.record("2")
	s.record("3")

	batch, err := s.store.FetchUnpublished(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(batch, 2)
	s.Equal("1", batch[0].AggregateID)
	s.Equal("2", batch[1].AggregateID)
	s.Equal(events.TypeIdentifierRegenerated, batch[0].Type)
	s.JSONEq(`{"old_identifier":"BABY-2026-AAAAAAAA","new_identifier":"BABY-2026-BBBBBBBB"}`, string(batch[0].Payload))
}

// TestMarkPublishedAcksBatch exercises the uuid-array acknowledgement against
// a real driver: acked rows get a publication timestamp and stop coming back.
func (s *PostgresOutboxSuite) TestMarkPublishedAcksBatch() {
	ctx := context.Background()
	s.record("1")
	s.record("2")
	s.record("3")

	batch, err := s.store.FetchUnpublished(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(batch, 2)

	ids := []uuid.UUID{batch[0].ID, batch[1].ID}
	s.Require().NoError(s.store.MarkPublished(ctx, ids, time.Now()))

	remaining, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal("3", remaining[0].AggregateID)

	var published int
	err = s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbox WHERE published_at IS NOT NULL`,
	).Scan(&published)
	s.Require().NoError(err)
	s.Equal(2, published)
}

func (s *PostgresOutboxSuite) TestMarkPublishedEmptyBatchIsNoop() {
	s.NoError(s.store.MarkPublished(context.Background(), nil, time.Now()))
}

// TestRecordRollsBackWithTransaction pins the outbox write to the surrounding
// transaction: an aborted mutation must not leak its event.
func (s *PostgresOutboxSuite) TestRecordRollsBackWithTransaction() {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)

	err = s.store.Record(txcontext.WithTx(ctx, tx), events.TypeChildRegistered, "9", map[string]string{"name": "Aria"})
	s.Require().NoError(err)
	s.Require().NoError(tx.Rollback())

	batch, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(batch)
}
