package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cradle/internal/platform/metrics"
)

const defaultBatchSize = 100

// envelope is the JSON structure published to the broker.
type envelope struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Relay drains the outbox into the publisher on an interval. A publish
// failure leaves the row unpublished; the next tick retries it. Relay
// failures never affect the committed mutations that produced the events.
type Relay struct {
	source    Source
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewRelay(source Source, publisher Publisher, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Relay {
	return &Relay{
		source:    source,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    logger,
		metrics:   m,
	}
}

// Run drains the outbox until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// Drain publishes one batch of unpublished events and acknowledges the ones
// that made it to the broker. Returns how many were published.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	batch, err := r.source.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(batch))
	for _, event := range batch {
		body, err := json.Marshal(envelope{
			ID:          event.ID.String(),
			Type:        string(event.Type),
			AggregateID: event.AggregateID,
			Payload:     event.Payload,
			CreatedAt:   event.CreatedAt,
		})
		if err != nil {
			r.logger.ErrorContext(ctx, "marshal outbox envelope", "event_id", event.ID, "error", err)
			continue
		}
		if err := r.publisher.Publish(ctx, event.AggregateID, body); err != nil {
			if r.metrics != nil {
				r.metrics.OutboxPublishErrors.Inc()
			}
			r.logger.WarnContext(ctx, "publish outbox event failed",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err,
			)
			// Stop the batch here to preserve per-aggregate ordering.
			break
		}
		published = append(published, event.ID)
	}

	if len(published) == 0 {
		return 0, nil
	}
	if err := r.source.MarkPublished(ctx, published, time.Now()); err != nil {
		// Rows stay unpublished and will be re-sent; consumers must be
		// tolerant of duplicates (at-least-once delivery).
		return len(published), err
	}
	if r.metrics != nil {
		r.metrics.OutboxPublished.Add(float64(len(published)))
	}
	return len(published), nil
}
