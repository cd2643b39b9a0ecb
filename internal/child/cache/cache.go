// Package cache is a read-through Redis cache for identifier lookups.
// Validation is the hot public path (QR scans, clinic check-ins); everything
// else goes straight to the store. Cache failures degrade to store reads and
// never fail a request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cradle/internal/child"
	"cradle/internal/platform/metrics"
)

const keyPrefix = "cradle:child:identifier:"

type LookupCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *LookupCache {
	return &LookupCache{client: client, ttl: ttl, logger: logger, metrics: m}
}

// Get returns the cached record for an identifier, if present and fresh.
func (c *LookupCache) Get(ctx context.Context, identifier string) (child.Record, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+identifier).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.DebugContext(ctx, "lookup cache get failed", "error", err)
		}
		c.miss()
		return child.Record{}, false
	}
	var record child.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		c.logger.DebugContext(ctx, "lookup cache entry corrupt, dropping", "identifier", identifier)
		_ = c.client.Del(ctx, keyPrefix+identifier).Err()
		c.miss()
		return child.Record{}, false
	}
	c.hit()
	return record, true
}

// Set caches a record under its identifier.
func (c *LookupCache) Set(ctx context.Context, identifier string, record child.Record) {
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+identifier, raw, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "lookup cache set failed", "error", err)
	}
}

// Invalidate drops cached entries after any identifier mutation. Both the old
// and new identifier must be passed so a retired identifier can't validate
// from a stale cache entry.
func (c *LookupCache) Invalidate(ctx context.Context, identifiers ...string) {
	keys := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		if identifier != "" {
			keys = append(keys, keyPrefix+identifier)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "lookup cache invalidation failed", "error", err)
	}
}

func (c *LookupCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *LookupCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
