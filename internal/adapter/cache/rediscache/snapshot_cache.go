package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

const defaultSnapshotTTL = 30 * time.Second

// SnapshotCache stores JSON availability and analytics snapshots per
// event. Snapshots carry a short TTL as a backstop; the engine explicitly
// DELs both keys after every committed mutation.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

func availabilityKey(eventID uuid.UUID) string {
	return fmt.Sprintf("availability:%s", eventID)
}

func analyticsKey(eventID uuid.UUID) string {
	return fmt.Sprintf("analytics:%s", eventID)
}

func (c *SnapshotCache) GetAvailability(ctx context.Context, eventID uuid.UUID) (domain.Availability, bool, error) {
	var av domain.Availability
	ok, err := c.get(ctx, availabilityKey(eventID), &av)
	return av, ok, err
}

func (c *SnapshotCache) SetAvailability(ctx context.Context, av domain.Availability) error {
	return c.set(ctx, availabilityKey(av.EventID), av)
}

func (c *SnapshotCache) GetAnalytics(ctx context.Context, eventID uuid.UUID) (domain.EventAnalytics, bool, error) {
	var an domain.EventAnalytics
	ok, err := c.get(ctx, analyticsKey(eventID), &an)
	return an, ok, err
}

func (c *SnapshotCache) SetAnalytics(ctx context.Context, an domain.EventAnalytics) error {
	return c.set(ctx, analyticsKey(an.EventID), an)
}

// Invalidate drops both snapshots for the event in a single DEL.
func (c *SnapshotCache) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	if err := c.client.Del(ctx, availabilityKey(eventID), analyticsKey(eventID)).Err(); err != nil {
		return fmt.Errorf("invalidate snapshots: %w", err)
	}
	return nil
}

func (c *SnapshotCache) get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		// A corrupt snapshot is treated as a miss; it will be rewritten.
		return false, nil
	}
	return true, nil
}

func (c *SnapshotCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
