package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// Store keeps built trip plans so they can be fetched again by id.
type Store interface {
	Save(ctx context.Context, plan *types.TripPlan) error
	Get(ctx context.Context, tripID uuid.UUID) (*types.TripPlan, error)
}

// MemoryStore keeps plans in process for ttl.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, 1*time.Hour)}
}

func (m *MemoryStore) Save(_ context.Context, plan *types.TripPlan) error {
	m.cache.Set(plan.ID.String(), plan, cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, tripID uuid.UUID) (*types.TripPlan, error) {
	if cached, found := m.cache.Get(tripID.String()); found {
		if plan, ok := cached.(*types.TripPlan); ok {
			return plan, nil
		}
	}
	return nil, fmt.Errorf("trip %s: %w", tripID, types.ErrNotFound)
}

// RedisStore keeps plans as JSON documents under trip:<id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func tripKey(tripID uuid.UUID) string {
	return "trip:" + tripID.String()
}

func (r *RedisStore) Save(ctx context.Context, plan *types.TripPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal trip plan: %w", err)
	}
	if err := r.client.Set(ctx, tripKey(plan.ID), payload, r.ttl).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to write trip plan to redis", slog.String("trip_id", plan.ID.String()), slog.Any("error", err))
		return fmt.Errorf("failed to write trip plan: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, tripID uuid.UUID) (*types.TripPlan, error) {
	payload, err := r.client.Get(ctx, tripKey(tripID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("trip %s: %w", tripID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read trip plan: %w", err)
	}

	var plan types.TripPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip plan: %w", err)
	}
	return &plan, nil
}
