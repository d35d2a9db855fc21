package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const tripKeyPrefix = "trip:"

// RedisTripCache keeps optimized trips in Redis and lets Redis expire them.
type RedisTripCache struct {
	Client *redis.Client
}

func NewRedisTripCache(client *redis.Client) *RedisTripCache {
	return &RedisTripCache{Client: client}
}

// OpenRedis parses a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}
	return client, nil
}

func (r *RedisTripCache) GetTrip(ctx context.Context, key string) (_ domain.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "trip.redis.GetTrip")(&err)

	b, err := r.Client.Get(ctx, tripKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RouteResult{}, false, nil
	}
	if err != nil {
		return domain.RouteResult{}, false, fmt.Errorf("get trip cache: %w", err)
	}

	route, err := decodeRoute(b)
	if err != nil {
		return domain.RouteResult{}, false, fmt.Errorf("get trip cache key=%q: %w", key, err)
	}
	return route, true, nil
}

// PutTrip stores route until ttl elapses. A non-positive ttl stores nothing,
// since a zero expiry means "keep forever" to Redis.
func (r *RedisTripCache) PutTrip(ctx context.Context, key string, route domain.RouteResult, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	payload, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert trip cache key=%q: %w", key, err)
	}

	if err := r.Client.Set(ctx, tripKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("insert trip cache key=%q: %w", key, err)
	}
	return nil
}
