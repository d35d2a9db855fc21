package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"
)

// SQLTripCache stores optimized trips in the trip_cache table with an
// expiry. Expired rows are ignored on read and overwritten on the next put.
type SQLTripCache struct {
	DB      *sql.DB
	Dialect Dialect

	now func() time.Time
}

func NewSQLTripCache(db *sql.DB, dialect Dialect) *SQLTripCache {
	return &SQLTripCache{DB: db, Dialect: dialect, now: time.Now}
}

func (s *SQLTripCache) GetTrip(ctx context.Context, key string) (_ domain.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "trip.cache.GetTrip")(&err)

	if s.DB == nil {
		return domain.RouteResult{}, false, errors.New("trip cache: db is nil")
	}

	q := fmt.Sprintf(`
	SELECT route
	FROM trip_cache
	WHERE cache_key = %s
		AND expires_at > %s;
	`, s.Dialect.bind(1), s.Dialect.bind(2))

	var payload string
	err = s.DB.QueryRowContext(ctx, q, key, s.now().Unix()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RouteResult{}, false, nil
	}
	if err != nil {
		return domain.RouteResult{}, false, fmt.Errorf("get trip cache: query trip_cache table: %w", err)
	}

	route, err := decodeRoute([]byte(payload))
	if err != nil {
		return domain.RouteResult{}, false, fmt.Errorf("get trip cache key=%q: %w", key, err)
	}
	return route, true, nil
}

// PutTrip stores route until ttl elapses. A non-positive ttl stores nothing.
func (s *SQLTripCache) PutTrip(ctx context.Context, key string, route domain.RouteResult, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if s.DB == nil {
		return errors.New("trip cache: db is nil")
	}
	if key == "" {
		return errors.New("insert trip cache: empty key")
	}

	payload, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert trip cache key=%q: %w", key, err)
	}

	q := fmt.Sprintf(`
	INSERT INTO trip_cache (cache_key, route, expires_at)
	VALUES (%s)
	ON CONFLICT (cache_key) DO UPDATE
	SET route = excluded.route,
		expires_at = excluded.expires_at;
	`, s.Dialect.binds(1, 3))

	expires := s.now().Add(ttl).Unix()
	if _, err := s.DB.ExecContext(ctx, q, key, string(payload), expires); err != nil {
		return fmt.Errorf("insert trip cache key=%q: %w", key, err)
	}
	return nil
}
