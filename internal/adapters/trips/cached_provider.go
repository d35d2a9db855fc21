package trips

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"
	"supply-route-service/internal/ports"
)

// CachedTripProvider answers repeated trips from a TripCache and only calls
// the wrapped provider on a miss. Cache failures are logged and never fail
// the request. A non-positive TTL disables caching.
type CachedTripProvider struct {
	Provider ports.TripProvider
	Cache    ports.TripCache
	Profile  string
	TTL      time.Duration
}

func NewCachedTripProvider(provider ports.TripProvider, cache ports.TripCache, profile string, ttl time.Duration) *CachedTripProvider {
	return &CachedTripProvider{Provider: provider, Cache: cache, Profile: profile, TTL: ttl}
}

func (c *CachedTripProvider) OptimizeTrip(
	ctx context.Context,
	coords []domain.Coordinates,
) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "trips.cached.OptimizeTrip")(&err)

	if c.Cache == nil || c.TTL <= 0 {
		return c.Provider.OptimizeTrip(ctx, coords)
	}

	key := TripKey(c.Profile, coords)

	route, ok, err := c.Cache.GetTrip(ctx, key)
	if err != nil {
		log.Printf("trip cache get failed: key=%s err=%v", key, err)
	} else if ok {
		return route, nil
	}

	route, err = c.Provider.OptimizeTrip(ctx, coords)
	if err != nil {
		return domain.RouteResult{}, err
	}

	if err := c.Cache.PutTrip(ctx, key, route, c.TTL); err != nil {
		log.Printf("trip cache put failed: key=%s err=%v", key, err)
	}

	return route, nil
}

// TripKey identifies a trip request by profile and the ordered coordinates,
// rounded to six decimals (about 0.1 m).
func TripKey(profile string, coords []domain.Coordinates) string {
	var b strings.Builder
	b.WriteString(profile)
	for _, p := range coords {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(p.Lon, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', 6, 64))
	}
	return b.String()
}
