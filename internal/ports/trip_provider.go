package ports

import (
	"context"
	"time"

	"supply-route-service/internal/domain"
)

// Contract for a multi-stop trip-optimization provider.
type TripProvider interface {
	// Return the optimized roundtrip through coords. coords[0] is the origin;
	// the provider decides the visiting order of the rest.
	OptimizeTrip(ctx context.Context, coords []domain.Coordinates) (domain.RouteResult, error)
}

// Cache of optimized trips keyed by an opaque request key.
type TripCache interface {
	// ok is false on a miss.
	GetTrip(ctx context.Context, key string) (route domain.RouteResult, ok bool, err error)
	PutTrip(ctx context.Context, key string, route domain.RouteResult, ttl time.Duration) error
}
