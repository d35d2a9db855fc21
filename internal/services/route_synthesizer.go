package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"
	"supply-route-service/internal/ports"
)

const DefaultProviderTimeout = 10 * time.Second

// RouteSynthesizer requests an optimized roundtrip for a set of waypoints.
// Each call is a single provider attempt bounded by Timeout.
type RouteSynthesizer struct {
	Provider ports.TripProvider
	Timeout  time.Duration
}

func NewRouteSynthesizer(provider ports.TripProvider, timeout time.Duration) *RouteSynthesizer {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &RouteSynthesizer{Provider: provider, Timeout: timeout}
}

// Synthesize submits origin followed by waypoints (matcher order) and
// returns the first trip. Provider failures, including the timeout, are
// reported as *domain.ProviderError.
func (s *RouteSynthesizer) Synthesize(
	ctx context.Context,
	origin domain.Coordinates,
	waypoints []domain.Coordinates,
) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "route.Synthesize")(&err)

	if s.Provider == nil {
		return domain.RouteResult{}, &domain.ProviderError{Reason: "no trip provider configured"}
	}
	if len(waypoints) == 0 {
		return domain.RouteResult{}, &domain.ValidationError{Reason: "route needs at least one waypoint"}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	coords := make([]domain.Coordinates, 0, 1+len(waypoints))
	coords = append(coords, origin)
	coords = append(coords, waypoints...)

	route, err := s.Provider.OptimizeTrip(callCtx, coords)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return domain.RouteResult{}, &domain.ProviderError{
				Reason: fmt.Sprintf("no response within %s", s.Timeout),
				Err:    err,
			}
		}

		var pe *domain.ProviderError
		if errors.As(err, &pe) {
			return domain.RouteResult{}, err
		}
		return domain.RouteResult{}, &domain.ProviderError{Reason: "request failed", Err: err}
	}

	if route.Geometry == nil {
		return domain.RouteResult{}, &domain.ProviderError{Reason: "trip has no geometry"}
	}

	return route, nil
}
