package trips

import (
	"context"
	"sync"

	"supply-route-service/internal/domain"

	"github.com/paulmach/orb"
)

// MockTripProvider returns a straight-line roundtrip through the given
// coordinates in input order. Set Err to make every call fail, or Block to
// make calls wait until the context ends or the channel is closed.
type MockTripProvider struct {
	DistanceMeters float64
	Err            error
	Block          chan struct{}

	mu    sync.Mutex
	calls [][]domain.Coordinates
}

func NewMockTripProvider(distanceMeters float64) *MockTripProvider {
	return &MockTripProvider{DistanceMeters: distanceMeters}
}

func (p *MockTripProvider) OptimizeTrip(ctx context.Context, coords []domain.Coordinates) (domain.RouteResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]domain.Coordinates(nil), coords...))
	block := p.Block
	p.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return domain.RouteResult{}, ctx.Err()
		case <-block:
		}
	}

	if p.Err != nil {
		return domain.RouteResult{}, p.Err
	}

	line := make(orb.LineString, 0, len(coords)+1)
	order := make([]int, 0, len(coords))
	for i, c := range coords {
		line = append(line, orb.Point{c.Lon, c.Lat})
		order = append(order, i)
	}
	if len(coords) > 0 {
		line = append(line, orb.Point{coords[0].Lon, coords[0].Lat})
	}

	return domain.NewRouteResult(line, p.DistanceMeters, order), nil
}

// Calls returns the coordinate lists of every request so far.
func (p *MockTripProvider) Calls() [][]domain.Coordinates {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]domain.Coordinates(nil), p.calls...)
}
