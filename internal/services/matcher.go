package services

import (
	"context"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/geo"
	"supply-route-service/internal/ports"
)

// Matcher pairs each demand with the nearest supply location that can cover it.
//
// The choice is made per demand: the nearest feasible location to the origin
// wins, and combined routing cost across demands is not considered. Visiting
// order is left to the trip provider.
type Matcher struct {
	Distance geo.DistanceFunc
}

func NewMatcher(distance geo.DistanceFunc) *Matcher {
	if distance == nil {
		distance = geo.DistanceKm
	}
	return &Matcher{Distance: distance}
}

// Match returns one assignment per satisfiable demand and the demands that
// have no feasible location. Demands with a non-positive quantity are skipped.
func (m *Matcher) Match(
	ctx context.Context,
	demands []domain.Demand,
	catalog ports.SupplyCatalog,
	origin domain.Coordinates,
) ([]domain.Assignment, []domain.Demand) {
	assignments := make([]domain.Assignment, 0, len(demands))
	unsatisfied := make([]domain.Demand, 0)

	for _, d := range demands {
		if !d.Active() {
			continue
		}

		var (
			best     domain.SupplyLocation
			bestDist float64
			found    bool
		)
		for loc := range catalog.SupplyLocations(ctx, d.Material) {
			if !loc.CanSupply(d) {
				continue
			}
			dist := m.Distance(origin, loc.Coordinates)
			// Strict comparison keeps the first encountered location on ties.
			if !found || dist < bestDist {
				best, bestDist, found = loc, dist, true
			}
		}

		if !found {
			unsatisfied = append(unsatisfied, d)
			continue
		}

		assignments = append(assignments, domain.Assignment{
			Demand:     d,
			Location:   best,
			DistanceKm: bestDist,
		})
	}

	return assignments, unsatisfied
}

// MatchAll applies the all-or-nothing policy on top of Match: any unmet demand
// fails the whole request and no assignments are returned.
func (m *Matcher) MatchAll(
	ctx context.Context,
	demands []domain.Demand,
	catalog ports.SupplyCatalog,
	origin domain.Coordinates,
) ([]domain.Assignment, error) {
	assignments, unsatisfied := m.Match(ctx, demands, catalog, origin)
	if len(unsatisfied) > 0 {
		return nil, &domain.NoFeasibleSupplyError{Unmet: unsatisfied}
	}
	if len(assignments) == 0 {
		return nil, &domain.ValidationError{Reason: "no demands to match"}
	}
	return assignments, nil
}
