package domain

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// Represents the optimized roundtrip returned by the trip provider.
// Geometry is the full route polyline; VisitOrder holds, for every input
// coordinate, its position in the optimized trip (origin is always 0).
// It is immutable planning data and replaces any previously rendered route.
type RouteResult struct {
	Geometry       orb.Geometry
	DistanceMeters float64
	DistanceKm     float64
	DistanceLabel  string
	VisitOrder     []int
}

// NewRouteResult derives the kilometre figures from the provider's meters.
func NewRouteResult(geometry orb.Geometry, distanceMeters float64, visitOrder []int) RouteResult {
	km := MetersToKm(distanceMeters)
	return RouteResult{
		Geometry:       geometry,
		DistanceMeters: distanceMeters,
		DistanceKm:     km,
		DistanceLabel:  strconv.FormatFloat(km, 'f', 2, 64),
		VisitOrder:     visitOrder,
	}
}

// MetersToKm converts to kilometres rounded to two decimals.
func MetersToKm(meters float64) float64 {
	return math.Round(meters/10) / 100
}
