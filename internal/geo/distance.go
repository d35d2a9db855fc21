package geo

import (
	"fmt"
	"math"

	"supply-route-service/internal/domain"

	"github.com/jftuga/geodist"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceFunc returns the distance in kilometres between two points.
type DistanceFunc func(a, b domain.Coordinates) float64

// DistanceKm is the great-circle distance between a and b (haversine).
func DistanceKm(a, b domain.Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Clamp against rounding drift for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// VincentyKm is the ellipsoidal (WGS84) distance between a and b.
func VincentyKm(a, b domain.Coordinates) (float64, error) {
	if a == b {
		return 0, nil
	}
	_, km, err := geodist.VincentyDistance(
		geodist.Coord{Lat: a.Lat, Lon: a.Lon},
		geodist.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	if err != nil {
		return 0, fmt.Errorf("vincenty distance %s -> %s: %w", a, b, err)
	}
	return km, nil
}

// vincentyOrHaversine falls back to haversine when Vincenty does not converge
// (nearly antipodal points).
func vincentyOrHaversine(a, b domain.Coordinates) float64 {
	km, err := VincentyKm(a, b)
	if err != nil {
		return DistanceKm(a, b)
	}
	return km
}

// Metric resolves a configured metric name.
func Metric(name string) (DistanceFunc, error) {
	switch name {
	case "", "haversine":
		return DistanceKm, nil
	case "vincenty":
		return vincentyOrHaversine, nil
	}
	return nil, fmt.Errorf("unknown distance metric %q", name)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
