package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"supply-route-service/internal/domain"

	"github.com/paulmach/orb/geojson"
)

// cachedRoute is the stored form of a trip. Kilometre figures are derived
// again on decode so they always follow the current rounding.
type cachedRoute struct {
	Geometry       *geojson.Geometry `json:"geometry"`
	DistanceMeters float64           `json:"distance_meters"`
	VisitOrder     []int             `json:"visit_order"`
}

func encodeRoute(route domain.RouteResult) ([]byte, error) {
	if route.Geometry == nil {
		return nil, errors.New("encode route: geometry is nil")
	}
	b, err := json.Marshal(cachedRoute{
		Geometry:       geojson.NewGeometry(route.Geometry),
		DistanceMeters: route.DistanceMeters,
		VisitOrder:     route.VisitOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("encode route: %w", err)
	}
	return b, nil
}

func decodeRoute(b []byte) (domain.RouteResult, error) {
	var c cachedRoute
	if err := json.Unmarshal(b, &c); err != nil {
		return domain.RouteResult{}, fmt.Errorf("decode route: %w", err)
	}
	if c.Geometry == nil || c.Geometry.Coordinates == nil {
		return domain.RouteResult{}, errors.New("decode route: missing geometry")
	}
	return domain.NewRouteResult(c.Geometry.Geometry(), c.DistanceMeters, c.VisitOrder), nil
}
