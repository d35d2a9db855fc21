package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/ports"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	RouteOverlayID = "route"
	LabelOverlayID = "distance-labels"
)

var errNoSurface = errors.New("map surface is not available")

// OverlaySynchronizer keeps exactly one route line and one distance label on
// a map surface. Every call overwrites the previous content in place.
// Calls for the same surface must not overlap; the order service serializes
// them per session.
type OverlaySynchronizer struct {
	// LabelFormat receives the two-decimal kilometre figure.
	LabelFormat string
}

func NewOverlaySynchronizer() *OverlaySynchronizer {
	return &OverlaySynchronizer{LabelFormat: "Total distance: %s km"}
}

var routeLayer = ports.LayerSpec{
	ID:     RouteOverlayID,
	Type:   "line",
	Source: RouteOverlayID,
	Layout: map[string]any{"line-join": "round", "line-cap": "round"},
	Paint:  map[string]any{"line-color": "#007cbf", "line-width": 2},
}

var labelLayer = ports.LayerSpec{
	ID:     LabelOverlayID,
	Type:   "symbol",
	Source: LabelOverlayID,
	Layout: map[string]any{
		"text-field":  []any{"get", "title"},
		"text-size":   12,
		"text-offset": []any{6, -2.75},
		"text-anchor": "top",
	},
	Paint: map[string]any{"text-color": "#044786"},
}

// RenderRoute upserts the route line and the distance label anchored at origin.
func (o *OverlaySynchronizer) RenderRoute(
	surface ports.MapSurface,
	route domain.RouteResult,
	origin domain.Coordinates,
) error {
	if surface == nil {
		return &domain.OverlayError{Op: "render", OverlayID: RouteOverlayID, Err: errNoSurface}
	}
	if route.Geometry == nil {
		return &domain.OverlayError{Op: "render", OverlayID: RouteOverlayID, Err: errors.New("route has no geometry")}
	}

	if err := upsert(surface, routeLayer, geojson.NewGeometry(route.Geometry)); err != nil {
		return err
	}

	return upsert(surface, labelLayer, o.labelCollection(route, origin))
}

func (o *OverlaySynchronizer) labelCollection(route domain.RouteResult, origin domain.Coordinates) *geojson.FeatureCollection {
	format := o.LabelFormat
	if format == "" {
		format = "Total distance: %s km"
	}

	f := geojson.NewFeature(orb.Point{origin.Lon, origin.Lat})
	f.Properties["title"] = fmt.Sprintf(format, route.DistanceLabel)

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return fc
}

// upsert replaces the data of an existing source or creates the source, then
// makes sure its layer exists exactly once.
func upsert(surface ports.MapSurface, spec ports.LayerSpec, data json.Marshaler) error {
	if surface.HasSource(spec.Source) {
		if err := surface.SetSourceData(spec.Source, data); err != nil {
			return &domain.OverlayError{Op: "update source", OverlayID: spec.Source, Err: err}
		}
	} else {
		if err := surface.AddSource(spec.Source, data); err != nil {
			return &domain.OverlayError{Op: "add source", OverlayID: spec.Source, Err: err}
		}
	}

	if !surface.HasLayer(spec.ID) {
		if err := surface.AddLayer(spec); err != nil {
			return &domain.OverlayError{Op: "add layer", OverlayID: spec.ID, Err: err}
		}
	}

	return nil
}
