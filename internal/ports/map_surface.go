package ports

import (
	"context"
	"encoding/json"

	"supply-route-service/internal/domain"
)

// Rendering description of a map layer bound to a source.
type LayerSpec struct {
	ID     string
	Type   string
	Source string
	Layout map[string]any
	Paint  map[string]any
}

// Handler invoked when the user clicks a feature on a layer.
type FeatureClickHandler func(ctx context.Context, featureID string) domain.Notification

// Capability interface of the map a session renders into.
// Source data is any GeoJSON document (geometry or feature collection).
type MapSurface interface {
	HasSource(id string) bool
	AddSource(id string, data json.Marshaler) error
	SetSourceData(id string, data json.Marshaler) error

	HasLayer(id string) bool
	AddLayer(spec LayerSpec) error

	OnFeatureClick(layerID string, handler FeatureClickHandler)
}

// Rendered state of a map: source documents by id and layers in draw order.
type MapSnapshot struct {
	Sources map[string]json.RawMessage
	Layers  []LayerSpec
}

// A MapSurface that can also be inspected and clicked from outside, as the
// HTTP API does on behalf of the browser.
type InteractiveMap interface {
	MapSurface
	Snapshot() MapSnapshot
	Click(ctx context.Context, layerID string, featureID string) (domain.Notification, error)
}
