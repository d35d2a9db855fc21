package dto

import (
	"encoding/json"
	"log"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/ports"

	"github.com/paulmach/orb/geojson"
)

type DemandRequest struct {
	Material string  `json:"material"`
	Quantity float64 `json:"quantity"`
}

type PlanRouteRequest struct {
	Demands []DemandRequest `json:"demands"`
}

func (p PlanRouteRequest) Domain() []domain.Demand {
	out := make([]domain.Demand, 0, len(p.Demands))
	for _, d := range p.Demands {
		out = append(out, domain.Demand{Material: d.Material, Quantity: d.Quantity})
	}
	return out
}

type RouteResponse struct {
	DistanceMeters float64           `json:"distance_meters"`
	DistanceKm     float64           `json:"distance_km"`
	DistanceLabel  string            `json:"distance_label"`
	VisitOrder     []int             `json:"visit_order"`
	Geometry       *geojson.Geometry `json:"geometry"`
}

type AssignmentResponse struct {
	Material   string  `json:"material"`
	Quantity   float64 `json:"quantity"`
	SupplyID   string  `json:"supply_id"`
	SupplyName string  `json:"supply_name"`
	DistanceKm float64 `json:"distance_km"`
}

type NotificationResponse struct {
	Severity    string               `json:"severity"`
	Code        string               `json:"code"`
	Message     string               `json:"message"`
	Route       *RouteResponse       `json:"route,omitempty"`
	Assignments []AssignmentResponse `json:"assignments,omitempty"`
	Unmet       []string             `json:"unmet,omitempty"`
	ShareLink   string               `json:"share_link,omitempty"`
}

func NewNotificationResponse(n domain.Notification) NotificationResponse {
	res := NotificationResponse{
		Severity:  string(n.Severity),
		Code:      n.Code,
		Message:   n.Message,
		Unmet:     n.Unmet,
		ShareLink: n.ShareLink,
	}

	if n.Route != nil {
		res.Route = &RouteResponse{
			DistanceMeters: n.Route.DistanceMeters,
			DistanceKm:     n.Route.DistanceKm,
			DistanceLabel:  n.Route.DistanceLabel,
			VisitOrder:     n.Route.VisitOrder,
		}
		if n.Route.Geometry != nil {
			res.Route.Geometry = geojson.NewGeometry(n.Route.Geometry)
		}
	}

	for _, a := range n.Assignments {
		res.Assignments = append(res.Assignments, AssignmentResponse{
			Material:   a.Demand.Material,
			Quantity:   a.Demand.Quantity,
			SupplyID:   a.Location.ID,
			SupplyName: a.Location.Name,
			DistanceKm: a.DistanceKm,
		})
	}

	return res
}

type LayerSpec struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Layout map[string]any `json:"layout,omitempty"`
	Paint  map[string]any `json:"paint,omitempty"`
}

// OverlaysResponse is the rendered map state a browser client mirrors.
type OverlaysResponse struct {
	Sources map[string]json.RawMessage `json:"sources"`
	Layers  []LayerSpec                `json:"layers"`
}

func NewOverlaysResponse(s ports.MapSnapshot) OverlaysResponse {
	res := OverlaysResponse{
		Sources: s.Sources,
		Layers:  make([]LayerSpec, 0, len(s.Layers)),
	}
	if res.Sources == nil {
		res.Sources = map[string]json.RawMessage{}
	}
	for _, l := range s.Layers {
		res.Layers = append(res.Layers, LayerSpec(l))
	}
	for id, raw := range res.Sources {
		if !json.Valid(raw) {
			log.Printf("overlay source %q holds invalid json, dropping it", id)
			delete(res.Sources, id)
		}
	}
	return res
}
