package dto

import (
	"time"

	"supply-route-service/internal/domain"
)

type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (c Coordinates) Domain() domain.Coordinates {
	return domain.Coordinates{Lon: c.Lon, Lat: c.Lat}
}

func NewCoordinates(c domain.Coordinates) Coordinates {
	return Coordinates{Lon: c.Lon, Lat: c.Lat}
}

type CreateSessionRequest struct {
	Origin *Coordinates `json:"origin"`
}

type SetOriginRequest struct {
	Origin  *Coordinates `json:"origin"`
	Address string       `json:"address"`
}

type Layer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Visible      bool   `json:"visible"`
	Category     string `json:"category"`
	CategoryName string `json:"category_name"`
}

func NewLayers(layers []domain.Layer) []Layer {
	out := make([]Layer, 0, len(layers))
	for _, l := range layers {
		out = append(out, Layer{
			ID:           l.ID,
			Name:         l.Name,
			Visible:      l.Visible,
			Category:     l.Category,
			CategoryName: l.CategoryName,
		})
	}
	return out
}

type SessionResponse struct {
	ID        string      `json:"id"`
	Origin    Coordinates `json:"origin"`
	CreatedAt time.Time   `json:"created_at"`
	Layers    []Layer     `json:"layers"`
	ShareLink string      `json:"share_link,omitempty"`
}

type ClickRequest struct {
	FeatureID string `json:"feature_id"`
}

type ShareRequest struct {
	To string `json:"to"`
}
