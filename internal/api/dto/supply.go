package dto

import "supply-route-service/internal/domain"

type Material struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func NewMaterials(ms []domain.Material) []Material {
	out := make([]Material, 0, len(ms))
	for _, m := range ms {
		out = append(out, Material{Name: m.Name, Color: m.Color})
	}
	return out
}

type Holder struct {
	Name         string `json:"name"`
	OIB          string `json:"oib"`
	Street       string `json:"street"`
	PostalNumber string `json:"postal_number"`
	Settlement   string `json:"settlement"`
	State        string `json:"state"`
}

// SupplyResponse carries the feature details shown in the map popup.
type SupplyResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Material  string      `json:"material"`
	Capacity  float64     `json:"capacity"`
	Location  Coordinates `json:"location"`
	Status    string      `json:"status,omitempty"`
	Manager   string      `json:"manager,omitempty"`
	Address   string      `json:"address,omitempty"`
	Holder    *Holder     `json:"holder,omitempty"`
	AllFields string      `json:"all_fields,omitempty"`
}

func NewSupplyResponse(l domain.SupplyLocation) SupplyResponse {
	res := SupplyResponse{
		ID:        l.ID,
		Name:      l.Name,
		Material:  l.Material,
		Capacity:  l.Capacity,
		Location:  NewCoordinates(l.Coordinates),
		Status:    l.Status,
		Manager:   l.Manager,
		Address:   l.Address,
		AllFields: l.AllFields,
	}
	if h := l.Holder; h != nil {
		res.Holder = &Holder{
			Name:         h.Name,
			OIB:          h.OIB,
			Street:       h.Street,
			PostalNumber: h.PostalNumber,
			Settlement:   h.Settlement,
			State:        h.State,
		}
	}
	return res
}
