package domain

import (
	"fmt"
	"slices"
)

// Layer is a cosmetic map layer the user can show or hide.
type Layer struct {
	ID           string
	Name         string
	Visible      bool
	Category     string
	CategoryName string
}

// LayerSet is an immutable snapshot of layer visibility. Changes go through
// Apply, which always derives the next state from the receiver.
type LayerSet struct {
	layers []Layer
}

func NewLayerSet(layers []Layer) LayerSet {
	return LayerSet{layers: slices.Clone(layers)}
}

// DefaultLayers returns the layer panel of a fresh map session.
func DefaultLayers() LayerSet {
	return NewLayerSet([]Layer{
		{ID: "counties", Name: "Županije", Category: "infrastructure", CategoryName: "Infrastruktura"},
		{ID: "roads", Name: "Ceste", Category: "infrastructure", CategoryName: "Infrastruktura"},
		{ID: "railways", Name: "Željeznice", Category: "infrastructure", CategoryName: "Infrastruktura"},
		{ID: "industry", Name: "Cementare", Category: "industry", CategoryName: "Industrija"},
		{ID: SupplyLayerID, Name: "Sirovine", Visible: true, Category: "materials", CategoryName: "Mineralne sirovine"},
	})
}

// SupplyLayerID is the layer holding the supply location features.
const SupplyLayerID = "stone"

func (s LayerSet) Layers() []Layer { return slices.Clone(s.layers) }

func (s LayerSet) Layer(id string) (Layer, bool) {
	for _, l := range s.layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

type LayerActionKind string

const (
	LayerToggle LayerActionKind = "toggle"
	LayerShow   LayerActionKind = "show"
	LayerHide   LayerActionKind = "hide"
)

func ParseLayerActionKind(s string) (LayerActionKind, error) {
	switch k := LayerActionKind(s); k {
	case LayerToggle, LayerShow, LayerHide:
		return k, nil
	}
	return "", &ValidationError{Reason: fmt.Sprintf("unknown layer action %q", s)}
}

type LayerAction struct {
	Kind    LayerActionKind
	LayerID string
}

// Apply returns the layer set that results from action.
func (s LayerSet) Apply(action LayerAction) (LayerSet, error) {
	idx := slices.IndexFunc(s.layers, func(l Layer) bool { return l.ID == action.LayerID })
	if idx < 0 {
		return s, &ValidationError{Reason: fmt.Sprintf("unknown layer %q", action.LayerID)}
	}

	next := slices.Clone(s.layers)
	switch action.Kind {
	case LayerToggle:
		next[idx].Visible = !s.layers[idx].Visible
	case LayerShow:
		next[idx].Visible = true
	case LayerHide:
		next[idx].Visible = false
	default:
		return s, &ValidationError{Reason: fmt.Sprintf("unknown layer action %q", action.Kind)}
	}

	return LayerSet{layers: next}, nil
}
