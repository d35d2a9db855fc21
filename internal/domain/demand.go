package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Material is one entry of the fixed material catalogue shown to the user.
type Material struct {
	Name  string
	Color string
}

// DefaultMaterials is the catalogue order used to sort demands.
var DefaultMaterials = []Material{
	{Name: "Keramička i vatrostalna glina", Color: "#D2691E"},
	{Name: "Tehničko-građevni kamen", Color: "#808080"},
	{Name: "Građevni pijesak i šljunak", Color: "#F4A300"},
	{Name: "Ciglarska glina", Color: "#B74A2E"},
	{Name: "Karbonatne mineralne sirovine za industrijsku preradbu", Color: "#4CAF50"},
}

// A requested quantity of one material.
type Demand struct {
	Material string
	Quantity float64
}

// Active reports whether the demand takes part in matching.
func (d Demand) Active() bool {
	return strings.TrimSpace(d.Material) != "" && d.Quantity > 0
}

// NormalizeDemands drops inactive entries and orders the rest by the
// material catalogue. Materials missing from the catalogue keep their input
// order after the known ones.
func NormalizeDemands(demands []Demand, catalog []Material) ([]Demand, error) {
	rank := make(map[string]int, len(catalog))
	for i, m := range catalog {
		rank[m.Name] = i
	}

	seen := make(map[string]struct{}, len(demands))
	active := make([]Demand, 0, len(demands))
	for _, d := range demands {
		if !d.Active() {
			continue
		}
		d.Material = strings.TrimSpace(d.Material)
		if _, dup := seen[d.Material]; dup {
			return nil, &ValidationError{Reason: fmt.Sprintf("material %q requested more than once", d.Material)}
		}
		seen[d.Material] = struct{}{}
		active = append(active, d)
	}

	if len(active) == 0 {
		return nil, &ValidationError{Reason: "at least one material with a positive quantity is required"}
	}

	slices.SortStableFunc(active, func(a, b Demand) int {
		ra, okA := rank[a.Material]
		rb, okB := rank[b.Material]
		switch {
		case okA && okB:
			return ra - rb
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})

	return active, nil
}
