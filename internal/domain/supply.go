package domain

// Holder is the licence holder record attached to a supply location.
type Holder struct {
	Name         string
	OIB          string
	Street       string
	PostalNumber string
	Settlement   string
	State        string
}

// A point with a material type, a capacity ceiling and coordinates.
// Records are validated once at the catalogue boundary and treated as
// immutable afterwards.
type SupplyLocation struct {
	ID          string
	Name        string
	Material    string
	Capacity    float64
	Coordinates Coordinates

	Status    string
	Manager   string
	Address   string
	Holder    *Holder
	AllFields string
}

// CanSupply reports whether the location matches the demand's material and
// has enough capacity for its quantity.
func (s SupplyLocation) CanSupply(d Demand) bool {
	return s.Material == d.Material && s.Capacity >= d.Quantity
}

// A resolved demand -> supply location pairing.
type Assignment struct {
	Demand     Demand
	Location   SupplyLocation
	DistanceKm float64
}

// Waypoints returns the roundtrip coordinate list: origin first, then each
// assignment's location in matcher order.
func Waypoints(origin Coordinates, assignments []Assignment) []Coordinates {
	out := make([]Coordinates, 0, 1+len(assignments))
	out = append(out, origin)
	for _, a := range assignments {
		out = append(out, a.Location.Coordinates)
	}
	return out
}
