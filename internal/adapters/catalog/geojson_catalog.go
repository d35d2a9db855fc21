package catalog

import (
	"context"
	"fmt"
	"iter"
	"log"
	"os"
	"slices"

	"supply-route-service/internal/domain"
)

// GeoJSONCatalog serves supply locations decoded once from a GeoJSON
// FeatureCollection or a flat JSON array. The records are never modified
// after loading, so every sequence it hands out is a stable snapshot.
type GeoJSONCatalog struct {
	locations []domain.SupplyLocation
	byID      map[string]int
}

func NewGeoJSONCatalog(locations []domain.SupplyLocation) *GeoJSONCatalog {
	c := &GeoJSONCatalog{
		locations: slices.Clone(locations),
		byID:      make(map[string]int, len(locations)),
	}
	for i, l := range c.locations {
		if _, dup := c.byID[l.ID]; !dup {
			c.byID[l.ID] = i
		}
	}
	return c
}

// LoadGeoJSONCatalog reads path and keeps the records whose address contains
// one of addressFilter (all records when the filter is empty).
func LoadGeoJSONCatalog(path string, addressFilter []string) (*GeoJSONCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: read %q: %w", path, err)
	}

	locations, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}

	locations = FilterByAddress(locations, addressFilter)
	log.Printf("catalog loaded: path=%s locations=%d", path, len(locations))

	return NewGeoJSONCatalog(locations), nil
}

func (c *GeoJSONCatalog) SupplyLocations(ctx context.Context, material string) iter.Seq[domain.SupplyLocation] {
	return func(yield func(domain.SupplyLocation) bool) {
		for _, l := range c.locations {
			if ctx.Err() != nil {
				return
			}
			if material != "" && l.Material != material {
				continue
			}
			if !yield(l) {
				return
			}
		}
	}
}

func (c *GeoJSONCatalog) SupplyLocation(_ context.Context, id string) (domain.SupplyLocation, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.SupplyLocation{}, fmt.Errorf("supply location %q: %w", id, domain.ErrSupplyNotFound)
	}
	return c.locations[i], nil
}

// All returns a copy of every loaded location.
func (c *GeoJSONCatalog) All() []domain.SupplyLocation {
	return slices.Clone(c.locations)
}
