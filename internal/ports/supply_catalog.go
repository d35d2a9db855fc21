package ports

import (
	"context"
	"iter"

	"supply-route-service/internal/domain"
)

// Port: read access to the supply locations currently loaded on the map.
//
// SupplyLocations returns a lazy, finite snapshot that may be ranged over
// more than once. An empty material disables filtering. An empty or
// unavailable catalogue yields an empty sequence; callers decide whether
// that is fatal.
type SupplyCatalog interface {
	SupplyLocations(ctx context.Context, material string) iter.Seq[domain.SupplyLocation]
	SupplyLocation(ctx context.Context, id string) (domain.SupplyLocation, error)
}

// Port: persistent storage of normalized supply location records.
type SupplyRepository interface {
	ListSupply(ctx context.Context, material string) ([]domain.SupplyLocation, error)
	GetSupply(ctx context.Context, id string) (domain.SupplyLocation, error)
	UpsertSupply(ctx context.Context, locations []domain.SupplyLocation) error
}
