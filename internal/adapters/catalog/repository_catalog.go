package catalog

import (
	"context"
	"iter"
	"log"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/ports"
)

// RepositoryCatalog reads supply locations from a database-backed repository.
// Each SupplyLocations call takes one snapshot query; the returned sequence
// replays that snapshot on every range.
type RepositoryCatalog struct {
	Repo ports.SupplyRepository
}

func NewRepositoryCatalog(repo ports.SupplyRepository) *RepositoryCatalog {
	return &RepositoryCatalog{Repo: repo}
}

func (c *RepositoryCatalog) SupplyLocations(ctx context.Context, material string) iter.Seq[domain.SupplyLocation] {
	locations, err := c.Repo.ListSupply(ctx, material)
	if err != nil {
		log.Printf("supply catalog unavailable: material=%q err=%v", material, err)
		locations = nil
	}

	return func(yield func(domain.SupplyLocation) bool) {
		for _, l := range locations {
			if !yield(l) {
				return
			}
		}
	}
}

func (c *RepositoryCatalog) SupplyLocation(ctx context.Context, id string) (domain.SupplyLocation, error) {
	return c.Repo.GetSupply(ctx, id)
}
