package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"supply-route-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSupplyQuery := `
	CREATE TABLE IF NOT EXISTS supply_locations (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		material TEXT NOT NULL,
		capacity REAL NOT NULL DEFAULT 0,
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		manager TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		general_data TEXT,
		all_fields TEXT NOT NULL DEFAULT ''
	);
	`

	createSupplyIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_supply_locations_material_position
	ON supply_locations(material, position);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL
	);
	`

	createTripCacheQuery := `
	CREATE TABLE IF NOT EXISTS trip_cache (
		cache_key TEXT PRIMARY KEY,
		route TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`

	statements := []string{
		createSupplyQuery,
		createSupplyIndexQuery,
		createGeocodeCacheQuery,
		createTripCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedSupply replaces the stored supply locations with locations, keeping
// their order as the catalogue order.
func SeedSupply(ctx context.Context, repo *SQLSupplyRepository, locations []domain.SupplyLocation) error {
	if len(locations) == 0 {
		return errors.New("seed supply: no locations to seed")
	}
	if err := repo.ReplaceAll(ctx, locations); err != nil {
		return fmt.Errorf("seed supply: %w", err)
	}
	return nil
}
