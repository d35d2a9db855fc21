package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"strings"

	"supply-route-service/internal/adapters/catalog"
	"supply-route-service/internal/adapters/repositories"
	"supply-route-service/internal/config"
	"supply-route-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool prepares the database: Postgres when DATABASE_URL is set (goose
// migrations), SQLite at DB_PATH otherwise. It then loads the supply
// catalogue file into the supply_locations table.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("CATALOG_PATH", "data/seeds/supply.geojson"), "supply catalogue file (GeoJSON or JSON rows)")
	filter := flag.String("filter", config.Get("CATALOG_ADDRESS_FILTER", ""), "comma-separated address keywords to keep")
	schemaOnly := flag.Bool("schema-only", false, "create the schema without seeding")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")

	var (
		conn *sql.DB
		repo *repositories.SQLSupplyRepository
		err  error
	)

	log.Println("Initializing database schema...")
	if databaseURL != "" {
		conn, err = db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		if err := repositories.Migrate(conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		repo = repositories.NewPostgresSupplyRepository(conn)
	} else {
		conn, err = db.OpenSqlite(config.Get("DB_PATH", "data/app.db"))
		if err != nil {
			log.Fatal(err)
		}
		if err := repositories.InitSchema(conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		repo = repositories.NewSqliteSupplyRepository(conn)
	}
	defer conn.Close()
	log.Println("Schema ready.")

	if *schemaOnly {
		return
	}

	log.Println("Seeding database...")
	c, err := catalog.LoadGeoJSONCatalog(*seedPath, splitKeywords(*filter))
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	locations := c.All()
	if err := repositories.SeedSupply(context.Background(), repo, locations); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. locations=%d", len(locations))
}

func splitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
