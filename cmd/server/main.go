package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supply-route-service/internal/adapters/cache"
	"supply-route-service/internal/adapters/catalog"
	"supply-route-service/internal/adapters/geocoding"
	"supply-route-service/internal/adapters/mapview"
	"supply-route-service/internal/adapters/messaging"
	"supply-route-service/internal/adapters/repositories"
	"supply-route-service/internal/adapters/trips"
	"supply-route-service/internal/api"
	"supply-route-service/internal/config"
	"supply-route-service/internal/domain"
	"supply-route-service/internal/geo"
	"supply-route-service/internal/platform/db"
	"supply-route-service/internal/ports"
	"supply-route-service/internal/services"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, Mapbox, SMS relay) behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.MapboxToken == "" {
		log.Fatal("MAPBOX_ACCESS_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, repo, err := openStorage(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Reload the catalogue file into the database on startup when present.
	if err := seedCatalog(ctx, cfg, repo); err != nil {
		log.Fatal(err)
	}

	tripCache, closeCache, err := openTripCache(ctx, cfg, conn, dialect)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	mapbox := trips.NewMapboxTripProvider(cfg.MapboxBaseURL, cfg.MapboxProfile, cfg.MapboxToken)
	provider := trips.NewCachedTripProvider(mapbox, tripCache, mapbox.Profile(), cfg.TripCacheTTL)

	metric, err := geo.Metric(cfg.DistanceMetric)
	if err != nil {
		log.Fatal(err)
	}

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Catalog:     catalog.NewRepositoryCatalog(repo),
		Matcher:     services.NewMatcher(metric),
		Synthesizer: services.NewRouteSynthesizer(provider, cfg.ProviderTimeout),
		Overlay:     services.NewOverlaySynchronizer(),
		Geocoder:    geocoding.NewMapboxGeocoder(cfg.MapboxBaseURL, cfg.MapboxToken, cache.NewSQLGeocodeCache(conn, dialect)),
		Messenger:   messaging.NewRelayClient(cfg.SMSRelayURL),
		Materials:   domain.DefaultMaterials,
		NewMap:      mapview.New,
	})
	if err != nil {
		log.Fatal(err)
	}

	origin := domain.Coordinates{Lon: cfg.DefaultOrigin[0], Lat: cfg.DefaultOrigin[1]}
	router := api.NewRouter(orders, origin, conn)

	// Write timeout leaves room for the provider timeout on a cold trip cache.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ProviderTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s storage=%s", cfg.Port, dialect)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// openStorage uses Postgres when DATABASE_URL is set and SQLite otherwise,
// bringing the schema up to date either way.
func openStorage(cfg config.Config) (*sql.DB, cache.Dialect, *repositories.SQLSupplyRepository, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, 0, nil, err
		}
		if err := repositories.Migrate(conn); err != nil {
			conn.Close()
			return nil, 0, nil, fmt.Errorf("open storage: %w", err)
		}
		return conn, cache.Postgres, repositories.NewPostgresSupplyRepository(conn), nil
	}

	conn, err := db.OpenSqlite(cfg.DBPath)
	if err != nil {
		return nil, 0, nil, err
	}
	if err := repositories.InitSchema(conn); err != nil {
		conn.Close()
		return nil, 0, nil, fmt.Errorf("open storage: %w", err)
	}
	return conn, cache.SQLite, repositories.NewSqliteSupplyRepository(conn), nil
}

func seedCatalog(ctx context.Context, cfg config.Config, repo *repositories.SQLSupplyRepository) error {
	if _, err := os.Stat(cfg.CatalogPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("catalog file not found, serving stored supply: path=%s", cfg.CatalogPath)
		return nil
	}

	c, err := catalog.LoadGeoJSONCatalog(cfg.CatalogPath, cfg.CatalogAddressFilter)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return repositories.SeedSupply(ctx, repo, c.All())
}

// openTripCache prefers Redis when REDIS_URL is set, falling back to the SQL
// trip_cache table.
func openTripCache(ctx context.Context, cfg config.Config, conn *sql.DB, dialect cache.Dialect) (ports.TripCache, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewSQLTripCache(conn, dialect), func() {}, nil
	}

	client, err := cache.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisTripCache(client), func() { _ = client.Close() }, nil
}
