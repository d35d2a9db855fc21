package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings of the server and the db tool.
// Values come from the environment, optionally populated from a .env file
// by the caller (godotenv) before Load is invoked.
type Config struct {
	Port string

	// Storage: Postgres when DatabaseURL is set, SQLite at DBPath otherwise.
	DBPath      string
	DatabaseURL string
	RedisURL    string

	CatalogPath          string
	CatalogAddressFilter []string

	MapboxToken     string
	MapboxBaseURL   string
	MapboxProfile   string
	ProviderTimeout time.Duration
	TripCacheTTL    time.Duration // 0 disables the trip cache

	SMSRelayURL    string
	DistanceMetric string

	// DefaultOrigin is used for new sessions that do not specify one.
	DefaultOrigin [2]float64
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func Load() (Config, error) {
	cfg := Config{
		Port:           Get("PORT", "8080"),
		DBPath:         Get("DB_PATH", "data/app.db"),
		DatabaseURL:    Get("DATABASE_URL", ""),
		RedisURL:       Get("REDIS_URL", ""),
		CatalogPath:    Get("CATALOG_PATH", "data/seeds/supply.geojson"),
		MapboxToken:    Get("MAPBOX_ACCESS_TOKEN", ""),
		MapboxBaseURL:  Get("MAPBOX_BASE_URL", "https://api.mapbox.com"),
		MapboxProfile:  Get("MAPBOX_PROFILE", "mapbox/driving"),
		SMSRelayURL:    Get("SMS_RELAY_URL", "http://localhost:3001/send-sms"),
		DistanceMetric: Get("DISTANCE_METRIC", "haversine"),
	}

	if raw := Get("CATALOG_ADDRESS_FILTER", ""); raw != "" {
		for _, kw := range strings.Split(raw, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				cfg.CatalogAddressFilter = append(cfg.CatalogAddressFilter, kw)
			}
		}
	}

	timeout, err := time.ParseDuration(Get("PROVIDER_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("load config: invalid PROVIDER_TIMEOUT %q", os.Getenv("PROVIDER_TIMEOUT"))
	}
	cfg.ProviderTimeout = timeout

	ttl, err := time.ParseDuration(Get("TRIP_CACHE_TTL", "24h"))
	if err != nil || ttl < 0 {
		return Config{}, fmt.Errorf("load config: invalid TRIP_CACHE_TTL %q", os.Getenv("TRIP_CACHE_TTL"))
	}
	cfg.TripCacheTTL = ttl

	origin, err := ParseLonLat(Get("DEFAULT_ORIGIN", "16.343972,46.310371"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: DEFAULT_ORIGIN: %w", err)
	}
	cfg.DefaultOrigin = origin

	return cfg, nil
}

// ParseLonLat parses "lon,lat".
func ParseLonLat(s string) ([2]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]float64{}, fmt.Errorf("expected \"lon,lat\", got %q", s)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("parse longitude %q: %w", parts[0], err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("parse latitude %q: %w", parts[1], err)
	}

	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return [2]float64{}, fmt.Errorf("coordinates out of range: %q", s)
	}

	return [2]float64{lon, lat}, nil
}
