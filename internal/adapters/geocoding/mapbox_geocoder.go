package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"
	"supply-route-service/internal/ports"

	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://api.mapbox.com"

var ErrNoResult = errors.New("no geocode result")

// MapboxGeocoder resolves a typed place into coordinates with the Mapbox
// forward geocoding API. Results are kept in an optional persistent cache
// and concurrent lookups of the same address share one request.
type MapboxGeocoder struct {
	session *http.Client
	baseURL string
	token   string
	country string

	cache ports.GeocodeCache
	group singleflight.Group
}

func NewMapboxGeocoder(baseURL, token string, cache ports.GeocodeCache) *MapboxGeocoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &MapboxGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		country: "hr",
		cache:   cache,
	}
}

type geocodeResponse struct {
	Features []struct {
		Center []float64 `json:"center"`
	} `json:"features"`
}

// normalize trims and lowercases the address so cache keys are stable.
func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (g *MapboxGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "mapbox.Geocode")(&err)

	key := normalize(address)
	if key == "" {
		return domain.Coordinates{}, &domain.ValidationError{Reason: "address must not be empty"}
	}

	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, []string{key})
		if err != nil {
			log.Printf("geocode cache get failed: address=%q err=%v", key, err)
		} else if c, ok := hits[key]; ok {
			return c, nil
		}
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		return g.lookup(ctx, key)
	})
	if err != nil {
		return domain.Coordinates{}, err
	}
	c := v.(domain.Coordinates)

	if g.cache != nil {
		if err := g.cache.PutMany(ctx, map[string]domain.Coordinates{key: c}); err != nil {
			log.Printf("geocode cache put failed: address=%q err=%v", key, err)
		}
	}

	return c, nil
}

func (g *MapboxGeocoder) lookup(ctx context.Context, query string) (domain.Coordinates, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", g.baseURL, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("get geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("access_token", g.token)
	q.Set("limit", "1")
	if g.country != "" {
		q.Set("country", g.country)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := g.session.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return domain.Coordinates{}, fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", query, ErrNoResult)
	}

	center := decoded.Features[0].Center
	if len(center) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", query)
	}

	return domain.Coordinates{Lon: center[0], Lat: center[1]}, nil
}
