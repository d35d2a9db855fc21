package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"

	"github.com/paulmach/orb/geojson"
)

const (
	DefaultBaseURL = "https://api.mapbox.com"
	DefaultProfile = "mapbox/driving"

	// MaxCoordinates is the Optimization API limit per request.
	MaxCoordinates = 12
)

// MapboxTripProvider implements ports.TripProvider with the Mapbox
// Optimization (v1) API, asking for a roundtrip that starts at coords[0].
type MapboxTripProvider struct {
	session *http.Client
	baseURL string
	profile string
	token   string
}

func NewMapboxTripProvider(baseURL, profile, token string) *MapboxTripProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &MapboxTripProvider{
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
		token:   token,
	}
}

// Profile identifies the routing profile, used in trip cache keys.
func (m *MapboxTripProvider) Profile() string { return m.profile }

type tripResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Trips   []struct {
		Geometry json.RawMessage `json:"geometry"`
		Distance float64         `json:"distance"`
	} `json:"trips"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
	} `json:"waypoints"`
}

func (m *MapboxTripProvider) OptimizeTrip(
	ctx context.Context,
	coords []domain.Coordinates,
) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "mapbox.OptimizeTrip")(&err)

	if m.token == "" {
		return domain.RouteResult{}, &domain.ProviderError{Reason: "mapbox access token is not configured"}
	}
	if len(coords) < 2 {
		return domain.RouteResult{}, &domain.ProviderError{Reason: "trip needs an origin and at least one stop"}
	}
	if len(coords) > MaxCoordinates {
		return domain.RouteResult{}, &domain.ProviderError{
			Reason: fmt.Sprintf("trip has %d coordinates, limit is %d", len(coords), MaxCoordinates),
		}
	}

	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		parts = append(parts, c.String())
	}
	endpoint := fmt.Sprintf("%s/optimized-trips/v1/%s/%s", m.baseURL, m.profile, strings.Join(parts, ";"))

	req, err := m.newRequest(ctx, endpoint)
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("optimize trip request: %w", err)
	}
	q := req.URL.Query()
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	q.Set("roundtrip", "true")
	q.Set("source", "first")
	req.URL.RawQuery = q.Encode()

	resp, err := m.do(req)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) {
			return domain.RouteResult{}, &domain.ProviderError{Reason: fmt.Sprintf("unexpected status %d", he.Code), Err: err}
		}
		return domain.RouteResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded tripResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteResult{}, &domain.ProviderError{Reason: "decode trip response", Err: err}
	}

	if decoded.Code != "Ok" {
		return domain.RouteResult{}, &domain.ProviderError{Reason: fmt.Sprintf("code %q: %s", decoded.Code, decoded.Message)}
	}
	if len(decoded.Trips) == 0 {
		return domain.RouteResult{}, &domain.ProviderError{Reason: "response contains no trips"}
	}

	trip := decoded.Trips[0]
	geom, err := geojson.UnmarshalGeometry(trip.Geometry)
	if err != nil {
		return domain.RouteResult{}, &domain.ProviderError{Reason: "decode trip geometry", Err: err}
	}

	order := make([]int, 0, len(decoded.Waypoints))
	for _, w := range decoded.Waypoints {
		order = append(order, w.WaypointIndex)
	}

	return domain.NewRouteResult(geom.Geometry(), trip.Distance, order), nil
}
