package trips

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"supply-route-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

const okTrip = `{
  "code": "Ok",
  "trips": [{
    "geometry": {"type": "LineString", "coordinates": [[16, 45], [16.1, 45.1], [16.2, 45.0], [16, 45]]},
    "distance": 12345.6
  }],
  "waypoints": [{"waypoint_index": 0}, {"waypoint_index": 2}, {"waypoint_index": 1}]
}`

var tripCoords = []domain.Coordinates{
	{Lon: 16, Lat: 45},
	{Lon: 16.2, Lat: 45},
	{Lon: 16.1, Lat: 45.1},
}

func TestMapboxOptimizeTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/optimized-trips/v1/mapbox/driving/16.000000,45.000000;16.200000,45.000000;16.100000,45.100000", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "tok", q.Get("access_token"))
		require.Equal(t, "full", q.Get("overview"))
		require.Equal(t, "geojson", q.Get("geometries"))
		require.Equal(t, "true", q.Get("roundtrip"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okTrip))
	}))
	defer srv.Close()

	p := NewMapboxTripProvider(srv.URL, "", "tok")
	route, err := p.OptimizeTrip(context.Background(), tripCoords)
	require.NoError(t, err)

	line, ok := route.Geometry.(orb.LineString)
	require.True(t, ok)
	require.Len(t, line, 4)
	require.Equal(t, 12345.6, route.DistanceMeters)
	require.Equal(t, 12.35, route.DistanceKm)
	require.Equal(t, "12.35", route.DistanceLabel)
	require.Equal(t, []int{0, 2, 1}, route.VisitOrder)
}

func TestMapboxOptimizeTripFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "no trips", status: http.StatusOK, body: `{"code":"Ok","trips":[]}`},
		{name: "non ok code", status: http.StatusOK, body: `{"code":"NoTrips","message":"no trip found"}`},
		{name: "http error", status: http.StatusUnprocessableEntity, body: `{"message":"invalid input"}`},
		{name: "garbage", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewMapboxTripProvider(srv.URL, "", "tok")
			_, err := p.OptimizeTrip(context.Background(), tripCoords)

			var pe *domain.ProviderError
			require.ErrorAs(t, err, &pe)
		})
	}
}

func TestMapboxOptimizeTripRejectsTooManyCoordinates(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	coords := make([]domain.Coordinates, MaxCoordinates+1)
	for i := range coords {
		coords[i] = domain.Coordinates{Lon: 16 + float64(i)/100, Lat: 45}
	}

	_, err := NewMapboxTripProvider(srv.URL, "", "tok").OptimizeTrip(context.Background(), coords)
	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	require.False(t, called)
}

type mapCache struct {
	m      map[string]domain.RouteResult
	getErr error
	puts   int
}

func (c *mapCache) GetTrip(_ context.Context, key string) (domain.RouteResult, bool, error) {
	if c.getErr != nil {
		return domain.RouteResult{}, false, c.getErr
	}
	r, ok := c.m[key]
	return r, ok, nil
}

func (c *mapCache) PutTrip(_ context.Context, key string, route domain.RouteResult, _ time.Duration) error {
	c.puts++
	c.m[key] = route
	return nil
}

func TestCachedTripProviderSkipsProviderOnHit(t *testing.T) {
	inner := NewMockTripProvider(5000)
	cache := &mapCache{m: map[string]domain.RouteResult{}}
	p := NewCachedTripProvider(inner, cache, "mapbox/driving", time.Hour)

	first, err := p.OptimizeTrip(context.Background(), tripCoords)
	require.NoError(t, err)
	second, err := p.OptimizeTrip(context.Background(), tripCoords)
	require.NoError(t, err)

	require.Len(t, inner.Calls(), 1)
	require.Equal(t, 1, cache.puts)
	require.Equal(t, first.DistanceLabel, second.DistanceLabel)
}

func TestCachedTripProviderIgnoresCacheFailure(t *testing.T) {
	inner := NewMockTripProvider(5000)
	cache := &mapCache{m: map[string]domain.RouteResult{}, getErr: errors.New("cache down")}
	p := NewCachedTripProvider(inner, cache, "mapbox/driving", time.Hour)

	route, err := p.OptimizeTrip(context.Background(), tripCoords)
	require.NoError(t, err)
	require.Equal(t, "5.00", route.DistanceLabel)
	require.Len(t, inner.Calls(), 1)
}

func TestCachedTripProviderZeroTTLBypassesCache(t *testing.T) {
	inner := NewMockTripProvider(5000)
	cache := &mapCache{m: map[string]domain.RouteResult{}}
	p := NewCachedTripProvider(inner, cache, "mapbox/driving", 0)

	for range 2 {
		_, err := p.OptimizeTrip(context.Background(), tripCoords)
		require.NoError(t, err)
	}

	require.Len(t, inner.Calls(), 2)
	require.Zero(t, cache.puts)
}

func TestTripKeyDependsOnOrderAndProfile(t *testing.T) {
	reversed := []domain.Coordinates{tripCoords[0], tripCoords[2], tripCoords[1]}

	require.NotEqual(t, TripKey("mapbox/driving", tripCoords), TripKey("mapbox/driving", reversed))
	require.NotEqual(t, TripKey("mapbox/driving", tripCoords), TripKey("mapbox/walking", tripCoords))
	require.Equal(t, "p|16.000000,45.000000", TripKey("p", tripCoords[:1]))
}
