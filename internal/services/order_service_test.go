package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"supply-route-service/internal/adapters/catalog"
	"supply-route-service/internal/adapters/mapview"
	"supply-route-service/internal/adapters/trips"
	"supply-route-service/internal/domain"
	"supply-route-service/internal/ports"

	"github.com/stretchr/testify/require"
)

var testSupply = []domain.SupplyLocation{
	{ID: "sand-1", Material: "Građevni pijesak i šljunak", Capacity: 50, Coordinates: domain.Coordinates{Lon: 16.06, Lat: 45.0}},
	{ID: "stone-1", Material: "Tehničko-građevni kamen", Capacity: 500, Coordinates: domain.Coordinates{Lon: 16.2, Lat: 45.1}},
	{ID: "clay-1", Material: "Ciglarska glina", Capacity: 100, Coordinates: domain.Coordinates{Lon: 15.9, Lat: 45.2}},
}

type fakeMessenger struct {
	to, message string
	result      ports.SendResult
}

func (f *fakeMessenger) Send(_ context.Context, to, message string) (ports.SendResult, error) {
	f.to, f.message = to, message
	return f.result, nil
}

type fakeGeocoder struct{ c domain.Coordinates }

func (f fakeGeocoder) Geocode(context.Context, string) (domain.Coordinates, error) { return f.c, nil }

func newTestService(t *testing.T, provider ports.TripProvider, msg ports.Messenger) *OrderService {
	t.Helper()
	svc, err := NewOrderService(OrderServiceDeps{
		Catalog:     catalog.NewGeoJSONCatalog(testSupply),
		Synthesizer: NewRouteSynthesizer(provider, time.Second),
		Geocoder:    fakeGeocoder{c: domain.Coordinates{Lon: 15.98, Lat: 45.81}},
		Messenger:   msg,
		NewMap:      mapview.New,
	})
	require.NoError(t, err)
	return svc
}

func TestPlanRouteRendersAndLinks(t *testing.T) {
	provider := trips.NewMockTripProvider(42567)
	svc := newTestService(t, provider, nil)

	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	n := svc.PlanRoute(context.Background(), s.ID, []domain.Demand{
		{Material: "Ciglarska glina", Quantity: 10},
		{Material: "Građevni pijesak i šljunak", Quantity: 10},
	})
	require.True(t, n.OK(), n.Message)
	require.Equal(t, CodeRouteCreated, n.Code)
	require.Contains(t, n.Message, "42.57")

	// catalogue order: sand before clay
	require.Equal(t, "sand-1", n.Assignments[0].Location.ID)
	require.Equal(t, "clay-1", n.Assignments[1].Location.ID)
	require.Equal(t, "https://www.google.com/maps/dir/45,16/45,16.06/45.2,15.9", n.ShareLink)

	snap := s.Map.Snapshot()
	require.Len(t, snap.Layers, 2)
	require.Equal(t, "Total distance: 42.57 km", labelTitle(t, snap))

	_, link, ok := s.LastRoute()
	require.True(t, ok)
	require.Equal(t, n.ShareLink, link)
}

func TestPlanRouteNoFeasibleSupplySkipsProvider(t *testing.T) {
	provider := trips.NewMockTripProvider(1000)
	svc := newTestService(t, provider, nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	n := svc.PlanRoute(context.Background(), s.ID, []domain.Demand{{Material: "Ciglarska glina", Quantity: 1000}})

	require.Equal(t, CodeNoFeasibleSupply, n.Code)
	require.Equal(t, []string{"Ciglarska glina"}, n.Unmet)
	require.Contains(t, n.Message, "Ciglarska glina")
	require.Empty(t, provider.Calls())
	require.Empty(t, s.Map.Snapshot().Layers)
}

func TestPlanRouteValidation(t *testing.T) {
	provider := trips.NewMockTripProvider(1000)
	svc := newTestService(t, provider, nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	n := svc.PlanRoute(context.Background(), s.ID, []domain.Demand{{Material: "Ciglarska glina", Quantity: 0}})
	require.Equal(t, CodeValidation, n.Code)
	require.Empty(t, provider.Calls())

	n = svc.PlanRoute(context.Background(), "nope", []domain.Demand{{Material: "Ciglarska glina", Quantity: 1}})
	require.Equal(t, CodeSessionNotFound, n.Code)
}

func TestPlanRouteEmptyTripsLeavesOverlayUntouched(t *testing.T) {
	var empty atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if empty.Load() {
			_, _ = w.Write([]byte(`{"code":"Ok","trips":[],"waypoints":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":"Ok","trips":[{"geometry":{"type":"LineString","coordinates":[[16,45],[16.06,45],[16,45]]},"distance":10000}],"waypoints":[{"waypoint_index":0},{"waypoint_index":1}]}`))
	}))
	defer srv.Close()

	svc := newTestService(t, trips.NewMapboxTripProvider(srv.URL, "", "tok"), nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	demands := []domain.Demand{{Material: "Građevni pijesak i šljunak", Quantity: 10}}
	require.True(t, svc.PlanRoute(context.Background(), s.ID, demands).OK())
	before := s.Map.Snapshot()

	empty.Store(true)
	n := svc.PlanRoute(context.Background(), s.ID, demands)

	require.Equal(t, CodeProviderError, n.Code)
	require.Equal(t, domain.SeverityError, n.Severity)
	require.Equal(t, before, s.Map.Snapshot())
}

func TestPlanRouteSupersededRequestDoesNotRender(t *testing.T) {
	provider := trips.NewMockTripProvider(1000)
	provider.Block = make(chan struct{})
	svc := newTestService(t, provider, nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	first := make(chan domain.Notification, 1)
	go func() {
		first <- svc.PlanRoute(context.Background(), s.ID, []domain.Demand{{Material: "Ciglarska glina", Quantity: 1}})
	}()
	require.Eventually(t, func() bool { return len(provider.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan domain.Notification, 1)
	go func() {
		second <- svc.PlanRoute(context.Background(), s.ID, []domain.Demand{{Material: "Tehničko-građevni kamen", Quantity: 1}})
	}()

	n1 := <-first
	require.Equal(t, CodeSuperseded, n1.Code)

	close(provider.Block)
	n2 := <-second
	require.True(t, n2.OK(), n2.Message)
	require.Equal(t, "stone-1", n2.Assignments[0].Location.ID)

	_, link, ok := s.LastRoute()
	require.True(t, ok)
	require.Equal(t, n2.ShareLink, link)
}

func TestPlanRouteOnDestroyedSessionReportsNotFound(t *testing.T) {
	provider := trips.NewMockTripProvider(1000)
	provider.Block = make(chan struct{})
	defer close(provider.Block)
	svc := newTestService(t, provider, nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	done := make(chan domain.Notification, 1)
	go func() {
		done <- svc.PlanRoute(context.Background(), s.ID, []domain.Demand{{Material: "Ciglarska glina", Quantity: 1}})
	}()
	require.Eventually(t, func() bool { return len(provider.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.DestroySession(s.ID))

	n := <-done
	require.Equal(t, CodeSessionNotFound, n.Code)
	require.Empty(t, s.Map.Snapshot().Layers)
	_, _, ok := s.LastRoute()
	require.False(t, ok)
}

func TestFeatureClickRoutesToLocation(t *testing.T) {
	provider := trips.NewMockTripProvider(8000)
	svc := newTestService(t, provider, nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	n, err := s.Map.Click(context.Background(), domain.SupplyLayerID, "stone-1")
	require.NoError(t, err)
	require.True(t, n.OK(), n.Message)
	require.Equal(t, "https://www.google.com/maps/dir/45,16/45.1,16.2", n.ShareLink)
	require.Len(t, provider.Calls()[0], 2)

	n, err = s.Map.Click(context.Background(), domain.SupplyLayerID, "missing")
	require.NoError(t, err)
	require.Equal(t, CodeSupplyNotFound, n.Code)
}

func TestShareSendsLastRouteLink(t *testing.T) {
	msg := &fakeMessenger{result: ports.SendResult{Success: true, MessageSID: "SM1"}}
	svc := newTestService(t, trips.NewMockTripProvider(1000), msg)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	n := svc.Share(context.Background(), s.ID, "+385911234567")
	require.Equal(t, CodeValidation, n.Code)

	require.True(t, svc.PlanRoute(context.Background(), s.ID, []domain.Demand{{Material: "Ciglarska glina", Quantity: 1}}).OK())

	n = svc.Share(context.Background(), s.ID, "+385 91 123 4567")
	require.True(t, n.OK(), n.Message)
	require.Equal(t, "+385911234567", msg.to)
	require.Equal(t, "Route link: https://www.google.com/maps/dir/45,16/45.2,15.9", msg.message)

	n = svc.Share(context.Background(), s.ID, "call me")
	require.Equal(t, CodeValidation, n.Code)
}

func TestShareReportsRelayFailure(t *testing.T) {
	msg := &fakeMessenger{result: ports.SendResult{Success: false, Error: "unverified number"}}
	svc := newTestService(t, trips.NewMockTripProvider(1000), msg)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)
	require.True(t, svc.PlanRoute(context.Background(), s.ID, []domain.Demand{{Material: "Ciglarska glina", Quantity: 1}}).OK())

	n := svc.Share(context.Background(), s.ID, "+385911234567")
	require.Equal(t, CodeMessagingError, n.Code)
	require.Contains(t, n.Message, "unverified number")
}

func TestLayerToggleReadsLiveState(t *testing.T) {
	svc := newTestService(t, trips.NewMockTripProvider(1000), nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	toggle := domain.LayerAction{Kind: domain.LayerToggle, LayerID: "roads"}

	layers, err := svc.ApplyLayerAction(s.ID, toggle)
	require.NoError(t, err)
	require.True(t, visible(layers, "roads"))

	layers, err = svc.ApplyLayerAction(s.ID, toggle)
	require.NoError(t, err)
	require.False(t, visible(layers, "roads"))

	_, err = svc.ApplyLayerAction(s.ID, domain.LayerAction{Kind: domain.LayerHide, LayerID: "rivers"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	current, err := svc.Layers(s.ID)
	require.NoError(t, err)
	require.Equal(t, layers, current)
}

func visible(layers []domain.Layer, id string) bool {
	for _, l := range layers {
		if l.ID == id {
			return l.Visible
		}
	}
	return false
}

func TestSetOriginAndDestroySession(t *testing.T) {
	svc := newTestService(t, trips.NewMockTripProvider(1000), nil)
	s, err := svc.CreateSession(origin)
	require.NoError(t, err)

	got, err := svc.SetOrigin(context.Background(), s.ID, nil, "Zagreb")
	require.NoError(t, err)
	require.Equal(t, domain.Coordinates{Lon: 15.98, Lat: 45.81}, got)
	require.Equal(t, got, s.Origin())

	_, err = svc.SetOrigin(context.Background(), s.ID, &domain.Coordinates{Lon: 300, Lat: 0}, "")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	require.NoError(t, svc.DestroySession(s.ID))
	require.ErrorIs(t, svc.DestroySession(s.ID), domain.ErrSessionNotFound)
	_, err = svc.Session(s.ID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}
