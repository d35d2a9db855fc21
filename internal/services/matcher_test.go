package services

import (
	"context"
	"testing"

	"supply-route-service/internal/adapters/catalog"
	"supply-route-service/internal/domain"

	"github.com/stretchr/testify/require"
)

var origin = domain.Coordinates{Lon: 16.0, Lat: 45.0}

func TestMatchPicksFeasibleOverNearer(t *testing.T) {
	c := catalog.NewGeoJSONCatalog([]domain.SupplyLocation{
		{ID: "near-small", Material: "sand", Capacity: 5, Coordinates: domain.Coordinates{Lon: 16.01, Lat: 45.0}},
		{ID: "far-big", Material: "sand", Capacity: 50, Coordinates: domain.Coordinates{Lon: 16.064, Lat: 45.0}},
	})

	assignments, unmet := NewMatcher(nil).Match(context.Background(),
		[]domain.Demand{{Material: "sand", Quantity: 10}}, c, origin)

	require.Empty(t, unmet)
	require.Len(t, assignments, 1)
	require.Equal(t, "far-big", assignments[0].Location.ID)
	require.InDelta(t, 5.0, assignments[0].DistanceKm, 0.1)
}

func TestMatchPicksNearestFeasible(t *testing.T) {
	c := catalog.NewGeoJSONCatalog([]domain.SupplyLocation{
		{ID: "far", Material: "clay", Capacity: 100, Coordinates: domain.Coordinates{Lon: 16.5, Lat: 45.0}},
		{ID: "near", Material: "clay", Capacity: 100, Coordinates: domain.Coordinates{Lon: 16.1, Lat: 45.0}},
		{ID: "wrong-material", Material: "sand", Capacity: 100, Coordinates: domain.Coordinates{Lon: 16.0, Lat: 45.0}},
	})

	assignments, unmet := NewMatcher(nil).Match(context.Background(),
		[]domain.Demand{{Material: "clay", Quantity: 100}}, c, origin)

	require.Empty(t, unmet)
	require.Equal(t, "near", assignments[0].Location.ID)
}

func TestMatchTieKeepsCatalogueOrder(t *testing.T) {
	c := catalog.NewGeoJSONCatalog([]domain.SupplyLocation{
		{ID: "first", Material: "clay", Capacity: 10, Coordinates: domain.Coordinates{Lon: 16.1, Lat: 45.0}},
		{ID: "second", Material: "clay", Capacity: 10, Coordinates: domain.Coordinates{Lon: 16.1, Lat: 45.0}},
		{ID: "third", Material: "clay", Capacity: 10, Coordinates: domain.Coordinates{Lon: 16.1, Lat: 45.0}},
	})

	assignments, unmet := NewMatcher(nil).Match(context.Background(),
		[]domain.Demand{{Material: "clay", Quantity: 1}}, c, origin)

	require.Empty(t, unmet)
	require.Len(t, assignments, 1)
	require.Equal(t, "first", assignments[0].Location.ID)
}

func TestMatchSkipsInactiveDemands(t *testing.T) {
	c := catalog.NewGeoJSONCatalog(nil)

	assignments, unmet := NewMatcher(nil).Match(context.Background(),
		[]domain.Demand{{Material: "clay", Quantity: 0}, {Material: "", Quantity: 5}}, c, origin)

	require.Empty(t, assignments)
	require.Empty(t, unmet)
}

func TestMatchAllIsAllOrNothing(t *testing.T) {
	c := catalog.NewGeoJSONCatalog([]domain.SupplyLocation{
		{ID: "s", Material: "sand", Capacity: 50, Coordinates: domain.Coordinates{Lon: 16.1, Lat: 45.0}},
		{ID: "c", Material: "clay", Capacity: 10, Coordinates: domain.Coordinates{Lon: 16.1, Lat: 45.0}},
	})

	assignments, err := NewMatcher(nil).MatchAll(context.Background(), []domain.Demand{
		{Material: "sand", Quantity: 10},
		{Material: "clay", Quantity: 1000},
	}, c, origin)

	require.Nil(t, assignments)
	var nf *domain.NoFeasibleSupplyError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, []string{"clay"}, nf.Materials())
}

func TestMatchAllNeverReturnsInfeasible(t *testing.T) {
	locs := []domain.SupplyLocation{
		{ID: "1", Material: "sand", Capacity: 1, Coordinates: domain.Coordinates{Lon: 16.01, Lat: 45.0}},
		{ID: "2", Material: "sand", Capacity: 30, Coordinates: domain.Coordinates{Lon: 16.2, Lat: 45.0}},
		{ID: "3", Material: "clay", Capacity: 30, Coordinates: domain.Coordinates{Lon: 16.02, Lat: 45.0}},
		{ID: "4", Material: "clay", Capacity: 300, Coordinates: domain.Coordinates{Lon: 16.3, Lat: 45.0}},
	}
	demands := []domain.Demand{{Material: "sand", Quantity: 20}, {Material: "clay", Quantity: 200}}

	assignments, err := NewMatcher(nil).MatchAll(context.Background(), demands, catalog.NewGeoJSONCatalog(locs), origin)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	for _, a := range assignments {
		require.True(t, a.Location.CanSupply(a.Demand))
	}
}
