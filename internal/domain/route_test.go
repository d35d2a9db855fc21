package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestNewRouteResultRoundsToTwoDecimals(t *testing.T) {
	r := NewRouteResult(orb.LineString{{16, 46}, {15, 45}}, 42567, []int{0, 1})

	require.Equal(t, 42.57, r.DistanceKm)
	require.Equal(t, "42.57", r.DistanceLabel)
	require.Equal(t, 42567.0, r.DistanceMeters)
}

func TestMetersToKm(t *testing.T) {
	cases := map[float64]float64{
		0:      0,
		999:    1,
		1004:   1,
		1005:   1.01,
		123456: 123.46,
	}
	for in, want := range cases {
		require.Equal(t, want, MetersToKm(in), "meters=%v", in)
	}
}

func TestCoordinatesValid(t *testing.T) {
	require.True(t, Coordinates{Lon: 16.3, Lat: 46.3}.Valid())
	require.False(t, Coordinates{Lon: 181, Lat: 0}.Valid())
	require.False(t, Coordinates{Lon: 0, Lat: -91}.Valid())
	require.Equal(t, "16.343972,46.310371", Coordinates{Lon: 16.343972, Lat: 46.310371}.String())
}
