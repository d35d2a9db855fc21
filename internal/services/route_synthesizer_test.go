package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"supply-route-service/internal/adapters/trips"
	"supply-route-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestSynthesizeSendsOriginFirst(t *testing.T) {
	provider := trips.NewMockTripProvider(42567)
	s := NewRouteSynthesizer(provider, 0)
	require.Equal(t, DefaultProviderTimeout, s.Timeout)

	stops := []domain.Coordinates{{Lon: 16.1, Lat: 45.1}, {Lon: 16.2, Lat: 45.2}}
	route, err := s.Synthesize(context.Background(), origin, stops)
	require.NoError(t, err)
	require.Equal(t, "42.57", route.DistanceLabel)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, append([]domain.Coordinates{origin}, stops...), calls[0])
}

func TestSynthesizeTimeoutIsProviderError(t *testing.T) {
	provider := trips.NewMockTripProvider(1000)
	provider.Block = make(chan struct{})
	defer close(provider.Block)

	s := NewRouteSynthesizer(provider, 20*time.Millisecond)
	_, err := s.Synthesize(context.Background(), origin, []domain.Coordinates{{Lon: 16.1, Lat: 45.1}})

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, pe.Reason, "no response within")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSynthesizeWrapsProviderFailures(t *testing.T) {
	provider := trips.NewMockTripProvider(1000)
	provider.Err = errors.New("connection refused")

	_, err := NewRouteSynthesizer(provider, time.Second).Synthesize(context.Background(), origin,
		[]domain.Coordinates{{Lon: 16.1, Lat: 45.1}})

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "request failed", pe.Reason)
}

func TestSynthesizeRejectsEmptyWaypoints(t *testing.T) {
	provider := trips.NewMockTripProvider(1000)

	_, err := NewRouteSynthesizer(provider, time.Second).Synthesize(context.Background(), origin, nil)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Empty(t, provider.Calls())
}

func TestSynthesizeWithoutProvider(t *testing.T) {
	_, err := NewRouteSynthesizer(nil, time.Second).Synthesize(context.Background(), origin,
		[]domain.Coordinates{{Lon: 16.1, Lat: 45.1}})

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
}
