package mapview

import (
	"context"
	"encoding/json"
	"testing"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/ports"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

func TestMemoryMapRejectsDuplicateSourceAndLayer(t *testing.T) {
	m := NewMemoryMap()
	g := geojson.NewGeometry(orb.Point{16, 45})

	require.NoError(t, m.AddSource("route", g))
	require.ErrorIs(t, m.AddSource("route", g), ErrSourceExists)

	spec := ports.LayerSpec{ID: "route", Type: "line", Source: "route"}
	require.NoError(t, m.AddLayer(spec))
	require.ErrorIs(t, m.AddLayer(spec), ErrLayerExists)

	require.True(t, m.HasSource("route"))
	require.True(t, m.HasLayer("route"))
	require.Len(t, m.Snapshot().Layers, 1)
}

func TestMemoryMapSetSourceDataRequiresSource(t *testing.T) {
	m := NewMemoryMap()
	g := geojson.NewGeometry(orb.Point{16, 45})

	require.ErrorIs(t, m.SetSourceData("route", g), ErrSourceMissing)
	require.ErrorIs(t, m.AddLayer(ports.LayerSpec{ID: "route", Source: "route"}), ErrSourceMissing)

	require.NoError(t, m.AddSource("route", g))
	require.NoError(t, m.SetSourceData("route", geojson.NewGeometry(orb.Point{17, 46})))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(m.Snapshot().Sources["route"], &decoded))
	require.Equal(t, []any{17.0, 46.0}, decoded["coordinates"])
}

func TestMemoryMapClickDispatchesToHandler(t *testing.T) {
	m := NewMemoryMap()

	_, err := m.Click(context.Background(), "stone", "42")
	require.ErrorIs(t, err, ErrNoClickTarget)

	var got string
	m.OnFeatureClick("stone", func(_ context.Context, featureID string) domain.Notification {
		got = featureID
		return domain.Notification{Severity: domain.SeveritySuccess}
	})

	n, err := m.Click(context.Background(), "stone", "42")
	require.NoError(t, err)
	require.True(t, n.OK())
	require.Equal(t, "42", got)
}

func TestMemoryMapSnapshotIsACopy(t *testing.T) {
	m := NewMemoryMap()
	require.NoError(t, m.AddSource("route", geojson.NewGeometry(orb.Point{16, 45})))

	snap := m.Snapshot()
	snap.Sources["route"][0] = 'x'
	delete(snap.Sources, "route")

	require.True(t, m.HasSource("route"))
	require.True(t, json.Valid(m.Snapshot().Sources["route"]))
}
