package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayerSetToggleReadsCurrentState(t *testing.T) {
	set := DefaultLayers()

	// Two toggles applied in sequence must cancel out; each step reads the
	// state produced by the previous one.
	once, err := set.Apply(LayerAction{Kind: LayerToggle, LayerID: "roads"})
	require.NoError(t, err)
	twice, err := once.Apply(LayerAction{Kind: LayerToggle, LayerID: "roads"})
	require.NoError(t, err)

	roads, _ := once.Layer("roads")
	require.True(t, roads.Visible)
	roads, _ = twice.Layer("roads")
	require.False(t, roads.Visible)

	// The original snapshot is untouched.
	roads, _ = set.Layer("roads")
	require.False(t, roads.Visible)
}

func TestLayerSetShowHideAreIdempotent(t *testing.T) {
	set := DefaultLayers()

	for i := 0; i < 2; i++ {
		var err error
		set, err = set.Apply(LayerAction{Kind: LayerHide, LayerID: SupplyLayerID})
		require.NoError(t, err)
	}
	stone, ok := set.Layer(SupplyLayerID)
	require.True(t, ok)
	require.False(t, stone.Visible)

	set, err := set.Apply(LayerAction{Kind: LayerShow, LayerID: SupplyLayerID})
	require.NoError(t, err)
	stone, _ = set.Layer(SupplyLayerID)
	require.True(t, stone.Visible)
}

func TestLayerSetRejectsUnknown(t *testing.T) {
	set := DefaultLayers()

	_, err := set.Apply(LayerAction{Kind: LayerToggle, LayerID: "rivers"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = ParseLayerActionKind("flip")
	require.ErrorAs(t, err, &ve)
}

func TestLayersReturnsCopy(t *testing.T) {
	set := DefaultLayers()
	layers := set.Layers()
	layers[0].Visible = true

	counties, _ := set.Layer("counties")
	require.False(t, counties.Visible)
}
