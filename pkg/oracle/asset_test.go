package oracle

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetCanonicalOrder(t *testing.T) {
	expected := []AssetType{JupSOL, VSOL, BSOL, MSOL, HSOL, JitoSOL}
	assets := BatchAssets()
	require.Len(t, assets, AssetCount-1)
	for i, asset := range assets {
		assert.Equal(t, expected[i], asset)
		slot, err := asset.Slot()
		require.NoError(t, err)
		assert.Equal(t, i, slot, "batch index matches store slot")
	}

	slot, err := SOL.Slot()
	require.NoError(t, err)
	assert.Equal(t, AssetCount-1, slot, "SOL occupies the last slot")
}

func TestAssetString(t *testing.T) {
	assert.Equal(t, "JupSOL", JupSOL.String())
	assert.Equal(t, "JitoSOL", JitoSOL.String())
	assert.Equal(t, "SOL", SOL.String())
	assert.Equal(t, "unknown", AssetType(200).String())
}

func TestAssetSlotBounds(t *testing.T) {
	_, err := AssetType(AssetCount).Slot()
	assert.True(t, errors.Is(err, ErrAssetNotFound))
}

func TestParseAssetType(t *testing.T) {
	for i := 0; i < AssetCount; i++ {
		asset := AssetType(i)
		parsed, err := ParseAssetType(asset.String())
		require.NoError(t, err)
		assert.Equal(t, asset, parsed)
	}

	_, err := ParseAssetType("USDC")
	assert.True(t, errors.Is(err, ErrAssetNotFound), "USDC never occupies a slot")
}
