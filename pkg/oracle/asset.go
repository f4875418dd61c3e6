package oracle

import (
	"github.com/pkg/errors"
)

// AssetType identifies one of the tracked assets. The declaration order of
// the six LSTs is the canonical batch-feed order; SOL is last and is updated
// from its own single-value feed.
type AssetType uint8

const (
	JupSOL AssetType = iota
	VSOL
	BSOL
	MSOL
	HSOL
	JitoSOL
	SOL
)

// AssetCount is the fixed number of store slots (6 LSTs + SOL).
const AssetCount = 7

var assetNames = [AssetCount]string{
	"JupSOL", "VSOL", "BSOL", "MSOL", "HSOL", "JitoSOL", "SOL",
}

func (a AssetType) String() string {
	if int(a) >= len(assetNames) {
		return "unknown"
	}
	return assetNames[a]
}

// Valid reports whether a names one of the fixed slots.
func (a AssetType) Valid() bool {
	return int(a) < AssetCount
}

// Slot returns the fixed store slot for the asset.
func (a AssetType) Slot() (int, error) {
	if !a.Valid() {
		return 0, errors.Wrapf(ErrAssetNotFound, "asset type %d", a)
	}
	return int(a), nil
}

// BatchAssets returns the assets carried by a multi-asset feed round, in
// canonical order.
func BatchAssets() [AssetCount - 1]AssetType {
	return [AssetCount - 1]AssetType{JupSOL, VSOL, BSOL, MSOL, HSOL, JitoSOL}
}

// ParseAssetType resolves an asset name (as used on the CLI surface).
func ParseAssetType(name string) (AssetType, error) {
	for i, n := range assetNames {
		if n == name {
			return AssetType(i), nil
		}
	}
	return 0, errors.Wrapf(ErrAssetNotFound, "unknown asset %q", name)
}
