package oracle

import (
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// PriceData is the per-asset record held in a store slot.
type PriceData struct {
	Price          decimal.Decimal
	LastPrice      decimal.Decimal
	LastUpdateTime int64 // unix seconds, monotonically non-decreasing
	APY            decimal.Decimal
}

// Header is the global oracle singleton.
type Header struct {
	Authority        solana.PublicKey
	FeedProvider     solana.PublicKey
	EmergencyStop    bool
	LastGlobalUpdate int64
	AssetCount       uint8
}

// Data holds the fixed, pre-sized price store.
type Data struct {
	PriceData [AssetCount]PriceData
}
