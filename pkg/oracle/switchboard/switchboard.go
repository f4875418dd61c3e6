package switchboard

import (
	"encoding/json"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// BatchSize is the number of interleaved (price, apy) pairs carried by a
// multi-asset feed round.
const BatchSize = 6

var (
	ErrInvalidSwitchboardData    = errors.New("invalid switchboard data")
	ErrInvalidAccountData        = errors.New("invalid account data")
	ErrInvalidDecimalConversion  = errors.New("invalid decimal conversion")
	ErrInvalidSwitchboardProgram = errors.New("feed account not owned by switchboard program")
)

// Decimal is the mantissa/scale representation used by switchboard
// aggregator rounds.
type Decimal struct {
	Mantissa bin.Int128
	Scale    uint32
}

// Decimal converts the mantissa/scale pair to an arbitrary-precision value.
func (d Decimal) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(d.Mantissa.BigInt(), -int32(d.Scale))
}

// Envelope is the JSON payload published by the aggregator: a primary result
// plus the raw per-task outputs. For multi-asset rounds the task outputs are
// laid out as interleaved [price0, apy0, price1, apy1, ...] in canonical
// asset order. Task outputs may contain non-numeric diagnostic strings.
type Envelope struct {
	Result  string   `json:"result"`
	Results []string `json:"results"`
}

// ParseEnvelope decodes the JSON payload of a feed round.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, errors.Wrap(ErrInvalidSwitchboardData, err.Error())
	}
	if env.Result == "" {
		return Envelope{}, errors.Wrap(ErrInvalidSwitchboardData, "missing result field")
	}
	return env, nil
}

// Feed is an already-authenticated feed round: the provider identity has been
// checked upstream, the payload is resident in memory.
type Feed struct {
	// Provider is the program that owns the feed account.
	Provider solana.PublicKey
	// Envelope holds the round payload.
	Envelope Envelope
	// Timestamp is the round open time (unix seconds), 0 when unknown.
	Timestamp int64
	// StdDeviation is the reported deviation across oracle responses.
	StdDeviation decimal.Decimal
	// NumSuccess is the number of oracles that responded successfully.
	NumSuccess uint32
}

// DecodeAssetPair extracts the (price, apy) pair for the asset at canonical
// index i. A parse failure at the requested offsets is a hard error, entries
// for other assets are not inspected.
func DecodeAssetPair(env Envelope, i int) (price, apy decimal.Decimal, err error) {
	price, err = DecodeAssetPrice(env, i)
	if err != nil {
		return price, apy, err
	}
	apy, err = DecodeAssetAPY(env, i)
	return price, apy, err
}

// DecodeAssetPrice extracts only the price entry (offset 2i) for the asset
// at canonical index i.
func DecodeAssetPrice(env Envelope, i int) (decimal.Decimal, error) {
	return decodeEntry(env, i, 2*i)
}

// DecodeAssetAPY extracts only the apy entry (offset 2i+1) for the asset at
// canonical index i.
func DecodeAssetAPY(env Envelope, i int) (decimal.Decimal, error) {
	return decodeEntry(env, i, 2*i+1)
}

func decodeEntry(env Envelope, i, offset int) (decimal.Decimal, error) {
	if i < 0 || i >= BatchSize {
		return decimal.Decimal{}, errors.Wrapf(ErrInvalidSwitchboardData, "asset index %d out of range", i)
	}
	if len(env.Results) <= offset {
		return decimal.Decimal{}, errors.Wrapf(ErrInvalidSwitchboardData, "payload carries %d entries, need %d", len(env.Results), offset+1)
	}
	v, err := decimal.NewFromString(env.Results[offset])
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(ErrInvalidDecimalConversion, "entry %d: %s", offset, err)
	}
	return v, nil
}

// DecodeResult extracts the primary scalar of a single-value round. The
// secondary task outputs are diagnostic only and never fail the decode.
func DecodeResult(env Envelope) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(env.Result)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(ErrInvalidDecimalConversion, "result: %s", err)
	}
	return v, nil
}

// Diagnostics parses the secondary task outputs, discarding entries that are
// not numeric (e.g. task failure messages).
func Diagnostics(env Envelope) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(env.Results))
	for _, s := range env.Results {
		v, err := decimal.NewFromString(s)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
