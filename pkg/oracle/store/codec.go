package store

import (
	"bytes"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/xxusd-labs/lst-oracle/pkg/oracle"
)

// Account discriminators, first 8 bytes of the SHA256 of the account ident.
var (
	headerDiscriminator = accountDiscriminator("PriceOracleHeader")
	dataDiscriminator   = accountDiscriminator("PriceOracleData")
)

func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// headerAccount is the wire layout of the header partition.
type headerAccount struct {
	LastGlobalUpdate int64
	EmergencyStop    bool
	Authority        solana.PublicKey
	FeedProvider     solana.PublicKey
	AssetCount       uint8
}

// priceRecord is the wire layout of one store slot.
type priceRecord struct {
	Price          float64
	LastPrice      float64
	LastUpdateTime int64
	APY            float64
}

// dataAccount is the wire layout of the data partition.
type dataAccount struct {
	PriceData [oracle.AssetCount]priceRecord
}

// EncodeHeader serializes the header partition.
func EncodeHeader(h oracle.Header) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(headerDiscriminator[:])
	acct := headerAccount{
		LastGlobalUpdate: h.LastGlobalUpdate,
		EmergencyStop:    h.EmergencyStop,
		Authority:        h.Authority,
		FeedProvider:     h.FeedProvider,
		AssetCount:       h.AssetCount,
	}
	if err := bin.NewBorshEncoder(buf).Encode(acct); err != nil {
		return nil, errors.Wrap(err, "error encoding header account")
	}
	return buf.Bytes(), nil
}

// DecodeHeader deserializes the header partition.
func DecodeHeader(data []byte) (oracle.Header, error) {
	payload, err := stripDiscriminator(data, headerDiscriminator)
	if err != nil {
		return oracle.Header{}, err
	}
	var acct headerAccount
	if err := bin.NewBorshDecoder(payload).Decode(&acct); err != nil {
		return oracle.Header{}, errors.Wrap(err, "error decoding header account")
	}
	return oracle.Header{
		LastGlobalUpdate: acct.LastGlobalUpdate,
		EmergencyStop:    acct.EmergencyStop,
		Authority:        acct.Authority,
		FeedProvider:     acct.FeedProvider,
		AssetCount:       acct.AssetCount,
	}, nil
}

// EncodeData serializes the data partition.
func EncodeData(d oracle.Data) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(dataDiscriminator[:])
	var acct dataAccount
	for i, pd := range d.PriceData {
		acct.PriceData[i] = priceRecord{
			Price:          pd.Price.InexactFloat64(),
			LastPrice:      pd.LastPrice.InexactFloat64(),
			LastUpdateTime: pd.LastUpdateTime,
			APY:            pd.APY.InexactFloat64(),
		}
	}
	if err := bin.NewBorshEncoder(buf).Encode(acct); err != nil {
		return nil, errors.Wrap(err, "error encoding data account")
	}
	return buf.Bytes(), nil
}

// DecodeData deserializes the data partition.
func DecodeData(data []byte) (oracle.Data, error) {
	payload, err := stripDiscriminator(data, dataDiscriminator)
	if err != nil {
		return oracle.Data{}, err
	}
	var acct dataAccount
	if err := bin.NewBorshDecoder(payload).Decode(&acct); err != nil {
		return oracle.Data{}, errors.Wrap(err, "error decoding data account")
	}
	var out oracle.Data
	for i, rec := range acct.PriceData {
		out.PriceData[i] = oracle.PriceData{
			Price:          decimal.NewFromFloat(rec.Price),
			LastPrice:      decimal.NewFromFloat(rec.LastPrice),
			LastUpdateTime: rec.LastUpdateTime,
			APY:            decimal.NewFromFloat(rec.APY),
		}
	}
	return out, nil
}

func stripDiscriminator(data []byte, want [8]byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, errors.New("account data too short")
	}
	if !bytes.Equal(data[:8], want[:]) {
		return nil, errors.New("account discriminator mismatch")
	}
	return data[8:], nil
}
