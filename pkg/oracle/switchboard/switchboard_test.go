package switchboard

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchPayload = []byte(`{
	"result": "163.58",
	"results": ["163.58","0.0788","162.21","0.0671","181.85","0.0666","191.79","0.0735","162.24","0.0742","179.23","0.0715"]
}`)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope(batchPayload)
	require.NoError(t, err)
	assert.Equal(t, "163.58", env.Result)
	assert.Len(t, env.Results, 2*BatchSize)

	_, err = ParseEnvelope([]byte(`not json`))
	assert.True(t, errors.Is(err, ErrInvalidSwitchboardData), "structural failure")

	_, err = ParseEnvelope([]byte(`{"results": ["1.0"]}`))
	assert.True(t, errors.Is(err, ErrInvalidSwitchboardData), "missing primary field")
}

func TestDecodeAssetPair(t *testing.T) {
	env, err := ParseEnvelope(batchPayload)
	require.NoError(t, err)

	expected := []struct {
		price string
		apy   string
	}{
		{"163.58", "0.0788"}, // JupSOL
		{"162.21", "0.0671"}, // VSOL
		{"181.85", "0.0666"}, // BSOL
		{"191.79", "0.0735"}, // MSOL
		{"162.24", "0.0742"}, // HSOL
		{"179.23", "0.0715"}, // JitoSOL
	}
	for i, exp := range expected {
		price, apy, err := DecodeAssetPair(env, i)
		require.NoError(t, err)
		assert.Equal(t, exp.price, price.String(), "price at canonical index %d", i)
		assert.Equal(t, exp.apy, apy.String(), "apy at canonical index %d", i)
	}

	_, _, err = DecodeAssetPair(env, BatchSize)
	assert.True(t, errors.Is(err, ErrInvalidSwitchboardData), "index out of range")
	_, _, err = DecodeAssetPair(env, -1)
	assert.True(t, errors.Is(err, ErrInvalidSwitchboardData), "negative index")

	short := Envelope{Result: "1", Results: []string{"1.0", "0.05"}}
	_, _, err = DecodeAssetPair(short, 1)
	assert.True(t, errors.Is(err, ErrInvalidSwitchboardData), "truncated payload")
}

func TestDecodeAssetPair_BadDecimal(t *testing.T) {
	env := Envelope{
		Result:  "1",
		Results: []string{"163.58", "0.0788", "oops", "0.0671"},
	}

	// failure at the requested offset is a hard error
	_, _, err := DecodeAssetPair(env, 1)
	assert.True(t, errors.Is(err, ErrInvalidDecimalConversion))

	// entries for other assets are not inspected
	price, apy, err := DecodeAssetPair(env, 0)
	require.NoError(t, err)
	assert.Equal(t, "163.58", price.String())
	assert.Equal(t, "0.0788", apy.String())
}

func TestDecodeResult(t *testing.T) {
	env := Envelope{
		Result:  "156.558285",
		Results: []string{"156.563280", "task 21614352 panicked", "157.19"},
	}

	v, err := DecodeResult(env)
	require.NoError(t, err)
	assert.Equal(t, "156.558285", v.String())

	_, err = DecodeResult(Envelope{Result: "panicked"})
	assert.True(t, errors.Is(err, ErrInvalidDecimalConversion))
}

func TestDiagnostics(t *testing.T) {
	env := Envelope{
		Result:  "156.558285",
		Results: []string{"156.563280", "task 21614352 panicked", "157.19"},
	}

	// non-numeric task outputs are discarded, never propagated
	diags := Diagnostics(env)
	require.Len(t, diags, 2)
	assert.Equal(t, "156.56328", diags[0].String())
	assert.Equal(t, "157.19", diags[1].String())
}

func TestDecimalConversion(t *testing.T) {
	d := Decimal{Mantissa: bin.Int128{Lo: 12340000}, Scale: 5}
	assert.Equal(t, "123.4", d.Decimal().String())

	d = Decimal{Mantissa: bin.Int128{Lo: 156558285}, Scale: 6}
	assert.Equal(t, "156.558285", d.Decimal().String())

	d = Decimal{Mantissa: bin.Int128{Lo: 42}, Scale: 0}
	assert.Equal(t, "42", d.Decimal().String())
}

func TestFeedAccountRoundTrip(t *testing.T) {
	acct := feedAccount{
		Discriminator:      feedAccountDiscriminator,
		LatestResult:       Decimal{Mantissa: bin.Int128{Lo: 16358}, Scale: 2},
		StdDeviation:       Decimal{Mantissa: bin.Int128{Lo: 12}, Scale: 2},
		RoundOpenTimestamp: 1724900000,
		NumSuccess:         3,
		Payload:            []byte(`{"result":"163.58","results":[]}`),
	}

	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(acct))

	var decoded feedAccount
	require.NoError(t, bin.NewBorshDecoder(buf.Bytes()).Decode(&decoded))
	assert.Equal(t, acct, decoded)
}
