package order

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/nft-market/internal/calldata"
	"github.com/mselser95/nft-market/pkg/types"
)

func TestRaw_RoundTrip(t *testing.T) {
	tmpl := calldata.Sell(makerAddr, big.NewInt(42))

	original := &types.SolidityOrder{
		Exchange:           exchangeAddr,
		Maker:              makerAddr,
		SaleSide:           types.SaleSideSell,
		SaleKind:           types.SaleKindFixedPrice,
		Target:             nftAddr,
		Calldata:           tmpl.Calldata,
		ReplacementPattern: tmpl.ReplacementPattern,
		StaticExtra:        []byte{},
		BasePrice:          big.NewInt(1000),
		EndPrice:           big.NewInt(1000),
		ListingTime:        0,
		ExpirationTime:     1_700_003_600,
	}
	original.Salt[0] = 0xde
	original.Salt[31] = 0xad

	raw, err := EncodeRaw(original)
	require.NoError(t, err)
	assert.Contains(t, raw, `"version":1`)
	assert.Contains(t, raw, `"calldata_":"0x42842e0e`)

	decoded, err := DecodeRaw(raw)
	require.NoError(t, err)

	assert.Equal(t, original.Exchange, decoded.Exchange)
	assert.Equal(t, original.Maker, decoded.Maker)
	assert.Equal(t, original.Taker, decoded.Taker)
	assert.Equal(t, original.SaleSide, decoded.SaleSide)
	assert.Equal(t, original.SaleKind, decoded.SaleKind)
	assert.Equal(t, original.Target, decoded.Target)
	assert.Equal(t, original.PaymentToken, decoded.PaymentToken)
	assert.Equal(t, original.Calldata, []byte(decoded.Calldata))
	assert.Equal(t, original.ReplacementPattern, []byte(decoded.ReplacementPattern))
	assert.Equal(t, original.StaticTarget, decoded.StaticTarget)
	assert.Empty(t, decoded.StaticExtra)
	assert.Equal(t, 0, original.BasePrice.Cmp(decoded.BasePrice))
	assert.Equal(t, 0, original.EndPrice.Cmp(decoded.EndPrice))
	assert.Equal(t, original.ListingTime, decoded.ListingTime)
	assert.Equal(t, original.ExpirationTime, decoded.ExpirationTime)
	assert.Equal(t, original.Salt, decoded.Salt)
}

func TestDecodeRaw_Errors(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantVersion bool
	}{
		{name: "not-json", raw: "not json"},
		{name: "unknown-version", raw: `{"version":2,"order":{}}`, wantVersion: true},
		{name: "missing-version", raw: `{"order":{}}`, wantVersion: true},
		{name: "missing-body", raw: `{"version":1}`},
		{name: "missing-prices", raw: `{"version":1,"order":{"salt":"0x` + zeros(64) + `"}}`},
		{name: "short-salt", raw: `{"version":1,"order":{"basePrice":"0x1","endPrice":"0x1","salt":"0x01"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRaw(tt.raw)
			require.Error(t, err)
			assert.Equal(t, tt.wantVersion, errors.Is(err, types.ErrUnsupportedRawVersion))
		})
	}
}

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
