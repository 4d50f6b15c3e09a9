package types

import (
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleSide_Opposite(t *testing.T) {
	assert.Equal(t, SaleSideBuy, SaleSideSell.Opposite())
	assert.Equal(t, SaleSideSell, SaleSideBuy.Opposite())
}

func TestOrder_IsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name       string
		expiration int64
		want       bool
	}{
		{name: "future", expiration: now.Unix() + 1, want: false},
		{name: "boundary-second-is-live", expiration: now.Unix(), want: false},
		{name: "past", expiration: now.Unix() - 1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{ExpirationTime: tt.expiration}
			assert.Equal(t, tt.want, o.IsExpired(now))
		})
	}
}

func TestOrderSig_Concat(t *testing.T) {
	r := "0x" + strings.Repeat("ab", 32)
	s := strings.Repeat("cd", 32)

	got := OrderSig{R: r, S: s, V: 27}.Concat()

	assert.Equal(t, strings.Repeat("ab", 32)+strings.Repeat("cd", 32)+"1b", got)
	assert.Len(t, got, 130)

	// v is hex, not decimal.
	assert.True(t, strings.HasSuffix(OrderSig{R: r, S: s, V: 28}.Concat(), "1c"))
}

func TestSolidityOrder_JSON(t *testing.T) {
	o := SolidityOrder{
		Exchange:           common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Maker:              common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		SaleSide:           SaleSideSell,
		SaleKind:           SaleKindFixedPrice,
		Target:             common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Calldata:           []byte{0x42, 0x84, 0x2e, 0x0e},
		ReplacementPattern: []byte{0x00, 0x00, 0x00, 0x00},
		BasePrice:          big.NewInt(1000),
		EndPrice:           big.NewInt(1000),
		ListingTime:        1_700_000_000,
		ExpirationTime:     1_700_003_600,
	}
	o.Salt[31] = 0x07

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "0x42842e0e", fields["calldata_"])
	assert.Equal(t, "0x3e8", fields["basePrice"])
	assert.Equal(t, "0x", fields["staticExtra"])

	var decoded SolidityOrder
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, o.Maker, decoded.Maker)
	assert.Equal(t, o.Salt, decoded.Salt)
	assert.Equal(t, 0, o.BasePrice.Cmp(decoded.BasePrice))
	assert.Equal(t, o.ExpirationTime, decoded.ExpirationTime)
}

func TestSolidityOrder_UnmarshalErrors(t *testing.T) {
	var o SolidityOrder

	err := json.Unmarshal([]byte(`{"salt":"0x00"}`), &o)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"basePrice":"0x1","endPrice":"0x1","salt":"0x00"}`), &o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salt must be 32 bytes")
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "encoding", err: &EncodingError{Value: "x", Reason: "not an integer"}, want: true},
		{name: "address", err: &InvalidAddressError{Address: "0x1"}, want: true},
		{name: "not-found-wrapped", err: fmt.Errorf("find order: %w", &OrderNotFoundError{OrderID: "a"}), want: true},
		{name: "expired", err: &OrderExpiredError{OrderID: "a"}, want: true},
		{name: "sale-kind", err: &UnsupportedSaleKindError{OrderID: "a", SaleKind: SaleKindDutch}, want: true},
		{name: "not-erc721", err: ErrNotERC721, want: false},
		{name: "infrastructure", err: fmt.Errorf("query orders: connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClientError(tt.err))
		})
	}
}
