package order

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/calldata"
	"github.com/mselser95/nft-market/internal/storage"
	"github.com/mselser95/nft-market/pkg/types"
)

func TestNew_Validation(t *testing.T) {
	store := storage.NewMemoryStorage(zap.NewNop())

	_, err := New(Config{Chain: newFakeChain(), Logger: zap.NewNop()})
	require.Error(t, err)

	_, err = New(Config{Store: store, Logger: zap.NewNop()})
	require.Error(t, err)

	_, err = New(Config{Store: store, Chain: newFakeChain()})
	require.Error(t, err)

	svc, err := New(Config{Store: store, Chain: newFakeChain(), Logger: zap.NewNop()})
	require.NoError(t, err)
	assert.NotNil(t, svc.now)
	assert.NotNil(t, svc.rand)
}

func TestGenerateSellOrder_OneUnitExample(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeChain())
	ctx := context.Background()

	order, so, err := svc.GenerateSellOrder(ctx, sellParams())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, strings.Repeat("0", 63)+"1", order.TokenID)
	assert.Equal(t, strings.Repeat("0", 48)+"0de0b6b3a7640000", order.Price)
	assert.True(t, order.IsSell)
	assert.False(t, order.Verified)
	assert.Empty(t, order.Signature)
	assert.Equal(t, strings.ToLower(makerHex), order.Maker)
	assert.Equal(t, strings.ToLower(nftHex), order.ContractAddress)
	assert.Equal(t, testNow.Unix()+3600, order.ExpirationTime)

	assert.Equal(t, exchangeAddr, so.Exchange)
	assert.Equal(t, makerAddr, so.Maker)
	assert.Equal(t, types.ZeroAddress, so.Taker)
	assert.Equal(t, types.SaleSideSell, so.SaleSide)
	assert.Equal(t, types.SaleKindFixedPrice, so.SaleKind)
	assert.Equal(t, nftAddr, so.Target)
	assert.Equal(t, types.ZeroAddress, so.PaymentToken)
	assert.Equal(t, 0, so.BasePrice.Cmp(so.EndPrice))
	assert.Equal(t, uint64(0), so.ListingTime)
	assert.NotEqual(t, [32]byte{}, so.Salt)

	assert.Len(t, so.Calldata, calldata.Len)
	assert.Equal(t, "42842e0e", common.Bytes2Hex(so.Calldata[:4]))
	assert.Equal(t, calldata.Sell(makerAddr, big.NewInt(1)), calldata.Template{
		Calldata:           so.Calldata,
		ReplacementPattern: so.ReplacementPattern,
	})

	stored, err := store.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, *order, *stored)

	decoded, err := DecodeRaw(stored.Raw)
	require.NoError(t, err)
	assert.Equal(t, so.Maker, decoded.Maker)
	assert.Equal(t, so.Calldata, decoded.Calldata)
	assert.Equal(t, so.ReplacementPattern, decoded.ReplacementPattern)
	assert.Equal(t, 0, so.BasePrice.Cmp(decoded.BasePrice))
	assert.Equal(t, so.ExpirationTime, decoded.ExpirationTime)
	assert.Equal(t, so.Salt, decoded.Salt)
}

func TestGenerateOfferOrder(t *testing.T) {
	svc, _, _ := newTestService(t, newFakeChain())

	order, so, err := svc.GenerateOfferOrder(context.Background(), sellParams())
	require.NoError(t, err)

	assert.False(t, order.IsSell)
	assert.False(t, order.Verified)
	assert.Equal(t, types.SaleSideBuy, so.SaleSide)
	assert.Equal(t, wethAddr, so.PaymentToken)

	to, err := calldata.Party(so.Calldata, calldata.SlotTo)
	require.NoError(t, err)
	assert.Equal(t, makerAddr, to)

	assert.Equal(t, strings.Repeat("ff", 32), common.Bytes2Hex(so.ReplacementPattern[4:36]))
	assert.Equal(t, strings.Repeat("00", 32), common.Bytes2Hex(so.ReplacementPattern[36:68]))
}

func TestGenerate_SaltIsFresh(t *testing.T) {
	svc, _, _ := newTestService(t, newFakeChain())

	_, a, err := svc.GenerateSellOrder(context.Background(), sellParams())
	require.NoError(t, err)
	_, b, err := svc.GenerateSellOrder(context.Background(), sellParams())
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *Params)
		wantAddr  bool
		wantCodec bool
	}{
		{name: "bad-maker", mutate: func(p *Params) { p.Maker = "0x1234" }, wantAddr: true},
		{name: "bad-contract", mutate: func(p *Params) { p.ContractAddress = "nope" }, wantAddr: true},
		{name: "negative-price", mutate: func(p *Params) { p.Price = "-1" }, wantCodec: true},
		{name: "fractional-price", mutate: func(p *Params) { p.Price = "1.5" }, wantCodec: true},
		{name: "token-too-large", mutate: func(p *Params) { p.TokenID = "0x1" + strings.Repeat("0", 64) }, wantCodec: true},
		{name: "zero-expiration", mutate: func(p *Params) { p.ExpirationTime = 0 }, wantCodec: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(t, newFakeChain())

			p := sellParams()
			tt.mutate(&p)

			_, _, err := svc.GenerateSellOrder(context.Background(), p)
			require.Error(t, err)
			assert.True(t, types.IsClientError(err))

			var addrErr *types.InvalidAddressError
			var encErr *types.EncodingError
			assert.Equal(t, tt.wantAddr, errors.As(err, &addrErr))
			assert.Equal(t, tt.wantCodec, errors.As(err, &encErr))

			all, _ := store.FindMany(context.Background(), storage.Filter{}, storage.Sort{})
			assert.Empty(t, all)
		})
	}
}

func createVerified(t *testing.T, svc *Service, store *storage.MemoryStorage, isSell bool) (*types.Order, *types.SolidityOrder) {
	t.Helper()
	ctx := context.Background()

	var (
		order *types.Order
		so    *types.SolidityOrder
		err   error
	)
	if isSell {
		order, so, err = svc.GenerateSellOrder(ctx, sellParams())
	} else {
		order, so, err = svc.GenerateOfferOrder(ctx, sellParams())
	}
	require.NoError(t, err)

	ok, err := store.MarkVerified(ctx, order.ID, "sig")
	require.NoError(t, err)
	require.True(t, ok)

	return order, so
}

func TestGenerateBuyOrderFromFixedPriceSell(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeChain())
	order, sell := createVerified(t, svc, store, true)

	buy, err := svc.GenerateBuyOrderFromFixedPriceSell(context.Background(), order.ID, takerHex)
	require.NoError(t, err)

	assert.Equal(t, types.SaleSideBuy, buy.SaleSide)
	assert.Equal(t, takerAddr, buy.Maker)
	assert.Equal(t, types.ZeroAddress, buy.Taker)
	assert.Equal(t, sell.Exchange, buy.Exchange)
	assert.Equal(t, sell.Target, buy.Target)
	assert.Equal(t, sell.PaymentToken, buy.PaymentToken)
	assert.Equal(t, 0, sell.BasePrice.Cmp(buy.BasePrice))
	assert.Equal(t, 0, sell.EndPrice.Cmp(buy.EndPrice))
	assert.Equal(t, sell.ListingTime, buy.ListingTime)
	assert.Equal(t, sell.ExpirationTime, buy.ExpirationTime)
	assert.NotEqual(t, sell.Salt, buy.Salt)

	to, err := calldata.Party(buy.Calldata, calldata.SlotTo)
	require.NoError(t, err)
	assert.Equal(t, takerAddr, to)

	matched, err := calldata.Match(
		calldata.Template{Calldata: sell.Calldata, ReplacementPattern: sell.ReplacementPattern},
		calldata.Template{Calldata: buy.Calldata, ReplacementPattern: buy.ReplacementPattern},
	)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestGenerateSellOrderFromOffer(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeChain())
	order, offer := createVerified(t, svc, store, false)

	sell, err := svc.GenerateSellOrderFromOffer(context.Background(), order.ID, takerHex)
	require.NoError(t, err)

	assert.Equal(t, types.SaleSideSell, sell.SaleSide)
	assert.Equal(t, takerAddr, sell.Maker)
	assert.Equal(t, wethAddr, sell.PaymentToken)
	assert.Equal(t, 0, offer.BasePrice.Cmp(sell.BasePrice))

	from, err := calldata.Party(sell.Calldata, calldata.SlotFrom)
	require.NoError(t, err)
	assert.Equal(t, takerAddr, from)

	matched, err := calldata.Match(
		calldata.Template{Calldata: offer.Calldata, ReplacementPattern: offer.ReplacementPattern},
		calldata.Template{Calldata: sell.Calldata, ReplacementPattern: sell.ReplacementPattern},
	)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestCounterOrder_DoesNotPersistOrMutate(t *testing.T) {
	svc, store, _ := newTestService(t, newFakeChain())
	ctx := context.Background()
	order, _ := createVerified(t, svc, store, true)

	before, err := store.FindByID(ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.GenerateBuyOrderFromFixedPriceSell(ctx, order.ID, takerHex)
	require.NoError(t, err)

	after, err := store.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)

	all, err := store.FindMany(ctx, storage.Filter{}, storage.Sort{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCounterOrder_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unverified-order", func(t *testing.T) {
		svc, _, _ := newTestService(t, newFakeChain())
		order, _, err := svc.GenerateSellOrder(ctx, sellParams())
		require.NoError(t, err)

		_, err = svc.GenerateBuyOrderFromFixedPriceSell(ctx, order.ID, takerHex)
		var notFound *types.OrderNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, order.ID, notFound.OrderID)
	})

	t.Run("wrong-side", func(t *testing.T) {
		svc, store, _ := newTestService(t, newFakeChain())
		order, _ := createVerified(t, svc, store, false)

		_, err := svc.GenerateBuyOrderFromFixedPriceSell(ctx, order.ID, takerHex)
		var notFound *types.OrderNotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("unknown-id", func(t *testing.T) {
		svc, _, _ := newTestService(t, newFakeChain())

		_, err := svc.GenerateSellOrderFromOffer(ctx, "missing", takerHex)
		var notFound *types.OrderNotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("expired", func(t *testing.T) {
		svc, store, clock := newTestService(t, newFakeChain())
		order, _ := createVerified(t, svc, store, true)

		clock.now = testNow.Add(2 * time.Hour)

		_, err := svc.GenerateBuyOrderFromFixedPriceSell(ctx, order.ID, takerHex)
		var expired *types.OrderExpiredError
		require.ErrorAs(t, err, &expired)
		assert.Equal(t, order.ExpirationTime, expired.ExpirationTime)
	})

	t.Run("expires-this-second", func(t *testing.T) {
		svc, store, clock := newTestService(t, newFakeChain())
		order, _ := createVerified(t, svc, store, true)

		clock.now = time.Unix(order.ExpirationTime, 0)

		_, err := svc.GenerateBuyOrderFromFixedPriceSell(ctx, order.ID, takerHex)
		require.NoError(t, err)
	})

	t.Run("dutch-auction", func(t *testing.T) {
		svc, store, _ := newTestService(t, newFakeChain())
		order, so := createVerified(t, svc, store, true)

		so.SaleKind = types.SaleKindDutch
		raw, err := EncodeRaw(so)
		require.NoError(t, err)

		stored, err := store.FindByID(ctx, order.ID)
		require.NoError(t, err)
		stored.Raw = raw
		require.NoError(t, store.Save(ctx, stored))

		_, err = svc.GenerateBuyOrderFromFixedPriceSell(ctx, order.ID, takerHex)
		var saleKind *types.UnsupportedSaleKindError
		require.ErrorAs(t, err, &saleKind)
		assert.Equal(t, types.SaleKindDutch, saleKind.SaleKind)
	})

	t.Run("bad-taker", func(t *testing.T) {
		svc, store, _ := newTestService(t, newFakeChain())
		order, _ := createVerified(t, svc, store, true)

		_, err := svc.GenerateBuyOrderFromFixedPriceSell(ctx, order.ID, "0xnothex")
		var addrErr *types.InvalidAddressError
		require.ErrorAs(t, err, &addrErr)
	})
}
