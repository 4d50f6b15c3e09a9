package order

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/calldata"
	"github.com/mselser95/nft-market/internal/storage"
	"github.com/mselser95/nft-market/pkg/hexcodec"
	"github.com/mselser95/nft-market/pkg/types"
)

// Params describes a new sell or offer order. Numeric fields accept decimal
// or 0x-prefixed hex.
type Params struct {
	Maker           string
	ContractAddress string
	TokenID         string
	Price           string
	ExpirationTime  int64
}

type parsedParams struct {
	maker    common.Address
	contract common.Address
	tokenID  *big.Int
	price    *big.Int
}

func (p Params) parse() (*parsedParams, error) {
	maker, err := hexcodec.ParseAddress(p.Maker)
	if err != nil {
		return nil, err
	}

	contract, err := hexcodec.ParseAddress(p.ContractAddress)
	if err != nil {
		return nil, err
	}

	tokenID, err := hexcodec.ParseUint256(p.TokenID)
	if err != nil {
		return nil, err
	}

	price, err := hexcodec.ParseUint256(p.Price)
	if err != nil {
		return nil, err
	}

	if p.ExpirationTime <= 0 {
		return nil, &types.EncodingError{
			Value:  strconv.FormatInt(p.ExpirationTime, 10),
			Reason: "expiration time must be a positive unix timestamp",
		}
	}

	return &parsedParams{maker: maker, contract: contract, tokenID: tokenID, price: price}, nil
}

// GenerateSellOrder builds and persists an unverified ask. The returned
// SolidityOrder is what the maker signs.
func (s *Service) GenerateSellOrder(ctx context.Context, p Params) (*types.Order, *types.SolidityOrder, error) {
	return s.generate(ctx, p, true)
}

// GenerateOfferOrder builds and persists an unverified bid paid in the
// configured payment token.
func (s *Service) GenerateOfferOrder(ctx context.Context, p Params) (*types.Order, *types.SolidityOrder, error) {
	return s.generate(ctx, p, false)
}

func (s *Service) generate(ctx context.Context, p Params, isSell bool) (*types.Order, *types.SolidityOrder, error) {
	parsed, err := p.parse()
	if err != nil {
		return nil, nil, err
	}

	salt, err := s.newSalt()
	if err != nil {
		return nil, nil, err
	}

	so := &types.SolidityOrder{
		Exchange:       s.exchange,
		Maker:          parsed.maker,
		Taker:          types.ZeroAddress,
		SaleKind:       types.SaleKindFixedPrice,
		Target:         parsed.contract,
		StaticTarget:   types.ZeroAddress,
		StaticExtra:    []byte{},
		BasePrice:      parsed.price,
		EndPrice:       new(big.Int).Set(parsed.price),
		ListingTime:    0,
		ExpirationTime: uint64(p.ExpirationTime),
		Salt:           salt,
	}

	var tmpl calldata.Template
	if isSell {
		so.SaleSide = types.SaleSideSell
		so.PaymentToken = types.ZeroAddress
		tmpl = calldata.Sell(parsed.maker, parsed.tokenID)
	} else {
		so.SaleSide = types.SaleSideBuy
		so.PaymentToken = s.paymentToken
		tmpl = calldata.Offer(parsed.maker, parsed.tokenID)
	}
	so.Calldata = tmpl.Calldata
	so.ReplacementPattern = tmpl.ReplacementPattern

	raw, err := EncodeRaw(so)
	if err != nil {
		return nil, nil, fmt.Errorf("encode raw order: %w", err)
	}

	tokenID, err := hexcodec.Uint256FromBig(parsed.tokenID)
	if err != nil {
		return nil, nil, err
	}

	price, err := hexcodec.Uint256FromBig(parsed.price)
	if err != nil {
		return nil, nil, err
	}

	order := &types.Order{
		ID:              uuid.NewString(),
		Maker:           hexcodec.FormatAddress(parsed.maker),
		ContractAddress: hexcodec.FormatAddress(parsed.contract),
		TokenID:         tokenID,
		Price:           price,
		ExpirationTime:  p.ExpirationTime,
		IsSell:          isSell,
		Verified:        false,
		Raw:             raw,
		CreatedAt:       s.now().UTC(),
	}

	err = s.store.Save(ctx, order)
	if err != nil {
		return nil, nil, fmt.Errorf("save order: %w", err)
	}

	OrdersCreatedTotal.WithLabelValues(sideLabel(isSell)).Inc()

	s.logger.Info("order-created",
		zap.String("order-id", order.ID),
		zap.String("side", sideLabel(isSell)),
		zap.String("maker", order.Maker),
		zap.String("contract", order.ContractAddress),
		zap.String("token-id", parsed.tokenID.String()),
		zap.String("price", parsed.price.String()))

	return order, so, nil
}

// GenerateBuyOrderFromFixedPriceSell derives the taker's buy side for a
// verified, unexpired sell order. The result is not persisted.
func (s *Service) GenerateBuyOrderFromFixedPriceSell(ctx context.Context, orderID, taker string) (*types.SolidityOrder, error) {
	return s.counter(ctx, orderID, taker, true)
}

// GenerateSellOrderFromOffer derives the taker's sell side for a verified,
// unexpired offer. The result is not persisted.
func (s *Service) GenerateSellOrderFromOffer(ctx context.Context, orderID, taker string) (*types.SolidityOrder, error) {
	return s.counter(ctx, orderID, taker, false)
}

func (s *Service) counter(ctx context.Context, orderID, taker string, againstSell bool) (*types.SolidityOrder, error) {
	takerAddr, err := hexcodec.ParseAddress(taker)
	if err != nil {
		return nil, err
	}

	order, err := s.store.FindOne(ctx, storage.Filter{
		ID:       orderID,
		IsSell:   storage.Bool(againstSell),
		Verified: storage.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	if order == nil {
		return nil, &types.OrderNotFoundError{OrderID: orderID}
	}

	if order.IsExpired(s.now()) {
		return nil, &types.OrderExpiredError{OrderID: orderID, ExpirationTime: order.ExpirationTime}
	}

	original, err := DecodeRaw(order.Raw)
	if err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}

	if original.SaleKind != types.SaleKindFixedPrice {
		return nil, &types.UnsupportedSaleKindError{OrderID: orderID, SaleKind: original.SaleKind}
	}

	tokenID, err := calldata.TokenID(original.Calldata)
	if err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}

	var tmpl calldata.Template
	if againstSell {
		tmpl = calldata.BuyAgainstSell(original.Maker, takerAddr, tokenID)
	} else {
		tmpl = calldata.SellAgainstOffer(original.Maker, takerAddr, tokenID)
	}

	salt, err := s.newSalt()
	if err != nil {
		return nil, err
	}

	counter := &types.SolidityOrder{
		Exchange:           original.Exchange,
		Maker:              takerAddr,
		Taker:              types.ZeroAddress,
		SaleSide:           original.SaleSide.Opposite(),
		SaleKind:           original.SaleKind,
		Target:             original.Target,
		PaymentToken:       original.PaymentToken,
		Calldata:           tmpl.Calldata,
		ReplacementPattern: tmpl.ReplacementPattern,
		StaticTarget:       types.ZeroAddress,
		StaticExtra:        []byte{},
		BasePrice:          new(big.Int).Set(original.BasePrice),
		EndPrice:           new(big.Int).Set(original.EndPrice),
		ListingTime:        original.ListingTime,
		ExpirationTime:     original.ExpirationTime,
		Salt:               salt,
	}

	CounterOrdersTotal.WithLabelValues(sideLabel(!againstSell)).Inc()

	s.logger.Debug("counter-order-generated",
		zap.String("order-id", orderID),
		zap.String("taker", hexcodec.FormatAddress(takerAddr)))

	return counter, nil
}
