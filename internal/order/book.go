package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/storage"
	"github.com/mselser95/nft-market/pkg/hexcodec"
	"github.com/mselser95/nft-market/pkg/types"
)

// GetSellOrders lists verified, unexpired asks from the token's current
// owner, cheapest first.
func (s *Service) GetSellOrders(ctx context.Context, contract, tokenID string) ([]*types.Order, error) {
	start := time.Now()
	defer func() {
		BookQueryDurationSeconds.WithLabelValues("sell").Observe(time.Since(start).Seconds())
	}()

	contractAddr, err := hexcodec.ParseAddress(contract)
	if err != nil {
		return nil, err
	}

	id, err := hexcodec.ParseUint256(tokenID)
	if err != nil {
		return nil, err
	}

	owner, err := s.chain.OwnerOf(ctx, contractAddr, id)
	if err != nil {
		return nil, fmt.Errorf("resolve token owner: %w", err)
	}

	encodedID, err := hexcodec.Uint256FromBig(id)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.FindMany(ctx, storage.Filter{
		ContractAddress: hexcodec.FormatAddress(contractAddr),
		TokenID:         encodedID,
		Maker:           hexcodec.FormatAddress(owner),
		IsSell:          storage.Bool(true),
		Verified:        storage.Bool(true),
		NotExpiredAt:    s.now().Unix(),
	}, storage.Sort{Price: storage.Ascending})
	if err != nil {
		return nil, fmt.Errorf("find sell orders: %w", err)
	}

	s.logger.Debug("sell-orders-listed",
		zap.String("contract", hexcodec.FormatAddress(contractAddr)),
		zap.String("token-id", id.String()),
		zap.Int("count", len(orders)))

	return orders, nil
}

// GetOfferOrders lists verified, unexpired bids, highest first.
func (s *Service) GetOfferOrders(ctx context.Context, contract, tokenID string) ([]*types.Order, error) {
	start := time.Now()
	defer func() {
		BookQueryDurationSeconds.WithLabelValues("offer").Observe(time.Since(start).Seconds())
	}()

	contractAddr, err := hexcodec.ParseAddress(contract)
	if err != nil {
		return nil, err
	}

	encodedID, err := hexcodec.ToUint256(tokenID)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.FindMany(ctx, storage.Filter{
		ContractAddress: hexcodec.FormatAddress(contractAddr),
		TokenID:         encodedID,
		IsSell:          storage.Bool(false),
		Verified:        storage.Bool(true),
		NotExpiredAt:    s.now().Unix(),
	}, storage.Sort{Price: storage.Descending})
	if err != nil {
		return nil, fmt.Errorf("find offer orders: %w", err)
	}

	s.logger.Debug("offer-orders-listed",
		zap.String("contract", hexcodec.FormatAddress(contractAddr)),
		zap.Int("count", len(orders)))

	return orders, nil
}
