// Package order builds signable exchange orders, verifies them against
// on-chain state and serves the order book.
package order

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/storage"
	"github.com/mselser95/nft-market/pkg/types"
)

// Store is the persistence the order service needs.
type Store interface {
	FindByID(ctx context.Context, id string) (*types.Order, error)
	FindOne(ctx context.Context, filter storage.Filter) (*types.Order, error)
	FindMany(ctx context.Context, filter storage.Filter, sort storage.Sort) ([]*types.Order, error)
	Save(ctx context.Context, order *types.Order) error
	MarkVerified(ctx context.Context, id string, signature string) (bool, error)
}

// ChainReader is the set of contract reads used for verification and the book.
type ChainReader interface {
	ProxyOf(ctx context.Context, owner common.Address) (common.Address, error)
	IsApprovedForAll(ctx context.Context, token, owner, operator common.Address) (bool, error)
	OwnerOf(ctx context.Context, token common.Address, tokenID *big.Int) (common.Address, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	ValidateOrder(ctx context.Context, order *types.SolidityOrder, sig types.OrderSig) (bool, error)
}

// Service builds, verifies and lists orders. It keeps no mutable state of
// its own; the store is the only commit point.
type Service struct {
	exchange     common.Address
	paymentToken common.Address
	store        Store
	chain        ChainReader
	logger       *zap.Logger
	now          func() time.Time
	rand         io.Reader
}

// Config holds order service configuration.
type Config struct {
	// Exchange is the exchange contract orders are signed for.
	Exchange common.Address
	// PaymentToken is the ERC-20 used to pay for offers.
	PaymentToken common.Address
	Store        Store
	Chain        ChainReader
	Logger       *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Rand is the salt source; defaults to crypto/rand.
	Rand io.Reader
}

// New creates a new order service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}

	if cfg.Chain == nil {
		return nil, errors.New("chain reader cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	source := cfg.Rand
	if source == nil {
		source = rand.Reader
	}

	return &Service{
		exchange:     cfg.Exchange,
		paymentToken: cfg.PaymentToken,
		store:        cfg.Store,
		chain:        cfg.Chain,
		logger:       cfg.Logger,
		now:          now,
		rand:         source,
	}, nil
}

func (s *Service) newSalt() ([32]byte, error) {
	var salt [32]byte

	_, err := io.ReadFull(s.rand, salt[:])
	if err != nil {
		return salt, fmt.Errorf("generate salt: %w", err)
	}

	return salt, nil
}
