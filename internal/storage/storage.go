package storage

import (
	"context"
	"errors"

	"github.com/mselser95/nft-market/pkg/types"
)

// ErrMissingID is returned when saving an order without an id.
var ErrMissingID = errors.New("order id is required")

// Direction orders book results by price.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Filter selects orders. Zero-valued fields are not constrained.
type Filter struct {
	ID              string
	ContractAddress string
	TokenID         string
	Maker           string
	IsSell          *bool
	Verified        *bool
	// NotExpiredAt keeps orders whose expiration time is at or after this unix time.
	NotExpiredAt int64
}

// Sort describes result ordering. Ties are broken by creation time, then id.
type Sort struct {
	Price Direction
}

// Bool returns a pointer for use in Filter.
func Bool(b bool) *bool {
	return &b
}

// Store is the interface for persisting orders.
type Store interface {
	// FindByID returns the order or nil if it does not exist.
	FindByID(ctx context.Context, id string) (*types.Order, error)

	// FindOne returns the first order matching the filter or nil.
	FindOne(ctx context.Context, filter Filter) (*types.Order, error)

	// FindMany returns all orders matching the filter in sort order.
	FindMany(ctx context.Context, filter Filter, sort Sort) ([]*types.Order, error)

	// Save inserts or replaces the order.
	Save(ctx context.Context, order *types.Order) error

	// MarkVerified sets verified and signature only if the order is still
	// unverified. It reports whether this call performed the transition.
	MarkVerified(ctx context.Context, id string, signature string) (bool, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close closes the storage connection.
	Close() error
}

// NFTContractStore persists collection metadata.
type NFTContractStore interface {
	FindNFTContract(ctx context.Context, address string) (*types.NFTContract, error)
	SaveNFTContract(ctx context.Context, contract *types.NFTContract) error
}
