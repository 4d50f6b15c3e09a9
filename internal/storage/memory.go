package storage

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/nft-market/pkg/types"
)

// MemoryStorage implements Store in process memory. Orders are copied on
// every read and write so callers never share state with the store.
type MemoryStorage struct {
	mu        sync.RWMutex
	orders    map[string]types.Order
	contracts map[string]types.NFTContract
	logger    *zap.Logger
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	logger.Info("memory-storage-initialized")
	return &MemoryStorage{
		orders:    make(map[string]types.Order),
		contracts: make(map[string]types.NFTContract),
		logger:    logger,
	}
}

// FindByID returns a copy of the order, or nil.
func (m *MemoryStorage) FindByID(ctx context.Context, id string) (*types.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// FindOne returns the first order matching the filter, or nil.
func (m *MemoryStorage) FindOne(ctx context.Context, filter Filter) (*types.Order, error) {
	orders, err := m.FindMany(ctx, filter, Sort{})
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[0], nil
}

// FindMany returns copies of all matching orders in sort order.
func (m *MemoryStorage) FindMany(ctx context.Context, filter Filter, s Sort) ([]*types.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := make([]*types.Order, 0)
	for _, o := range m.orders {
		if !filter.matches(&o) {
			continue
		}
		c := o
		orders = append(orders, &c)
	}

	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if a.Price != b.Price {
			if s.Price == Descending {
				return a.Price > b.Price
			}
			return a.Price < b.Price
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return orders, nil
}

// Save stores a copy of the order.
func (m *MemoryStorage) Save(ctx context.Context, order *types.Order) error {
	if order.ID == "" {
		return ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders[order.ID] = *order

	m.logger.Debug("order-stored",
		zap.String("order-id", order.ID),
		zap.Bool("verified", order.Verified))

	return nil
}

// MarkVerified flips verified only while the order is still unverified.
func (m *MemoryStorage) MarkVerified(ctx context.Context, id string, signature string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok || o.Verified {
		return false, nil
	}

	o.Verified = true
	o.Signature = signature
	m.orders[id] = o

	return true, nil
}

// FindNFTContract returns cached contract metadata, or nil.
func (m *MemoryStorage) FindNFTContract(ctx context.Context, address string) (*types.NFTContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contracts[address]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// SaveNFTContract stores a copy of the contract metadata.
func (m *MemoryStorage) SaveNFTContract(ctx context.Context, c *types.NFTContract) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.contracts[c.ContractAddress] = *c
	return nil
}

// Ping always succeeds for memory storage.
func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for memory storage.
func (m *MemoryStorage) Close() error {
	m.logger.Info("closing-memory-storage")
	return nil
}

func (f Filter) matches(o *types.Order) bool {
	if f.ID != "" && o.ID != f.ID {
		return false
	}
	if f.ContractAddress != "" && o.ContractAddress != f.ContractAddress {
		return false
	}
	if f.TokenID != "" && o.TokenID != f.TokenID {
		return false
	}
	if f.Maker != "" && o.Maker != f.Maker {
		return false
	}
	if f.IsSell != nil && o.IsSell != *f.IsSell {
		return false
	}
	if f.Verified != nil && o.Verified != *f.Verified {
		return false
	}
	if f.NotExpiredAt > 0 && o.ExpirationTime < f.NotExpiredAt {
		return false
	}
	return true
}
