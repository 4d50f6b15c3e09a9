package nft

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mselser95/nft-market/internal/storage"
	"github.com/mselser95/nft-market/pkg/cache"
	"github.com/mselser95/nft-market/pkg/hexcodec"
	"github.com/mselser95/nft-market/pkg/types"
)

const (
	defaultCacheTTL    = 24 * time.Hour
	defaultLoadTimeout = 30 * time.Second
)

// Fetcher loads collection metadata from the provider.
type Fetcher interface {
	FetchContractMetadata(ctx context.Context, address string) (*types.NFTContract, error)
}

// Service resolves collection metadata from the cache, then the store, then
// the provider. Fetched contracts are persisted with synced=false.
type Service struct {
	fetcher Fetcher
	store   storage.NFTContractStore
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
	group   singleflight.Group
}

// Config holds NFT service configuration.
type Config struct {
	Fetcher Fetcher
	Store   storage.NFTContractStore
	// Cache is optional.
	Cache    cache.Cache
	CacheTTL time.Duration
	// LoadTimeout bounds a shared store-then-fetch load. Defaults to 30s.
	LoadTimeout time.Duration
	Logger      *zap.Logger
}

// NewService creates a new NFT metadata service.
func NewService(cfg Config) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	timeout := cfg.LoadTimeout
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}

	return &Service{
		fetcher: cfg.Fetcher,
		store:   cfg.Store,
		cache:   cfg.Cache,
		ttl:     ttl,
		timeout: timeout,
		logger:  cfg.Logger,
		now:     time.Now,
	}
}

func cacheKey(address string) string {
	return cache.Key("nft-contract", address)
}

// GetNFTContract returns metadata for the collection at address.
func (s *Service) GetNFTContract(ctx context.Context, address string) (*types.NFTContract, error) {
	addr, err := hexcodec.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if contract, ok := cache.GetAs[*types.NFTContract](s.cache, cacheKey(addr)); ok {
			MetadataCacheHitsTotal.Inc()
			c := *contract
			return &c, nil
		}
		MetadataCacheMissesTotal.Inc()
	}

	// The load is shared by every caller for addr, so it must not inherit
	// any one caller's cancellation.
	ch := s.group.DoChan(addr, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.load(loadCtx, addr)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		contract := *res.Val.(*types.NFTContract)
		return &contract, nil
	}
}

func (s *Service) load(ctx context.Context, addr string) (*types.NFTContract, error) {
	stored, err := s.store.FindNFTContract(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("find nft contract: %w", err)
	}

	if stored != nil {
		s.remember(stored)
		return stored, nil
	}

	fetched, err := s.fetcher.FetchContractMetadata(ctx, addr)
	if err != nil {
		s.logger.Info("nft-contract-fetch-failed",
			zap.String("contract", addr),
			zap.Error(err))
		return nil, err
	}

	fetched.ContractAddress = addr
	fetched.Synced = false
	fetched.CreatedAt = s.now().UTC()

	err = s.store.SaveNFTContract(ctx, fetched)
	if err != nil {
		return nil, fmt.Errorf("save nft contract: %w", err)
	}

	s.logger.Info("nft-contract-stored",
		zap.String("contract", addr),
		zap.String("name", fetched.Name),
		zap.String("symbol", fetched.Symbol))

	s.remember(fetched)
	return fetched, nil
}

func (s *Service) remember(contract *types.NFTContract) {
	if s.cache == nil {
		return
	}

	c := *contract
	s.cache.Set(cacheKey(c.ContractAddress), &c, s.ttl)
}
