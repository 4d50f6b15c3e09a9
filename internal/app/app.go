package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/nft"
	"github.com/mselser95/nft-market/internal/order"
	"github.com/mselser95/nft-market/internal/storage"
	"github.com/mselser95/nft-market/pkg/cache"
	"github.com/mselser95/nft-market/pkg/chain"
	"github.com/mselser95/nft-market/pkg/config"
	"github.com/mselser95/nft-market/pkg/healthprobe"
	"github.com/mselser95/nft-market/pkg/httpserver"
)

// Backend is a store that persists both orders and collection metadata.
type Backend interface {
	storage.Store
	storage.NFTContractStore
}

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	storage       Backend
	chainClient   *chain.Client
	nftCache      cache.Cache
	orders        *order.Service
	nfts          *nft.Service
	ctx           context.Context
	cancel        context.CancelFunc
}

// Orders returns the order service.
func (a *App) Orders() *order.Service {
	return a.orders
}

// NFTs returns the collection metadata service.
func (a *App) NFTs() *nft.Service {
	return a.nfts
}
