package app

import (
	"context"
	"fmt"

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

// New creates a new application instance. Components are connected but
// nothing is served until Run.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup storage
	backend, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	// Setup chain client
	chainClient, err := setupChainClient(ctx, cfg, logger)
	if err != nil {
		backend.Close()
		cancel()
		return nil, fmt.Errorf("setup chain client: %w", err)
	}

	orders, err := setupOrderService(cfg, logger, backend, chainClient)
	if err != nil {
		chainClient.Close()
		backend.Close()
		cancel()
		return nil, fmt.Errorf("setup order service: %w", err)
	}

	// Setup cache
	nftCache, err := setupCache(cfg, logger)
	if err != nil {
		chainClient.Close()
		backend.Close()
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	nfts := setupNFTService(cfg, logger, backend, nftCache)

	healthChecker := setupHealthChecker(backend)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, orders, nfts)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		storage:       backend,
		chainClient:   chainClient,
		nftCache:      nftCache,
		orders:        orders,
		nfts:          nfts,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker(backend Backend) *healthprobe.HealthChecker {
	hc := healthprobe.New()
	hc.AddCheck("storage", backend.Ping)
	return hc
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	orders *order.Service,
	nfts *nft.Service,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Orders:        orders,
		NFTs:          nfts,
	})
}

func setupCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	c, err := cache.NewRistrettoCache(cache.DefaultRistrettoConfig("nft-contract", cfg.NFTMetadataCacheItems, logger))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(ctx, &storage.PostgresConfig{
			Host:        cfg.PostgresHost,
			Port:        cfg.PostgresPort,
			User:        cfg.PostgresUser,
			Password:    cfg.PostgresPass,
			Database:    cfg.PostgresDB,
			SSLMode:     cfg.PostgresSSL,
			AutoMigrate: cfg.PostgresAutoMigrate,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	logger.Warn("memory-storage-selected",
		zap.String("note", "orders are lost on restart"))
	return storage.NewMemoryStorage(logger), nil
}

func setupChainClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*chain.Client, error) {
	return chain.Dial(ctx, &chain.Config{
		RPCURL:        cfg.EthRPCURL,
		ProxyRegistry: cfg.ProxyRegistry(),
		Exchange:      cfg.Exchange(),
		CallTimeout:   cfg.ChainCallTimeout,
		Logger:        logger,
	})
}

func setupOrderService(
	cfg *config.Config,
	logger *zap.Logger,
	backend Backend,
	chainClient *chain.Client,
) (*order.Service, error) {
	return order.New(order.Config{
		Exchange:     cfg.Exchange(),
		PaymentToken: cfg.WETH(),
		Store:        backend,
		Chain:        chainClient,
		Logger:       logger,
	})
}

func setupNFTService(
	cfg *config.Config,
	logger *zap.Logger,
	backend Backend,
	nftCache cache.Cache,
) *nft.Service {
	return nft.NewService(nft.Config{
		Fetcher:  nft.NewMetadataClient(cfg.NFTAPIEndpoint, cfg.NFTAPIKey, cfg.NFTAPITimeout),
		Store:    backend,
		Cache:    nftCache,
		CacheTTL: cfg.NFTMetadataCacheTTL,
		// Room for the store round trips around one provider call.
		LoadTimeout: 2 * cfg.NFTAPITimeout,
		Logger:      logger,
	})
}
