package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel  string
	LogFormat string // "json" or "console"
	HTTPPort  string

	// Chain
	EthRPCURL                    string
	ChainCallTimeout             time.Duration
	ExchangeContractAddress      string
	ProxyRegistryContractAddress string
	WETHContractAddress          string

	// NFT metadata API
	NFTAPIEndpoint        string
	NFTAPIKey             string
	NFTAPITimeout         time.Duration
	NFTMetadataCacheTTL   time.Duration
	NFTMetadataCacheItems int64

	// Storage
	StorageMode         string // "postgres" or "memory"
	PostgresHost        string
	PostgresPort        string
	PostgresUser        string
	PostgresPass        string
	PostgresDB          string
	PostgresSSL         string
	PostgresAutoMigrate bool
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		HTTPPort:  getEnvOrDefault("HTTP_PORT", "8080"),

		// Chain defaults
		EthRPCURL:                    getEnvOrDefault("ETH_RPC_URL", "http://localhost:8545"),
		ChainCallTimeout:             getDurationOrDefault("CHAIN_CALL_TIMEOUT", 10*time.Second),
		ExchangeContractAddress:      os.Getenv("EXCHANGE_CONTRACT_ADDRESS"),
		ProxyRegistryContractAddress: os.Getenv("PROXY_REGISTRY_CONTRACT_ADDRESS"),
		WETHContractAddress:          os.Getenv("WETH_CONTRACT_ADDRESS"),

		// NFT API defaults
		NFTAPIEndpoint:        getEnvOrDefault("NFT_API_ENDPOINT", "https://eth-mainnet.g.alchemy.com"),
		NFTAPIKey:             os.Getenv("NFT_API_KEY"),
		NFTAPITimeout:         getDurationOrDefault("NFT_API_TIMEOUT", 10*time.Second),
		NFTMetadataCacheTTL:   getDurationOrDefault("NFT_METADATA_CACHE_TTL", 24*time.Hour),
		NFTMetadataCacheItems: int64(getIntOrDefault("NFT_METADATA_CACHE_ITEMS", 10000)),

		// Storage defaults
		StorageMode:         getEnvOrDefault("STORAGE_MODE", "memory"),
		PostgresHost:        getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:        getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser:        getEnvOrDefault("POSTGRES_USER", "nftmarket"),
		PostgresPass:        getEnvOrDefault("POSTGRES_PASSWORD", "nftmarket"),
		PostgresDB:          getEnvOrDefault("POSTGRES_DB", "nft_market"),
		PostgresSSL:         getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		PostgresAutoMigrate: getBoolOrDefault("POSTGRES_AUTO_MIGRATE", true),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.LogFormat)
	}

	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.EthRPCURL == "" {
		return fmt.Errorf("ETH_RPC_URL cannot be empty")
	}

	if c.ChainCallTimeout <= 0 {
		return fmt.Errorf("CHAIN_CALL_TIMEOUT must be positive, got %v", c.ChainCallTimeout)
	}

	addresses := []struct {
		key   string
		value string
	}{
		{"EXCHANGE_CONTRACT_ADDRESS", c.ExchangeContractAddress},
		{"PROXY_REGISTRY_CONTRACT_ADDRESS", c.ProxyRegistryContractAddress},
		{"WETH_CONTRACT_ADDRESS", c.WETHContractAddress},
	}
	for _, a := range addresses {
		if !common.IsHexAddress(a.value) {
			return fmt.Errorf("%s must be a 20-byte hex address, got %q", a.key, a.value)
		}
	}

	if c.NFTMetadataCacheTTL < 0 {
		return fmt.Errorf("NFT_METADATA_CACHE_TTL must be non-negative, got %v", c.NFTMetadataCacheTTL)
	}

	if c.NFTMetadataCacheItems <= 0 {
		return fmt.Errorf("NFT_METADATA_CACHE_ITEMS must be positive, got %d", c.NFTMetadataCacheItems)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "memory" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'memory', got %q", c.StorageMode)
	}

	return nil
}

// Exchange returns the exchange contract address.
func (c *Config) Exchange() common.Address {
	return common.HexToAddress(c.ExchangeContractAddress)
}

// ProxyRegistry returns the proxy registry contract address.
func (c *Config) ProxyRegistry() common.Address {
	return common.HexToAddress(c.ProxyRegistryContractAddress)
}

// WETH returns the payment token contract address used for offers.
func (c *Config) WETH() common.Address {
	return common.HexToAddress(c.WETHContractAddress)
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
