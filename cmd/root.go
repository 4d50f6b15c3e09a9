package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/internal/app"
	"github.com/mselser95/nft-market/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "nft-market",
	Short: "NFT marketplace order service",
	Long: `NFT marketplace order service for a Wyvern-style exchange.

Builds fixed-price sell listings and offers as exchange orders, produces the
counter-orders takers sign, verifies signed orders against on-chain state
and serves the resulting order books over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real environment variables take precedence.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadApp loads configuration, builds the logger and wires the application.
// The returned cleanup closes the app and flushes the logger.
func loadApp() (*app.App, *zap.Logger, func(), error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, fmt.Errorf("create app: %w", err)
	}

	cleanup := func() {
		application.Close()
		_ = logger.Sync()
	}

	return application, logger, cleanup, nil
}
