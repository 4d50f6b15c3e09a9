package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mselser95/nft-market/internal/app"
	"github.com/mselser95/nft-market/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the order HTTP API",
	Long: `Starts the order service, which will:
1. Connect to the configured storage (postgres or memory)
2. Dial the Ethereum RPC endpoint used for order verification
3. Serve order creation, verification and order book endpoints
4. Expose /metrics, /health and /ready`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Override HTTP_PORT")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.HTTPPort = port
	}

	// Create logger
	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
