package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Shutdown marks the app unready, drains in-flight HTTP requests and then
// releases every backing resource. It is safe to call without Run.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Requests in flight still use storage and the chain client.
	var shutdownErr error
	err := a.httpServer.Shutdown(ctx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
		shutdownErr = fmt.Errorf("shutdown http server: %w", err)
	}

	a.Close()

	a.logger.Info("application-shutdown-complete")

	return shutdownErr
}

// Close releases storage, the RPC connection and the metadata cache without
// touching the HTTP server. Commands that never call Run use it directly.
func (a *App) Close() {
	a.cancel()

	err := a.storage.Close()
	if err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	a.chainClient.Close()
	a.nftCache.Close()
}
