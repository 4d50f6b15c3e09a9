package app

import (
	"errors"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Run serves the HTTP API until SIGINT, SIGTERM or a server failure, then
// shuts the application down. A failed listener is returned alongside any
// shutdown error.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("storage-mode", a.cfg.StorageMode),
		zap.String("exchange", a.cfg.ExchangeContractAddress),
		zap.String("log-level", a.cfg.LogLevel),
		zap.String("log-format", a.cfg.LogFormat))

	sigCtx, stop := signal.NotifyContext(a.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(a.httpServer.Start)

	a.healthChecker.SetReady(true)
	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("rpc-url", a.cfg.EthRPCURL))

	<-gctx.Done()

	switch {
	case a.ctx.Err() != nil:
		a.logger.Info("context-cancelled")
	case sigCtx.Err() != nil:
		a.logger.Info("shutdown-signal-received")
	default:
		a.logger.Error("http-server-stopped")
	}

	shutdownErr := a.Shutdown()
	serveErr := g.Wait()
	if serveErr != nil {
		a.logger.Error("http-server-error", zap.Error(serveErr))
	}

	return errors.Join(serveErr, shutdownErr)
}
