package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
)

const shutdownTimeout = 10 * time.Second

// Start runs the modules, the message router and the HTTP server until ctx
// is cancelled or one of them fails.
func (app *App) Start(ctx context.Context) error {
	logger := app.Observability.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(5)
	go app.Modules.Settings.Run(ctx, &wg)
	go app.Modules.Paywall.Run(ctx, &wg)
	go app.Modules.Opponent.Run(ctx, &wg)
	go app.Modules.Game.Run(ctx, &wg)
	go app.Modules.Leaderboard.Run(ctx, &wg)

	errCh := make(chan error, 2)

	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router stopped: %w", err)
		}
	}()

	srv := &http.Server{
		Addr:              app.Config.HTTP.Address,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", attr.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server stopped: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case runErr = <-errCh:
		logger.Error("Component failed, shutting down", attr.Error(runErr))
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", attr.Error(err))
	}

	app.waitForModules(shutdownCtx, &wg)
	return runErr
}

func (app *App) waitForModules(ctx context.Context, wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		app.Observability.Logger.Warn("Timed out waiting for modules to stop")
	}
}
