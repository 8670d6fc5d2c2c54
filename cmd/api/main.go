// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	app "betslip-wallet/internal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create and initialize the application
	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		application.Logger.Error("failed to initialize application", zap.Error(err))
		fmt.Fprintln(os.Stderr, "initialize:", err)
		os.Exit(1)
	}
	logger := application.Logger

	server := &http.Server{
		Addr:              ":" + application.Config.ServerPort,
		Handler:           application.HTTPHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No WriteTimeout: the account stream stays open. Other routes are
		// bounded by the router's request timeout.
	}
	// Shutdown waits for active handlers but never cancels their contexts.
	server.RegisterOnShutdown(application.Streams.Close)

	g, ctx := errgroup.WithContext(ctx)

	// Run reconciliation jobs
	g.Go(func() error {
		return application.Scheduler.Start(ctx)
	})

	// Run HTTP server
	g.Go(func() error {
		logger.Info("starting HTTP server", zap.String("port", application.Config.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown on signal or when another goroutine fails
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	runErr := g.Wait()
	if runErr != nil {
		logger.Error("server stopped with error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	shutdownErr := application.Shutdown(shutdownCtx)
	cancel()
	if shutdownErr != nil || runErr != nil {
		os.Exit(1)
	}
}
