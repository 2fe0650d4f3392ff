package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/pixgateway/internal/bootstrap"
	"github.com/cassiomorais/pixgateway/internal/controller"
	"github.com/cassiomorais/pixgateway/internal/infrastructure/observability"
	"github.com/cassiomorais/pixgateway/internal/service"
	"golang.org/x/sync/errgroup"
)

const serviceName = "pixgateway-api"

func main() {
	app, err := bootstrap.New(serviceName, "pixgateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}

	// --- Services ---
	pixService := service.NewPixService(
		app.AssetGateway(),
		app.Config.Gateway,
		service.WithPixMetrics(app.Metrics),
		service.WithPixLogger(observability.Component(app.Logger, "pix")),
	)
	identityService := service.NewIdentityService(
		app.CPFLookup(),
		app.Metrics,
		observability.Component(app.Logger, "identity"),
	)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		PixService:         pixService,
		IdentityService:    identityService,
		Logger:             app.Logger,
		ServiceName:        serviceName,
		Metrics:            app.Metrics,
		Breakers:           app.Breakers,
		RateLimitPerMinute: app.Config.Server.RateLimitPerMinute,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// 1. HTTP server.
	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// 2. Graceful shutdown on signal or server failure.
	g.Go(func() error {
		<-gCtx.Done()
		app.Logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		app.Close(shutdownCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
	app.Logger.Info().Msg("Server exited")
}
