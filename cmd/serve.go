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

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 30 * time.Second

func (rt *cmdEnv) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the storefront as a local JSON API",
		Action: func(c *cli.Context) error {
			loader, cf, err := loadConfig(c)
			if err != nil {
				return err
			}
			app, err := appcontext.NewApplicationContext(c.Context, cf, rt.appOpts...)
			if err != nil {
				return err
			}
			return serve(c.Context, app, loader, rt)
		},
	}
}

func newHTTPServer(app *appcontext.ApplicationContext, rt *cmdEnv) *http.Server {
	server := api.NewServer(
		handler.NewMenuHandler(app.Catalog, rt.now),
		handler.NewCartHandler(app.CartService, app.CheckoutService, rt.now),
		handler.NewOrderHandler(app.OrderHistoryService),
	)

	var limiter *middleware.TokenBucket
	if app.Cf.RateLimitCapacity > 0 {
		limiter = middleware.NewTokenBucket(app.Cf.RateLimitCapacity, app.Cf.RateLimitRPS, nil)
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           router.SetupRouter(server, app.Logger, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func serve(ctx context.Context, app *appcontext.ApplicationContext, loader *config.Loader, rt *cmdEnv) error {
	srv := newHTTPServer(app, rt)

	loader.Watch(app.ApplyConfig, func(err error) {
		app.Logger.Error().Err(err).
			Str("log_level", loader.Current().LogLevel).
			Msg("config reload rejected, keeping previous config")
	})

	// 設置訊號監聽
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutDownCompleted := make(chan error, 1)
	go func() {
		<-sigCtx.Done()
		app.Logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("application shutdown: %w", err))
		}
		shutDownCompleted <- errors.Join(errs...)
	}()

	app.Logger.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		stop()
		<-shutDownCompleted
		return err
	}
	return <-shutDownCompleted
}
