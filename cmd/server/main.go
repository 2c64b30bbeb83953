// Command server runs the storefront HTTP API.
//
//	@title						Verma Hardware Storefront API
//	@version					1.0
//	@description				Catalog, contact inquiries, accounts and role-gated dashboards.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/vermahardware/storefront/internal/api"
	"github.com/vermahardware/storefront/internal/app"
	"github.com/vermahardware/storefront/internal/infrastructure/config"
	httpserver "github.com/vermahardware/storefront/internal/infrastructure/http"
	"github.com/vermahardware/storefront/internal/infrastructure/queue"
	"github.com/vermahardware/storefront/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront-api",
	})

	a, err := app.Build(ctx, cfg, app.ModeServer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to wire backends")
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to release resources")
		}
	}()

	dispatcher := queue.NewDispatcher(0, a.History, logger.Component("views"))

	e := api.NewRouter(api.Deps{
		Verifier: a.Verifier,
		Catalog:  a.Catalog,
		Contacts: a.Contacts,
		Users:    a.Users,
		History:  a.History,
		Views:    dispatcher,
		Checks:   a.Checks,
		Logger:   logger.Component("http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Start(gctx)
		dispatcher.Wait()
		return nil
	})
	g.Go(func() error {
		return httpserver.Serve(gctx, e, ":"+cfg.Port, log)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}
