// Command vermactl is the terminal storefront client. It keeps the signed-in
// session in the device-local store and talks to the configured backend
// directly.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/app"
	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/identity"
	"github.com/vermahardware/storefront/internal/infrastructure/config"
	"github.com/vermahardware/storefront/internal/infrastructure/localstore"
	"github.com/vermahardware/storefront/internal/store"
	"github.com/vermahardware/storefront/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "vermactl: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "vermactl:", err)
		return 1
	}
	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: true, Output: stderr, Service: "vermactl"})

	c, err := newClient(ctx, cfg, log, stdin, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "vermactl:", err)
		return 1
	}
	defer c.close()

	if err := cmd.run(ctx, c, args[1:]); err != nil {
		msg, unexpected := describe(err)
		if unexpected {
			log.Error().Err(err).Str("command", args[0]).Msg("command failed")
		}
		fmt.Fprintln(stderr, "vermactl:", msg)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "usage: vermactl %s %s\n", args[0], cmd.usage)
			return 2
		}
		return 1
	}
	return 0
}

// client bundles the process-wide identity provider with the cached stores.
type client struct {
	app      *app.App
	identity *identity.Provider
	catalog  *store.Catalog
	contacts *store.Contacts
	in       io.Reader
	out      io.Writer
	log      zerolog.Logger
}

func newClient(ctx context.Context, cfg *config.Config, log zerolog.Logger, in io.Reader, out io.Writer) (*client, error) {
	a, err := app.Build(ctx, cfg, app.ModeClient, log)
	if err != nil {
		return nil, err
	}

	provider := identity.NewProvider(a.Verifier, localstore.NewSessionStore(a.Local), logger.Component("identity"))
	if err := provider.Init(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	actor := func() *domain.User { return provider.Current().User }
	return &client{
		app:      a,
		identity: provider,
		catalog:  store.NewCatalog(a.Catalog, actor),
		contacts: store.NewContacts(a.Contacts, actor),
		in:       in,
		out:      out,
		log:      log,
	}, nil
}

func (c *client) close() {
	if err := c.app.Close(context.Background()); err != nil {
		c.log.Warn().Err(err).Msg("failed to release resources")
	}
}
