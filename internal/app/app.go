// Package app wires the configured backends into the services shared by the
// API server and vermactl.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vermahardware/storefront/internal/auth/localauth"
	"github.com/vermahardware/storefront/internal/auth/managed"
	"github.com/vermahardware/storefront/internal/core/ports"
	"github.com/vermahardware/storefront/internal/core/service"
	"github.com/vermahardware/storefront/internal/infrastructure/config"
	mongodb "github.com/vermahardware/storefront/internal/infrastructure/db/mongo"
	"github.com/vermahardware/storefront/internal/infrastructure/db/postgres"
	redisdb "github.com/vermahardware/storefront/internal/infrastructure/db/redis"
	"github.com/vermahardware/storefront/internal/infrastructure/http/handlers"
	"github.com/vermahardware/storefront/internal/infrastructure/localstore"
)

// Mode tells Build which binary it is wiring.
type Mode int

const (
	// ModeServer refuses the local auth backend: it issues no bearer token,
	// so nothing could authenticate requests.
	ModeServer Mode = iota
	// ModeClient always opens the local store for the device session.
	ModeClient
)

// ErrLocalAuthOnServer is returned when the server is started with AUTH_BACKEND=local.
var ErrLocalAuthOnServer = errors.New("app: the local auth backend is device-only and cannot back the API server")

// App holds the wired services and the resources that must be released.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Verifier ports.CredentialVerifier
	Catalog  *service.CatalogService
	Contacts *service.ContactService
	Users    *service.UserService
	History  *service.ViewHistoryService

	// Local is the device-local store; nil on a server without local backends.
	Local *localstore.Store
	// Checks are the readiness checks of the connected dependencies.
	Checks []handlers.Check

	closers []func(context.Context) error
}

// Build connects to every backend cfg selects and wires the services.
// On failure anything already opened is closed again.
func Build(ctx context.Context, cfg *config.Config, mode Mode, log zerolog.Logger) (_ *App, err error) {
	if mode == ModeServer && cfg.AuthBackend == config.AuthLocal {
		return nil, ErrLocalAuthOnServer
	}

	a := &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if cfg.AuthBackend == config.AuthLocal || cfg.DataBackend == config.DataLocal || mode == ModeClient {
		if a.Local, err = localstore.Open(cfg.LocalStorePath); err != nil {
			return nil, err
		}
	}

	var db *mongo.Database
	if cfg.NeedsMongo() {
		if db, err = a.connectMongo(ctx); err != nil {
			return nil, err
		}
	}

	var rdb *goredis.Client
	if cfg.NeedsMongo() {
		// Revocation list and recently viewed lists both live in Redis.
		if rdb, err = a.connectRedis(ctx); err != nil {
			return nil, err
		}
	}

	var (
		products ports.ProductRepository
		contacts ports.ContactRepository
		views    ports.ViewHistoryStore
	)
	switch cfg.DataBackend {
	case config.DataMongo:
		productRepo := mongodb.NewProductRepository(db)
		contactRepo := mongodb.NewContactRepository(db)
		if err = mongodb.EnsureIndexes(ctx, productRepo, contactRepo); err != nil {
			return nil, err
		}
		products, contacts, views = productRepo, contactRepo, redisdb.NewViewHistory(rdb)
	default:
		products = localstore.NewProductRepository(a.Local)
		contacts = localstore.NewContactRepository(a.Local)
		views = localstore.NewViewHistory(a.Local)
	}

	var directory ports.UserDirectory
	switch cfg.AuthBackend {
	case config.AuthLocal:
		users := localstore.NewUserRepository(a.Local)
		verifier := localauth.New(users, localauth.WithLogger(log.With().Str("component", "localauth").Logger()))
		if err = verifier.SeedDemoAccounts(ctx); err != nil {
			return nil, err
		}
		a.Verifier, directory = verifier, users

	case config.AuthMongo:
		users := mongodb.NewUserRepository(db)
		if err = mongodb.EnsureIndexes(ctx, users); err != nil {
			return nil, err
		}
		a.Verifier = service.NewAuthService(users, redisdb.NewRevocationList(rdb), cfg.JWTSecret, cfg.TokenTTL,
			service.WithLogger(log.With().Str("component", "auth").Logger()))
		directory = users

	case config.AuthManaged:
		profiles, perr := postgres.NewProfileStore(ctx, cfg.Postgres.URL)
		if perr != nil {
			return nil, perr
		}
		a.closers = append(a.closers, func(context.Context) error { profiles.Close(); return nil })
		a.Checks = append(a.Checks, handlers.Check{Name: "postgres", Ping: profiles.Ping})

		verifier := managed.New(managed.Config{
			URL:        cfg.Managed.URL,
			AnonKey:    cfg.Managed.AnonKey,
			ServiceKey: cfg.Managed.ServiceKey,
		}, profiles, log.With().Str("component", "managed_auth").Logger())
		a.Verifier, directory = verifier, managed.NewDirectory(profiles, verifier)
	}

	a.Catalog = service.NewCatalogService(products, log.With().Str("component", "catalog").Logger())
	a.Contacts = service.NewContactService(contacts, log.With().Str("component", "contacts").Logger())
	a.Users = service.NewUserService(directory, log.With().Str("component", "users").Logger())
	a.History = service.NewViewHistoryService(views, products, log.With().Str("component", "history").Logger())

	if cfg.SeedDemo {
		if err = SeedCatalog(ctx, products, log); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("auth_backend", cfg.AuthBackend).
		Str("data_backend", cfg.DataBackend).
		Msg("backends wired")
	return a, nil
}

func (a *App) connectMongo(ctx context.Context) (*mongo.Database, error) {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: a.Config.Mongo.URI, Database: a.Config.Mongo.Database})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Disconnect)
	a.Checks = append(a.Checks, handlers.MongoCheck(db))
	return db, nil
}

func (a *App) connectRedis(ctx context.Context) (*goredis.Client, error) {
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	a.Checks = append(a.Checks, handlers.RedisCheck(rdb))
	return rdb, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("app close: %w", errors.Join(errs...))
	}
	return nil
}
