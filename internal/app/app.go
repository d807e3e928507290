// internal/app/app.go

// Package app builds the storefront object graph once at process start.
// Every store, view and operator exists exactly once per App and is shared
// by reference with the presentation layer.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"gamershop/internal/abstractor"
	"gamershop/internal/catalog"
	"gamershop/internal/clients"
	"gamershop/internal/config"
	"gamershop/internal/featureflags"
	"gamershop/internal/operator"
	"gamershop/internal/storage"
	"gamershop/internal/store"
	"gamershop/internal/storeview"
	"gamershop/internal/telemetry"
)

type App struct {
	Config      config.Config
	Log         zerolog.Logger
	Metrics     *telemetry.Metrics
	Diagnostics *telemetry.Diagnostics

	Catalog catalog.Service

	CartStore  *store.CartStore
	GamesStore *store.GamesStore
	FlagsStore *store.FlagsStore

	CartView  storeview.CartView
	GamesView storeview.GamesView
	FlagsView storeview.FlagsView

	Cart  *operator.CartOperator
	Games *operator.GamesOperator
	Flags *operator.FlagsOperator

	closers []func() error
}

type Option func(*options)

type options struct {
	storage storage.Storage
	catalog catalog.Service
	source  abstractor.GamesSource
	metrics *telemetry.Metrics
}

// WithStorage injects the cart backend instead of opening the configured one.
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithCatalog injects the catalog service instead of building one from config.
func WithCatalog(c catalog.Service) Option {
	return func(o *options) { o.catalog = c }
}

// WithGamesSource replaces the catalog transport the games abstractor reads from.
func WithGamesSource(s abstractor.GamesSource) Option {
	return func(o *options) { o.source = s }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New wires the application. The caller must Close the returned App.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Log: log, Metrics: o.metrics}
	if a.Metrics == nil {
		a.Metrics = telemetry.NewMetrics()
	}
	a.Diagnostics = telemetry.NewDiagnostics(log, a.Metrics)

	flags, err := featureflags.Load(cfg.Flags.Path)
	if err != nil {
		return nil, err
	}

	blobs := o.storage
	if blobs == nil {
		if blobs, err = OpenStorage(ctx, cfg.Storage); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, blobs.Close)
	}

	a.Catalog = o.catalog
	if a.Catalog == nil {
		if a.Catalog, err = a.openCatalog(ctx, cfg.Catalog); err != nil {
			a.Close()
			return nil, err
		}
	}

	cartOpts := []abstractor.CartOption{
		abstractor.WithCartKey(cfg.Storage.Key),
		abstractor.WithCartReporter(a.Diagnostics),
	}
	if cfg.Storage.UserID != "" {
		id, err := uuid.Parse(cfg.Storage.UserID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		cartOpts = append(cartOpts, abstractor.WithUserID(id))
	}
	cartAbstractor := abstractor.NewCart(blobs, log, cartOpts...)
	source := o.source
	if source == nil {
		source = GamesSource(cfg.Catalog, a.Catalog)
	}
	gamesAbstractor := abstractor.NewGames(source, log, a.Diagnostics)

	a.CartStore = store.NewCartStore()
	a.GamesStore = store.NewGamesStore()
	a.FlagsStore = store.NewFlagsStore(flags)

	a.CartView = storeview.NewCartView(a.CartStore)
	a.GamesView = storeview.NewGamesView(a.GamesStore)
	a.FlagsView = storeview.NewFlagsView(a.FlagsStore)

	a.Cart = operator.NewCartOperator(cartAbstractor, a.CartStore, log)
	a.Games = operator.NewGamesOperator(gamesAbstractor, a.GamesStore, log)
	a.Flags = operator.NewFlagsOperator(a.FlagsStore, log)

	return a, nil
}

// Start loads the initial cart and the first catalog page.
func (a *App) Start(ctx context.Context) error {
	if err := a.Cart.InitializeCart(ctx); err != nil {
		return err
	}
	return a.Games.LoadGames(ctx, catalog.Query{Page: 1})
}

// Close releases the backends opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenStorage opens the configured cart backend.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendBolt:
		b, err := storage.NewBolt(cfg.Path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		pg := storage.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case config.BackendRedis:
		r := storage.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "gamershop:")
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// OpenCatalog builds the catalog service: Postgres when a DSN is set,
// otherwise the built-in game list. The returned closer may be nil.
func OpenCatalog(ctx context.Context, cfg config.CatalogConfig) (catalog.Service, func() error, error) {
	games, err := catalog.SeedGames()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DSN == "" {
		return catalog.NewService(games, catalog.WithPageSize(cfg.PageSize)), nil, nil
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog database: %w", err)
	}
	if err := catalog.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := catalog.Seed(ctx, db, games); err != nil {
		db.Close()
		return nil, nil, err
	}
	return catalog.NewPostgresService(db, cfg.PageSize), db.Close, nil
}

func (a *App) openCatalog(ctx context.Context, cfg config.CatalogConfig) (catalog.Service, error) {
	svc, closer, err := OpenCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return svc, nil
}

// GamesSource talks to a remote catalog when a URL is configured and to
// svc otherwise.
func GamesSource(cfg config.CatalogConfig, svc catalog.Service) abstractor.GamesSource {
	if cfg.URL != "" {
		return clients.NewCatalogClient(cfg.URL)
	}
	return catalog.NewLocalSource(svc)
}
