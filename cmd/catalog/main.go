// cmd/catalog/main.go
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"gamershop/internal/app"
	"gamershop/internal/catalog"
	"gamershop/internal/config"
	"gamershop/internal/storefront"
	"gamershop/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("GAMERSHOP_CONFIG"))
	if err != nil {
		fallback := telemetry.NewLogger("info", "console")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	log := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format).With().Str("service", "catalog").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("catalog service stopped")
	}
}

// run serves the catalog until ctx is done, then shuts down and releases
// the catalog database.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	svc, closeDB, err := app.OpenCatalog(openCtx, cfg.Catalog)
	cancel()
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	if closeDB != nil {
		defer func() {
			if err := closeDB(); err != nil {
				log.Error().Err(err).Msg("failed to close catalog database")
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Catalog.Addr,
		Handler:           newRouter(svc, telemetry.NewMetrics(), log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", cfg.Catalog.Addr).Bool("postgres", cfg.Catalog.DSN != "").Msg("starting catalog service")
	return serve(ctx, srv, log)
}

func newRouter(svc catalog.Service, metrics *telemetry.Metrics, log zerolog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(storefront.Instrument(metrics))
	router.Mount("/api/games", catalog.NewHandler(svc, log).Routes())
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return router
}

func serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
