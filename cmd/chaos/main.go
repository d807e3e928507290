// cmd/chaos/main.go
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gamershop/internal/app"
	"gamershop/internal/chaos"
	"gamershop/internal/config"
	"gamershop/internal/storage"
	"gamershop/internal/telemetry"
)

// Runs the resilience suite against an in-process storefront backed by
// in-memory storage and the configured catalog.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("GAMERSHOP_CONFIG"))
	if err != nil {
		fallback := telemetry.NewLogger("info", "console")
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	log := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format).With().Str("service", "chaos").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	duration := envDuration("CHAOS_DURATION", 10*time.Second)
	interval := envDuration("CHAOS_INTERVAL", time.Second)

	catalogSvc, closeCatalog, err := app.OpenCatalog(ctx, cfg.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open catalog")
	}
	if closeCatalog != nil {
		defer closeCatalog()
	}

	faulty := storage.NewFaulty(storage.NewMemory())
	source := chaos.NewFaultySource(app.GamesSource(cfg.Catalog, catalogSvc))

	a, err := app.New(ctx, cfg, log,
		app.WithStorage(faulty),
		app.WithCatalog(catalogSvc),
		app.WithGamesSource(source),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build storefront")
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start storefront")
	}

	engine := chaos.NewEngine(log)
	target := chaos.Target{App: a, Storage: faulty, Source: source}
	results := engine.RunAll(ctx, chaos.StorefrontExperiments(target, duration, interval))

	failed := 0
	for _, r := range results {
		if !r.SteadyStateValid || !r.HypothesisHeld {
			failed++
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Error().Err(err).Msg("failed to write report")
	}

	if failed > 0 {
		log.Error().Int("failed", failed).Int("total", len(results)).Msg("chaos suite failed")
		os.Exit(1)
	}
	log.Info().Int("total", len(results)).Msg("chaos suite passed")
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
