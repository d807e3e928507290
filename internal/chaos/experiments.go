// internal/chaos/experiments.go
package chaos

import (
	"context"
	"errors"
	"sync"
	"time"

	"gamershop/internal/abstractor"
	"gamershop/internal/app"
	"gamershop/internal/catalog"
	"gamershop/internal/storage"
)

// ErrInjected is the failure injected by the experiments.
var ErrInjected = errors.New("injected fault")

// FaultySource wraps a catalog source and fails it on demand.
type FaultySource struct {
	inner abstractor.GamesSource

	mu   sync.RWMutex
	err  error
	body []byte
}

func NewFaultySource(inner abstractor.GamesSource) *FaultySource {
	return &FaultySource{inner: inner}
}

func (s *FaultySource) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Corrupt makes the source answer with body instead of the real response.
func (s *FaultySource) Corrupt(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

func (s *FaultySource) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
	s.body = nil
}

func (s *FaultySource) FetchGames(ctx context.Context, q catalog.Query) ([]byte, error) {
	s.mu.RLock()
	err, body := s.err, s.body
	s.mu.RUnlock()

	if err != nil {
		return nil, err
	}
	if body != nil {
		return body, nil
	}
	return s.inner.FetchGames(ctx, q)
}

// Target is the storefront under test together with its fault injectors.
type Target struct {
	App     *app.App
	Storage *storage.Faulty
	Source  *FaultySource
}

// StorefrontExperiments returns the standard resilience suite.
func StorefrontExperiments(t Target, duration, interval time.Duration) []Experiment {
	return []Experiment{
		CartStorageOutage(t, duration, interval),
		CartStorageLatency(t, 200*time.Millisecond, duration, interval),
		CatalogOutage(t, duration, interval),
		CatalogCorruption(t, duration, interval),
	}
}

// CartStorageOutage checks that the cart keeps loading when its backend is
// down: reads fail open to an empty cart instead of erroring.
func CartStorageOutage(t Target, duration, interval time.Duration) Experiment {
	return Experiment{
		Name:        "cart-storage-outage",
		Hypothesis:  "Cart reads fail open while the storage backend is unavailable",
		SteadyState: []Probe{cartReadProbe(t)},
		Method: []Action{{
			Name:    "fail-storage",
			Target:  "cart-storage",
			Execute: func(context.Context) error { t.Storage.FailWith(ErrInjected); return nil },
		}},
		Rollback: []Action{{
			Name:    "heal-storage",
			Target:  "cart-storage",
			Execute: func(context.Context) error { t.Storage.Heal(); return nil },
		}},
		Validation: []Assertion{{
			Probe:     "cart_read_ok",
			Condition: func(v float64) bool { return v == 1 },
			Message:   "cart refresh must not surface storage errors",
		}},
		Duration: duration,
		Interval: interval,
	}
}

// CartStorageLatency checks that a slow backend only slows the cart down.
func CartStorageLatency(t Target, latency, duration, interval time.Duration) Experiment {
	return Experiment{
		Name:        "cart-storage-latency",
		Hypothesis:  "Cart reads stay available when the storage backend is slow",
		SteadyState: []Probe{cartReadProbe(t)},
		Method: []Action{{
			Name:    "slow-storage",
			Target:  "cart-storage",
			Execute: func(context.Context) error { t.Storage.SetLatency(latency); return nil },
		}},
		Rollback: []Action{{
			Name:    "heal-storage",
			Target:  "cart-storage",
			Execute: func(context.Context) error { t.Storage.Heal(); return nil },
		}},
		Validation: []Assertion{{
			Probe:     "cart_read_ok",
			Condition: func(v float64) bool { return v == 1 },
			Message:   "cart refresh must succeed under latency",
		}},
		Duration: duration,
		Interval: interval,
	}
}

// CatalogOutage checks that the listing degrades to an empty page rather
// than an error when the catalog is unreachable.
func CatalogOutage(t Target, duration, interval time.Duration) Experiment {
	return Experiment{
		Name:        "catalog-outage",
		Hypothesis:  "Game listing degrades to an empty page while the catalog is down",
		SteadyState: []Probe{gamesLoadProbe(t)},
		Method: []Action{{
			Name:    "fail-catalog",
			Target:  "catalog",
			Execute: func(context.Context) error { t.Source.FailWith(ErrInjected); return nil },
		}},
		Rollback: []Action{{
			Name:    "heal-catalog",
			Target:  "catalog",
			Execute: func(context.Context) error { t.Source.Heal(); return nil },
		}},
		Validation: []Assertion{{
			Probe:     "games_load_ok",
			Condition: func(v float64) bool { return v == 1 },
			Message:   "loading games must not surface catalog errors",
		}},
		Duration: duration,
		Interval: interval,
	}
}

// CatalogCorruption feeds the storefront a malformed catalog response.
func CatalogCorruption(t Target, duration, interval time.Duration) Experiment {
	return Experiment{
		Name:        "catalog-corruption",
		Hypothesis:  "Malformed catalog payloads are dropped, not propagated",
		SteadyState: []Probe{gamesLoadProbe(t)},
		Method: []Action{{
			Name:    "corrupt-catalog",
			Target:  "catalog",
			Execute: func(context.Context) error {
				t.Source.Corrupt([]byte(`{"games":[{"id":42,"price":"free"}],"totalPages":"x"}`))
				return nil
			},
		}},
		Rollback: []Action{{
			Name:    "heal-catalog",
			Target:  "catalog",
			Execute: func(context.Context) error { t.Source.Heal(); return nil },
		}},
		Validation: []Assertion{{
			Probe:     "games_load_ok",
			Condition: func(v float64) bool { return v == 1 },
			Message:   "loading games must tolerate malformed payloads",
		}},
		Duration: duration,
		Interval: interval,
	}
}

func cartReadProbe(t Target) Probe {
	return Probe{
		Name: "cart_read_ok",
		Query: func(ctx context.Context) (float64, error) {
			return boolValue(t.App.Cart.RefreshCart(ctx) == nil), nil
		},
		Threshold: Threshold{Operator: "==", Value: 1},
	}
}

func gamesLoadProbe(t Target) Probe {
	return Probe{
		Name: "games_load_ok",
		Query: func(ctx context.Context) (float64, error) {
			return boolValue(t.App.Games.LoadGames(ctx, catalog.Query{Page: 1}) == nil), nil
		},
		Threshold: Threshold{Operator: "==", Value: 1},
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
