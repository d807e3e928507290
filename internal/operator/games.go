// internal/operator/games.go
package operator

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"gamershop/internal/catalog"
	"gamershop/internal/store"
)

// GamesAbstractor fetches validated catalog pages. It never fails.
type GamesAbstractor interface {
	FetchGames(ctx context.Context, q catalog.Query) catalog.Page
}

type GamesOperator struct {
	mu         sync.Mutex
	abstractor GamesAbstractor
	store      *store.GamesStore
	log        zerolog.Logger
	calls      metric.Int64Counter
}

func NewGamesOperator(a GamesAbstractor, s *store.GamesStore, log zerolog.Logger) *GamesOperator {
	return &GamesOperator{
		abstractor: a,
		store:      s,
		log:        log.With().Str("component", "games_operator").Logger(),
		calls:      newCallCounter(),
	}
}

// LoadGames fetches one catalog page and publishes it in a single store
// update. The loading flag is raised for the duration of the fetch and is
// lowered on every exit path. If ctx is cancelled during the fetch the
// result is discarded.
func (o *GamesOperator) LoadGames(ctx context.Context, q catalog.Query) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.store.SetLoading(true)
	applied := false
	defer func() {
		if !applied {
			o.store.SetLoading(false)
		}
	}()

	page := o.abstractor.FetchGames(ctx, q)

	if err := ctx.Err(); err != nil {
		recordCall(ctx, o.calls, entityGames, "load_games", err)
		o.log.Error().Err(err).Str("genre", q.Genre).Int("page", q.Page).Msg("load games aborted")
		return fmt.Errorf("load_games: %w", err)
	}

	loading := false
	update := store.GamesUpdate{
		Games:            page.Games,
		AvailableFilters: page.AvailableFilters,
		TotalPages:       &page.TotalPages,
		CurrentPage:      &page.CurrentPage,
		IsLoading:        &loading,
	}
	if q.Genre != "" {
		genre := q.Genre
		update.CurrentFilter = &genre
	} else {
		update.ClearFilter = true
	}
	o.store.Apply(update)
	applied = true

	recordCall(ctx, o.calls, entityGames, "load_games", nil)
	o.log.Debug().
		Str("genre", q.Genre).
		Int("page", page.CurrentPage).
		Int("games", len(page.Games)).
		Msg("games loaded")
	return nil
}

// LoadAvailableGenres refreshes only the genre filter list.
func (o *GamesOperator) LoadAvailableGenres(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	page := o.abstractor.FetchGames(ctx, catalog.Query{})
	if err := ctx.Err(); err != nil {
		recordCall(ctx, o.calls, entityGames, "load_available_genres", err)
		return fmt.Errorf("load_available_genres: %w", err)
	}

	o.store.SetAvailableFilters(page.AvailableFilters)
	recordCall(ctx, o.calls, entityGames, "load_available_genres", nil)
	return nil
}
