// internal/abstractor/games.go
package abstractor

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gamershop/internal/catalog"
)

// GamesSource returns the raw catalog response for a query.
type GamesSource interface {
	FetchGames(ctx context.Context, q catalog.Query) ([]byte, error)
}

// Games reads catalog pages from a GamesSource and validates them.
type Games struct {
	source GamesSource
	log    zerolog.Logger
	report DropReporter
	tracer trace.Tracer
}

func NewGames(source GamesSource, log zerolog.Logger, report DropReporter) *Games {
	if report == nil {
		report = nopReporter{}
	}
	return &Games{
		source: source,
		log:    log.With().Str("component", "games_abstractor").Logger(),
		report: report,
		tracer: otel.Tracer("gamershop/abstractor"),
	}
}

// FetchGames never fails: any source error yields the empty page.
func (g *Games) FetchGames(ctx context.Context, q catalog.Query) catalog.Page {
	ctx, span := g.tracer.Start(ctx, "abstractor.FetchGames", trace.WithAttributes(
		attribute.String("catalog.genre", q.Genre),
		attribute.Int("catalog.page", q.Page),
	))
	defer span.End()

	body, err := g.source.FetchGames(ctx, q)
	if err != nil {
		g.log.Error().Err(err).Str("genre", q.Genre).Int("page", q.Page).Msg("failed to fetch games")
		span.RecordError(err)
		return catalog.EmptyPage()
	}

	page := parsePage(ctx, body, g.report)
	span.SetAttributes(attribute.Int("catalog.games", len(page.Games)))
	return page
}
