// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// service implements the Service interface over a static, in-memory game list.
type service struct {
	games    []Game
	genres   []string
	pageSize int
}

// Option configures a catalog service.
type Option func(*service)

// WithPageSize overrides DefaultPageSize. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewService creates a catalog service over the given games. The slice is copied.
func NewService(games []Game, opts ...Option) Service {
	s := &service{
		games:    append([]Game(nil), games...),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.genres = distinctGenres(s.games)
	return s
}

// ListGames filters by genre (case-insensitive exact match) and returns one page.
func (s *service) ListGames(ctx context.Context, q Query) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := s.games
	if genre := strings.TrimSpace(q.Genre); genre != "" {
		matched = make([]Game, 0, len(s.games))
		for _, g := range s.games {
			if strings.EqualFold(g.Genre, genre) {
				matched = append(matched, g)
			}
		}
	}

	page := normalizePage(q.Page)
	from, to := window(page, s.pageSize, len(matched))

	return &Page{
		Games:            append([]Game{}, matched[from:to]...),
		AvailableFilters: append([]string{}, s.genres...),
		TotalPages:       totalPages(len(matched), s.pageSize),
		CurrentPage:      page,
	}, nil
}

// GetGame retrieves a game by its id.
func (s *service) GetGame(ctx context.Context, id string) (*Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, g := range s.games {
		if g.ID == id {
			game := g
			return &game, nil
		}
	}
	return nil, fmt.Errorf("game %q: %w", id, ErrGameNotFound)
}

// Genres returns every genre in the catalog in first-seen order.
func (s *service) Genres(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string{}, s.genres...), nil
}

func distinctGenres(games []Game) []string {
	seen := make(map[string]struct{}, len(games))
	genres := make([]string, 0)
	for _, g := range games {
		key := strings.ToLower(g.Genre)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		genres = append(genres, g.Genre)
	}
	return genres
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// window returns the [from, to) slice bounds of a page, clamped to n.
// Pages past the end yield the empty window [n, n).
func window(page, size, n int) (int, int) {
	if size <= 0 || page-1 > n/size {
		return n, n
	}
	from := (page - 1) * size
	if from > n {
		from = n
	}
	to := from + size
	if to > n {
		to = n
	}
	return from, to
}

// totalPages counts pages of the filtered result set.
func totalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}
