// internal/store/games.go
package store

import "gamershop/internal/catalog"

// GamesState is the catalog listing currently shown to the user.
type GamesState struct {
	Games            []catalog.Game `json:"games"`
	AvailableFilters []string       `json:"availableFilters"`
	TotalPages       int            `json:"totalPages"`
	CurrentPage      int            `json:"currentPage"`
	CurrentFilter    *string        `json:"currentFilter,omitempty"`
	IsLoading        bool           `json:"isLoading"`
}

// InitialGamesState is the empty listing on page 1.
func InitialGamesState() GamesState {
	return GamesState{
		Games:            []catalog.Game{},
		AvailableFilters: []string{},
		CurrentPage:      1,
	}
}

// Clone returns a deep copy of s.
func (s GamesState) Clone() GamesState {
	out := s
	out.Games = append([]catalog.Game{}, s.Games...)
	out.AvailableFilters = append([]string{}, s.AvailableFilters...)
	if s.CurrentFilter != nil {
		f := *s.CurrentFilter
		out.CurrentFilter = &f
	}
	return out
}

// GamesUpdate is a partial update; nil fields are left unchanged.
// ClearFilter unsets the current filter and takes precedence over CurrentFilter.
type GamesUpdate struct {
	Games            []catalog.Game
	AvailableFilters []string
	TotalPages       *int
	CurrentPage      *int
	CurrentFilter    *string
	ClearFilter      bool
	IsLoading        *bool
}

// GamesStore owns the catalog listing state.
type GamesStore struct {
	base *Store[GamesState]
}

func NewGamesStore() *GamesStore {
	return &GamesStore{base: newStore(InitialGamesState(), GamesState.Clone)}
}

func (s *GamesStore) State() GamesState                    { return s.base.State() }
func (s *GamesStore) Subscribe(fn func(GamesState)) func() { return s.base.Subscribe(fn) }

func (s *GamesStore) SetGames(games []catalog.Game) {
	s.Apply(GamesUpdate{Games: nonNilGames(games)})
}

func (s *GamesStore) SetAvailableFilters(filters []string) {
	s.Apply(GamesUpdate{AvailableFilters: nonNilStrings(filters)})
}

func (s *GamesStore) SetPagination(totalPages, currentPage int) {
	s.Apply(GamesUpdate{TotalPages: &totalPages, CurrentPage: &currentPage})
}

func (s *GamesStore) SetCurrentFilter(genre string) {
	s.Apply(GamesUpdate{CurrentFilter: &genre})
}

func (s *GamesStore) ClearCurrentFilter() {
	s.Apply(GamesUpdate{ClearFilter: true})
}

func (s *GamesStore) SetLoading(loading bool) {
	s.Apply(GamesUpdate{IsLoading: &loading})
}

// Apply merges u into the state and notifies once.
func (s *GamesStore) Apply(u GamesUpdate) {
	s.base.update(func(cur GamesState) GamesState {
		if u.Games != nil {
			cur.Games = append([]catalog.Game{}, u.Games...)
		}
		if u.AvailableFilters != nil {
			cur.AvailableFilters = append([]string{}, u.AvailableFilters...)
		}
		if u.TotalPages != nil {
			cur.TotalPages = *u.TotalPages
		}
		if u.CurrentPage != nil {
			cur.CurrentPage = *u.CurrentPage
		}
		switch {
		case u.ClearFilter:
			cur.CurrentFilter = nil
		case u.CurrentFilter != nil:
			f := *u.CurrentFilter
			cur.CurrentFilter = &f
		}
		if u.IsLoading != nil {
			cur.IsLoading = *u.IsLoading
		}
		return cur
	})
}

// Clear drops the listing back to its initial state.
func (s *GamesStore) Clear() {
	s.base.update(func(GamesState) GamesState { return InitialGamesState() })
}

// Reset returns the store to its initial state.
func (s *GamesStore) Reset() { s.Clear() }

func (s *GamesStore) Games() []catalog.Game {
	return s.State().Games
}

func (s *GamesStore) AvailableFilters() []string {
	return s.State().AvailableFilters
}

// Pagination returns (totalPages, currentPage).
func (s *GamesStore) Pagination() (int, int) {
	var total, current int
	s.base.read(func(st GamesState) { total, current = st.TotalPages, st.CurrentPage })
	return total, current
}

// CurrentFilter returns the active genre filter, if any.
func (s *GamesStore) CurrentFilter() (string, bool) {
	var (
		genre string
		ok    bool
	)
	s.base.read(func(st GamesState) {
		if st.CurrentFilter != nil {
			genre, ok = *st.CurrentFilter, true
		}
	})
	return genre, ok
}

func (s *GamesStore) IsLoading() bool {
	var loading bool
	s.base.read(func(st GamesState) { loading = st.IsLoading })
	return loading
}

// GameByID looks a game up in the current listing.
func (s *GamesStore) GameByID(id string) (catalog.Game, bool) {
	var (
		game catalog.Game
		ok   bool
	)
	s.base.read(func(st GamesState) {
		for _, g := range st.Games {
			if g.ID == id {
				game, ok = g, true
				return
			}
		}
	})
	return game, ok
}

func nonNilGames(games []catalog.Game) []catalog.Game {
	if games == nil {
		return []catalog.Game{}
	}
	return games
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
