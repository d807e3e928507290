// internal/storeview/storeview.go

// Package storeview exposes read-only façades over the stores for the
// presentation layer. Views can read and subscribe; they cannot mutate.
package storeview

import (
	"gamershop/internal/cart"
	"gamershop/internal/catalog"
	"gamershop/internal/featureflags"
	"gamershop/internal/store"
)

// CartView is the read-only surface of the cart store.
type CartView struct {
	s *store.CartStore
}

func NewCartView(s *store.CartStore) CartView {
	return CartView{s: s}
}

func (v CartView) State() cart.Cart                    { return v.s.State() }
func (v CartView) Subscribe(fn func(cart.Cart)) func() { return v.s.Subscribe(fn) }
func (v CartView) IsInCart(id string) bool             { return v.s.Contains(id) }
func (v CartView) ItemQuantity(id string) int          { return v.s.Quantity(id) }
func (v CartView) Total() float64                      { return v.s.Total() }
func (v CartView) ItemCount() int                      { return v.s.ItemCount() }

// GamesView is the read-only surface of the games store.
type GamesView struct {
	s *store.GamesStore
}

func NewGamesView(s *store.GamesStore) GamesView {
	return GamesView{s: s}
}

func (v GamesView) State() store.GamesState                    { return v.s.State() }
func (v GamesView) Subscribe(fn func(store.GamesState)) func() { return v.s.Subscribe(fn) }
func (v GamesView) Games() []catalog.Game                      { return v.s.Games() }
func (v GamesView) AvailableFilters() []string                 { return v.s.AvailableFilters() }
func (v GamesView) IsLoading() bool                            { return v.s.IsLoading() }
func (v GamesView) GameByID(id string) (catalog.Game, bool)    { return v.s.GameByID(id) }
func (v GamesView) CurrentFilter() (string, bool)              { return v.s.CurrentFilter() }

func (v GamesView) CurrentPage() int {
	_, page := v.s.Pagination()
	return page
}

func (v GamesView) TotalPages() int {
	total, _ := v.s.Pagination()
	return total
}

// FlagsView is the read-only surface of the feature flags store.
type FlagsView struct {
	s *store.FlagsStore
}

func NewFlagsView(s *store.FlagsStore) FlagsView {
	return FlagsView{s: s}
}

func (v FlagsView) State() featureflags.State                    { return v.s.State() }
func (v FlagsView) Subscribe(fn func(featureflags.State)) func() { return v.s.Subscribe(fn) }
func (v FlagsView) CartUseDrawer() bool                          { return v.s.CartUseDrawer() }
func (v FlagsView) CartConfig() featureflags.CartFlag            { return v.s.CartFlag() }
