// internal/store/cart.go
package store

import (
	"gamershop/internal/cart"
	"gamershop/internal/catalog"
)

// CartStore owns the process cart. Every action recomputes the totals from
// the resulting item list.
type CartStore struct {
	base *Store[cart.Cart]
}

func NewCartStore() *CartStore {
	return &CartStore{base: newStore(cart.Empty(), cart.Cart.Clone)}
}

func (s *CartStore) State() cart.Cart                    { return s.base.State() }
func (s *CartStore) Subscribe(fn func(cart.Cart)) func() { return s.base.Subscribe(fn) }

// SetCart replaces the cart wholesale; totals are recomputed from c.Items.
func (s *CartStore) SetCart(c cart.Cart) {
	s.base.update(func(cart.Cart) cart.Cart {
		return cart.New(c.Items)
	})
}

// AddItem merges one unit of game into the cart.
func (s *CartStore) AddItem(game catalog.Game) {
	s.base.update(func(cur cart.Cart) cart.Cart {
		return cart.New(cart.WithAdded(cur.Items, game))
	})
}

func (s *CartStore) RemoveItem(id string) {
	s.base.update(func(cur cart.Cart) cart.Cart {
		return cart.New(cart.WithoutItem(cur.Items, id))
	})
}

// UpdateQuantity sets the quantity of id; zero or less removes it.
func (s *CartStore) UpdateQuantity(id string, quantity int) {
	s.base.update(func(cur cart.Cart) cart.Cart {
		return cart.New(cart.WithQuantity(cur.Items, id, quantity))
	})
}

func (s *CartStore) Clear() {
	s.base.update(func(cart.Cart) cart.Cart { return cart.Empty() })
}

// Reset returns the store to its initial state.
func (s *CartStore) Reset() { s.Clear() }

func (s *CartStore) Contains(id string) bool {
	var ok bool
	s.base.read(func(c cart.Cart) { ok = c.Index(id) >= 0 })
	return ok
}

// Quantity returns the quantity held for id, or 0.
func (s *CartStore) Quantity(id string) int {
	var q int
	s.base.read(func(c cart.Cart) {
		if i := c.Index(id); i >= 0 {
			q = c.Items[i].Quantity
		}
	})
	return q
}

func (s *CartStore) Total() float64 {
	var total float64
	s.base.read(func(c cart.Cart) { total = c.Total })
	return total
}

func (s *CartStore) ItemCount() int {
	var n int
	s.base.read(func(c cart.Cart) { n = c.ItemCount })
	return n
}
