// internal/cart/domain.go
package cart

import (
	"math"

	"gamershop/internal/catalog"
)

// MaxQuantity bounds the quantity of a single item so that totals and
// item counts cannot overflow.
const MaxQuantity = math.MaxInt32

// Item is a game held in the cart together with its quantity.
type Item struct {
	catalog.Game
	Quantity int `json:"quantity"`
}

// Cart is the ordered list of items plus totals derived from it.
type Cart struct {
	Items     []Item  `json:"items"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// New builds a cart from items, recomputing Total and ItemCount. The slice is copied.
func New(items []Item) Cart {
	c := Cart{Items: append([]Item{}, items...)}
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
		c.ItemCount += it.Quantity
	}
	c.Total = Round2(total)
	return c
}

// Empty returns a cart with no items.
func Empty() Cart {
	return Cart{Items: []Item{}}
}

// Clone returns a deep copy of c.
func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]Item{}, c.Items...)
	return out
}

// Index returns the position of the item with the given id, or -1.
func (c Cart) Index(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WithAdded returns the items with game merged in: an existing id gains one
// unit, a new id is appended with quantity 1.
func WithAdded(items []Item, game catalog.Game) []Item {
	out := append([]Item{}, items...)
	for i := range out {
		if out[i].ID == game.ID {
			if out[i].Quantity < MaxQuantity {
				out[i].Quantity++
			}
			return out
		}
	}
	return append(out, Item{Game: game, Quantity: 1})
}

// WithoutItem returns the items minus the given id.
func WithoutItem(items []Item, id string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// WithQuantity returns the items with id set to quantity. A quantity of zero
// or less removes the item; larger values are capped at MaxQuantity.
func WithQuantity(items []Item, id string, quantity int) []Item {
	if quantity <= 0 {
		return WithoutItem(items, id)
	}
	quantity = min(quantity, MaxQuantity)
	out := append([]Item{}, items...)
	for i := range out {
		if out[i].ID == id {
			out[i].Quantity = quantity
		}
	}
	return out
}

// QuantityFromFloat converts a persisted quantity to a valid one: floored,
// then clamped to [1, MaxQuantity]. ok is false for NaN and values <= 0.
func QuantityFromFloat(v float64) (q int, ok bool) {
	if math.IsNaN(v) || v <= 0 {
		return 0, false
	}
	v = math.Min(math.Max(1, math.Floor(v)), MaxQuantity)
	return int(v), true
}
