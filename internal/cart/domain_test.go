package cart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"gamershop/internal/catalog"
)

func TestNewRecomputesTotals(t *testing.T) {
	c := New([]Item{
		{Game: catalog.Game{ID: "a", Price: 19.99}, Quantity: 3},
		{Game: catalog.Game{ID: "b", Price: 0.1}, Quantity: 2},
	})

	assert.Equal(t, 60.17, c.Total)
	assert.Equal(t, 5, c.ItemCount)
}

func TestWithAddedMergesById(t *testing.T) {
	g := catalog.Game{ID: "a", Price: 10}
	items := WithAdded(WithAdded(nil, g), g)

	assert.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestWithQuantityNonPositiveRemoves(t *testing.T) {
	items := []Item{{Game: catalog.Game{ID: "a"}, Quantity: 1}, {Game: catalog.Game{ID: "b"}, Quantity: 4}}

	assert.Len(t, WithQuantity(items, "a", 0), 1)
	assert.Len(t, WithQuantity(items, "b", -5), 1)
	assert.Equal(t, 7, WithQuantity(items, "b", 7)[1].Quantity)
	assert.Equal(t, 4, items[1].Quantity, "input must not be mutated")
}

func TestQuantityIsCapped(t *testing.T) {
	g := catalog.Game{ID: "a", Price: 1}
	items := []Item{{Game: g, Quantity: MaxQuantity}}

	assert.Equal(t, MaxQuantity, WithAdded(items, g)[0].Quantity)
	assert.Equal(t, MaxQuantity, WithQuantity(items, "a", math.MaxInt)[0].Quantity)

	c := New(WithAdded(items, catalog.Game{ID: "b", Price: 1}))
	assert.Equal(t, MaxQuantity+1, c.ItemCount)
}

func TestQuantityFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want int
		ok   bool
	}{
		{0.5, 1, true},
		{1, 1, true},
		{3.7, 3, true},
		{MaxQuantity + 0.5, MaxQuantity, true},
		{1e20, MaxQuantity, true},
		{math.Inf(1), MaxQuantity, true},
		{0, 0, false},
		{-1, 0, false},
		{math.Inf(-1), 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		got, ok := QuantityFromFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "QuantityFromFloat(%v)", tt.in)
		assert.Equal(t, tt.want, got, "QuantityFromFloat(%v)", tt.in)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := New([]Item{{Game: catalog.Game{ID: "a", Price: 1}, Quantity: 1}})
	cp := c.Clone()
	cp.Items[0].Quantity = 9

	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestTotalsInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := []string{"a", "b", "c", "d"}
		var items []Item
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "id")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				price := float64(rapid.IntRange(0, 10000).Draw(t, "cents")) / 100
				items = WithAdded(items, catalog.Game{ID: id, Price: price})
			case 1:
				items = WithoutItem(items, id)
			case 2:
				items = WithQuantity(items, id, rapid.IntRange(-3, 9).Draw(t, "qty"))
			}
		}

		c := New(items)
		var sum float64
		count := 0
		seen := map[string]bool{}
		for _, it := range c.Items {
			if seen[it.ID] {
				t.Fatalf("duplicate id %s", it.ID)
			}
			seen[it.ID] = true
			if it.Quantity < 1 {
				t.Fatalf("quantity %d for %s", it.Quantity, it.ID)
			}
			sum += it.Price * float64(it.Quantity)
			count += it.Quantity
		}
		if c.Total != Round2(sum) {
			t.Fatalf("total %v, want %v", c.Total, Round2(sum))
		}
		if c.ItemCount != count {
			t.Fatalf("itemCount %d, want %d", c.ItemCount, count)
		}
	})
}
