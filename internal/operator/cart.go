// internal/operator/cart.go
package operator

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"gamershop/internal/cart"
	"gamershop/internal/catalog"
	"gamershop/internal/store"
)

// CartAbstractor is the persistence boundary the cart operator drives.
type CartAbstractor interface {
	FetchCart(ctx context.Context) (cart.Cart, error)
	AddItem(ctx context.Context, game catalog.Game) (cart.Cart, error)
	RemoveItem(ctx context.Context, id string) (cart.Cart, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (cart.Cart, error)
	ClearCart(ctx context.Context) (cart.Cart, error)
}

type CartOperator struct {
	mu         sync.Mutex
	abstractor CartAbstractor
	store      *store.CartStore
	log        zerolog.Logger
	calls      metric.Int64Counter
}

func NewCartOperator(a CartAbstractor, s *store.CartStore, log zerolog.Logger) *CartOperator {
	return &CartOperator{
		abstractor: a,
		store:      s,
		log:        log.With().Str("component", "cart_operator").Logger(),
		calls:      newCallCounter(),
	}
}

// InitializeCart loads the persisted cart into the store.
func (o *CartOperator) InitializeCart(ctx context.Context) error {
	return o.run(ctx, "initialize_cart", func() (cart.Cart, error) {
		return o.abstractor.FetchCart(ctx)
	})
}

// RefreshCart reloads the persisted cart, discarding the in-memory copy.
func (o *CartOperator) RefreshCart(ctx context.Context) error {
	return o.run(ctx, "refresh_cart", func() (cart.Cart, error) {
		return o.abstractor.FetchCart(ctx)
	})
}

func (o *CartOperator) AddItem(ctx context.Context, game catalog.Game) error {
	return o.run(ctx, "add_item", func() (cart.Cart, error) {
		return o.abstractor.AddItem(ctx, game)
	})
}

func (o *CartOperator) RemoveItem(ctx context.Context, id string) error {
	return o.run(ctx, "remove_item", func() (cart.Cart, error) {
		return o.abstractor.RemoveItem(ctx, id)
	})
}

func (o *CartOperator) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	return o.run(ctx, "update_quantity", func() (cart.Cart, error) {
		return o.abstractor.UpdateQuantity(ctx, id, quantity)
	})
}

func (o *CartOperator) ClearCart(ctx context.Context) error {
	return o.run(ctx, "clear_cart", func() (cart.Cart, error) {
		return o.abstractor.ClearCart(ctx)
	})
}

// run executes one abstractor call and stores its result. On failure the
// store is left untouched.
func (o *CartOperator) run(ctx context.Context, op string, call func() (cart.Cart, error)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, err := call()
	recordCall(ctx, o.calls, entityCart, op, err)
	if err != nil {
		o.log.Error().Err(err).Str("operation", op).Msg("cart operation failed")
		return fmt.Errorf("%s: %w", op, err)
	}

	o.store.SetCart(c)
	return nil
}
