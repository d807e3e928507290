// internal/abstractor/cart.go
package abstractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gamershop/internal/cart"
	"gamershop/internal/catalog"
	"gamershop/internal/storage"
)

// DefaultCartKey is the storage key the cart blob lives under.
const DefaultCartKey = "gamer-shop-cart"

const (
	sourceCart  = "cart"
	sourceGames = "games"
)

var ErrInvalidGame = errors.New("invalid game")

// persistedCart is the blob layout written to storage.
type persistedCart struct {
	Items        []cart.Item `json:"items"`
	Total        float64     `json:"total"`
	ItemCount    int         `json:"itemCount"`
	LastModified string      `json:"lastModified"`
	UserID       string      `json:"userId,omitempty"`
}

// Cart persists the shopping cart as a single JSON blob. Every write reads
// the full cart, computes the new item list and writes the full blob back.
type Cart struct {
	storage storage.Storage
	key     string
	userID  string
	log     zerolog.Logger
	report  DropReporter
	tracer  trace.Tracer
	now     func() time.Time
}

type CartOption func(*Cart)

func WithCartKey(key string) CartOption {
	return func(c *Cart) {
		if key != "" {
			c.key = key
		}
	}
}

// WithUserID stamps the persisted blob with the owning user.
func WithUserID(id uuid.UUID) CartOption {
	return func(c *Cart) { c.userID = id.String() }
}

func WithCartReporter(r DropReporter) CartOption {
	return func(c *Cart) {
		if r != nil {
			c.report = r
		}
	}
}

func WithClock(now func() time.Time) CartOption {
	return func(c *Cart) { c.now = now }
}

func NewCart(s storage.Storage, log zerolog.Logger, opts ...CartOption) *Cart {
	c := &Cart{
		storage: s,
		key:     DefaultCartKey,
		log:     log.With().Str("component", "cart_abstractor").Logger(),
		report:  nopReporter{},
		tracer:  otel.Tracer("gamershop/abstractor"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCart loads the persisted cart. Read and parse failures fail open to
// the empty cart, so the returned error is always nil.
func (c *Cart) FetchCart(ctx context.Context) (cart.Cart, error) {
	ctx, span := c.tracer.Start(ctx, "abstractor.FetchCart",
		trace.WithAttributes(attribute.String("storage.key", c.key)))
	defer span.End()

	return c.load(ctx), nil
}

func (c *Cart) load(ctx context.Context) cart.Cart {
	blob, err := c.storage.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Error().Err(err).Msg("failed to read cart, starting empty")
			trace.SpanFromContext(ctx).RecordError(err)
		}
		return cart.Empty()
	}
	return parseCart(ctx, blob, c.report)
}

func (c *Cart) AddItem(ctx context.Context, game catalog.Game) (cart.Cart, error) {
	ctx, span := c.tracer.Start(ctx, "abstractor.AddItem",
		trace.WithAttributes(attribute.String("game.id", game.ID)))
	defer span.End()

	game, err := normalizeGame(game)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return cart.Cart{}, err
	}

	current := c.load(ctx)
	return c.save(ctx, cart.New(cart.WithAdded(current.Items, game)))
}

func (c *Cart) RemoveItem(ctx context.Context, id string) (cart.Cart, error) {
	ctx, span := c.tracer.Start(ctx, "abstractor.RemoveItem",
		trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	current := c.load(ctx)
	return c.save(ctx, cart.New(cart.WithoutItem(current.Items, id)))
}

// UpdateQuantity sets the quantity of id. A quantity of zero or less
// removes the item.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) (cart.Cart, error) {
	if quantity <= 0 {
		return c.RemoveItem(ctx, id)
	}

	ctx, span := c.tracer.Start(ctx, "abstractor.UpdateQuantity", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.Int("cart.quantity", quantity),
	))
	defer span.End()

	current := c.load(ctx)
	return c.save(ctx, cart.New(cart.WithQuantity(current.Items, id, quantity)))
}

// ClearCart removes the persisted blob. A missing blob reads back as the
// empty cart.
func (c *Cart) ClearCart(ctx context.Context) (cart.Cart, error) {
	ctx, span := c.tracer.Start(ctx, "abstractor.ClearCart")
	defer span.End()

	if err := c.storage.Delete(ctx, c.key); err != nil {
		c.log.Error().Err(err).Str("key", c.key).Msg("failed to clear cart")
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear cart")
		return cart.Cart{}, fmt.Errorf("failed to clear cart: %w", err)
	}
	return cart.Empty(), nil
}

// SaveCart persists cart as given, with its totals recomputed.
func (c *Cart) SaveCart(ctx context.Context, cc cart.Cart) (cart.Cart, error) {
	ctx, span := c.tracer.Start(ctx, "abstractor.SaveCart")
	defer span.End()

	return c.save(ctx, cart.New(cc.Items))
}

func (c *Cart) save(ctx context.Context, cc cart.Cart) (cart.Cart, error) {
	blob, err := json.Marshal(persistedCart{
		Items:        cc.Items,
		Total:        cc.Total,
		ItemCount:    cc.ItemCount,
		LastModified: c.now().UTC().Format(time.RFC3339),
		UserID:       c.userID,
	})
	if err != nil {
		return cart.Cart{}, fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := c.storage.Set(ctx, c.key, blob); err != nil {
		c.log.Error().Err(err).Str("key", c.key).Msg("failed to save cart")
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "save cart")
		return cart.Cart{}, fmt.Errorf("failed to save cart: %w", err)
	}

	c.log.Debug().Int("items", len(cc.Items)).Int("item_count", cc.ItemCount).Msg("cart saved")
	return cc, nil
}

// normalizeGame trims display strings and clamps the price at zero. The id
// is required.
func normalizeGame(g catalog.Game) (catalog.Game, error) {
	if g.ID == "" {
		return catalog.Game{}, fmt.Errorf("%w: empty id", ErrInvalidGame)
	}
	g.Name = strings.TrimSpace(g.Name)
	g.Genre = strings.TrimSpace(g.Genre)
	g.Description = strings.TrimSpace(g.Description)
	if g.Price < 0 {
		g.Price = 0
	}
	return g, nil
}
