package abstractor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"gamershop/internal/cart"
	"gamershop/internal/catalog"
	"gamershop/internal/storage"
)

type drop struct {
	source, reason, record string
}

type recordingReporter struct {
	drops []drop
}

func (r *recordingReporter) Dropped(_ context.Context, source, reason, record string) {
	r.drops = append(r.drops, drop{source, reason, record})
}

type failingStorage struct {
	storage.Storage
	err error
}

func (f failingStorage) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStorage) Set(context.Context, string, []byte) error   { return f.err }
func (f failingStorage) Delete(context.Context, string) error        { return f.err }

var (
	eldenRing = catalog.Game{ID: "1", Genre: "Action", Name: "Elden Ring", Price: 59.99, IsNew: true}
	witcher   = catalog.Game{ID: "12", Genre: "RPG", Name: "The Witcher 3", Price: 39.99}
)

func newTestCart(t *testing.T, opts ...CartOption) (*Cart, *storage.Memory, *recordingReporter) {
	t.Helper()
	mem := storage.NewMemory()
	rep := &recordingReporter{}
	opts = append([]CartOption{WithCartReporter(rep)}, opts...)
	return NewCart(mem, zerolog.Nop(), opts...), mem, rep
}

func TestFetchCartEmptyWhenNothingStored(t *testing.T) {
	c, _, rep := newTestCart(t)

	got, err := c.FetchCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cart.Empty(), got)
	assert.Empty(t, rep.drops)
}

func TestFetchCartDropsInvalidEntries(t *testing.T) {
	c, mem, rep := newTestCart(t)
	ctx := context.Background()

	blob := `{"items":[
		{"id":"1","genre":"Action","image":"/a.jpg","name":"A","description":"d","price":10,"isNew":false,"quantity":0},
		{"id":"2","genre":" RPG ","image":" /b.jpg","name":"  B  ","description":"d","price":5.5,"isNew":true,"quantity":3.7}
	],"total":999,"itemCount":999}`
	require.NoError(t, mem.Set(ctx, DefaultCartKey, []byte(blob)))

	got, err := c.FetchCart(ctx)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)

	item := got.Items[0]
	assert.Equal(t, "2", item.ID)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, "B", item.Name)
	assert.Equal(t, "RPG", item.Genre)
	assert.Equal(t, " /b.jpg", item.Image, "image is not trimmed")
	assert.Equal(t, 16.5, got.Total)
	assert.Equal(t, 3, got.ItemCount)

	require.Len(t, rep.drops, 1)
	assert.Equal(t, reasonInvalidQuantity, rep.drops[0].reason)
	assert.Equal(t, sourceCart, rep.drops[0].source)
}

func TestFetchCartDropsWrongTypedFields(t *testing.T) {
	c, mem, rep := newTestCart(t)
	ctx := context.Background()

	blob := `{"items":[
		{"id":1,"genre":"Action","image":"","name":"A","description":"","price":10,"isNew":false,"quantity":1},
		{"id":"2","genre":"Action","image":"","name":"B","description":"","price":"10","isNew":false,"quantity":1},
		{"id":"3","genre":"Action","image":"","name":"C","description":"","price":-4,"isNew":"yes","quantity":1},
		{"id":"4","genre":"Action","image":"","name":"D","description":"","price":-4,"isNew":false,"quantity":0.5},
		"not an object"
	]}`
	require.NoError(t, mem.Set(ctx, DefaultCartKey, []byte(blob)))

	got, err := c.FetchCart(ctx)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "4", got.Items[0].ID)
	assert.Equal(t, 1, got.Items[0].Quantity, "fractional quantity is clamped to one")
	assert.Equal(t, 0.0, got.Items[0].Price, "negative price is clamped")
	assert.Len(t, rep.drops, 4)
}

func TestFetchCartQuantityBounds(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		want     int
		dropped  bool
	}{
		{"fraction below one", "0.5", 1, false},
		{"fraction", "2.9", 2, false},
		{"max", "2147483647", cart.MaxQuantity, false},
		{"above max", "2147483648", cart.MaxQuantity, false},
		{"huge", "1e20", cart.MaxQuantity, false},
		{"max float", "1.7976931348623157e308", cart.MaxQuantity, false},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"huge negative", "-1e20", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mem, rep := newTestCart(t)
			ctx := context.Background()

			blob := `{"items":[{"id":"1","genre":"Action","image":"","name":"A","description":"","price":1.5,"isNew":false,"quantity":` + tt.quantity + `}]}`
			require.NoError(t, mem.Set(ctx, DefaultCartKey, []byte(blob)))

			got, err := c.FetchCart(ctx)
			require.NoError(t, err)
			if tt.dropped {
				assert.Empty(t, got.Items)
				require.Len(t, rep.drops, 1)
				assert.Equal(t, reasonInvalidQuantity, rep.drops[0].reason)
				return
			}
			require.Len(t, got.Items, 1)
			assert.Equal(t, tt.want, got.Items[0].Quantity)
			assert.Equal(t, tt.want, got.ItemCount)
			assert.Positive(t, got.Total)
			assert.Empty(t, rep.drops)
		})
	}
}

func TestFetchCartSurvivesHugeQuantitiesAcrossWrites(t *testing.T) {
	c, mem, _ := newTestCart(t)
	ctx := context.Background()

	blob := `{"items":[
		{"id":"1","genre":"Action","image":"","name":"A","description":"","price":1,"isNew":false,"quantity":1e20},
		{"id":"2","genre":"Action","image":"","name":"B","description":"","price":1,"isNew":false,"quantity":1e20}
	]}`
	require.NoError(t, mem.Set(ctx, DefaultCartKey, []byte(blob)))

	got, err := c.AddItem(ctx, eldenRing)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, 2*cart.MaxQuantity+1, got.ItemCount)

	got, err = c.AddItem(ctx, catalog.Game{ID: "1", Name: "A", Price: 1})
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, got.Items[0].Quantity, "adding to a full item keeps the cap")

	got, err = c.UpdateQuantity(ctx, "2", math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, got.Items[1].Quantity)

	reloaded, err := c.FetchCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)
}

func TestFetchCartMergesDuplicateIDs(t *testing.T) {
	c, mem, rep := newTestCart(t)
	ctx := context.Background()

	blob := `{"items":[
		{"id":"1","genre":"Action","image":"","name":"First","description":"","price":2,"isNew":false,"quantity":2},
		{"id":"2","genre":"RPG","image":"","name":"Other","description":"","price":1,"isNew":false,"quantity":1},
		{"id":"1","genre":"Action","image":"","name":"Second","description":"","price":9,"isNew":false,"quantity":3}
	]}`
	require.NoError(t, mem.Set(ctx, DefaultCartKey, []byte(blob)))

	got, err := c.FetchCart(ctx)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "First", got.Items[0].Name, "the first entry wins")
	assert.Equal(t, 5, got.Items[0].Quantity)
	assert.Equal(t, 6, got.ItemCount)
	assert.Equal(t, 11.0, got.Total)
	require.Len(t, rep.drops, 1)
	assert.Equal(t, reasonDuplicateItem, rep.drops[0].reason)

	got, err = c.RemoveItem(ctx, "1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "2", got.Items[0].ID)
}

func TestFetchCartFailsOpen(t *testing.T) {
	tests := []struct {
		name  string
		blob  string
		drops int
	}{
		{name: "malformed json", blob: `{"items":[`, drops: 1},
		{name: "items not an array", blob: `{"items":{"id":"1"}}`, drops: 1},
		{name: "no items", blob: `{}`, drops: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mem, rep := newTestCart(t)
			ctx := context.Background()
			require.NoError(t, mem.Set(ctx, DefaultCartKey, []byte(tt.blob)))

			got, err := c.FetchCart(ctx)
			require.NoError(t, err)
			assert.Equal(t, cart.Empty(), got)
			assert.Len(t, rep.drops, tt.drops)
		})
	}

	t.Run("storage error", func(t *testing.T) {
		c := NewCart(failingStorage{err: errors.New("disk on fire")}, zerolog.Nop())
		got, err := c.FetchCart(context.Background())
		require.NoError(t, err)
		assert.Equal(t, cart.Empty(), got)
	})
}

func TestAddItemMergesDuplicates(t *testing.T) {
	c, _, _ := newTestCart(t)
	ctx := context.Background()

	_, err := c.AddItem(ctx, eldenRing)
	require.NoError(t, err)
	got, err := c.AddItem(ctx, eldenRing)
	require.NoError(t, err)

	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 119.98, got.Total)

	fetched, err := c.FetchCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, fetched)
}

func TestAddItemRejectsEmptyID(t *testing.T) {
	c, _, _ := newTestCart(t)
	_, err := c.AddItem(context.Background(), catalog.Game{Name: "nameless"})
	assert.ErrorIs(t, err, ErrInvalidGame)
}

func TestCartRoundTrip(t *testing.T) {
	c, _, _ := newTestCart(t)
	ctx := context.Background()

	saved, err := c.SaveCart(ctx, cart.Cart{Items: []cart.Item{
		{Game: eldenRing, Quantity: 1},
		{Game: witcher, Quantity: 2},
	}})
	require.NoError(t, err)

	got, err := c.FetchCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Equal(t, 139.97, got.Total)
	assert.Equal(t, 3, got.ItemCount)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	c, _, _ := newTestCart(t)
	ctx := context.Background()

	_, err := c.AddItem(ctx, eldenRing)
	require.NoError(t, err)
	_, err = c.AddItem(ctx, witcher)
	require.NoError(t, err)

	got, err := c.UpdateQuantity(ctx, witcher.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, got.ItemCount)

	got, err = c.UpdateQuantity(ctx, witcher.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, got.Index(witcher.ID))

	got, err = c.RemoveItem(ctx, eldenRing.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestClearCartThenFetch(t *testing.T) {
	c, mem, rep := newTestCart(t)
	ctx := context.Background()

	_, err := c.AddItem(ctx, eldenRing)
	require.NoError(t, err)
	cleared, err := c.ClearCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, cart.Empty(), cleared)

	_, err = mem.Get(ctx, DefaultCartKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "clearing removes the blob")
	assert.Empty(t, rep.drops)

	got, err := c.FetchCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, 0.0, got.Total)
	assert.Equal(t, 0, got.ItemCount)
}

func TestPersistedBlobLayout(t *testing.T) {
	user := uuid.MustParse("6f1c1a52-3f43-4d2b-9b7e-8a2d0c6f9e11")
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c, mem, _ := newTestCart(t,
		WithCartKey("custom-key"),
		WithUserID(user),
		WithClock(func() time.Time { return fixed }),
	)
	ctx := context.Background()

	_, err := c.AddItem(ctx, eldenRing)
	require.NoError(t, err)

	blob, err := mem.Get(ctx, "custom-key")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:00:00Z", gjson.GetBytes(blob, "lastModified").String())
	assert.Equal(t, user.String(), gjson.GetBytes(blob, "userId").String())
	assert.Equal(t, 59.99, gjson.GetBytes(blob, "total").Float())
	assert.Equal(t, int64(1), gjson.GetBytes(blob, "itemCount").Int())
	assert.Equal(t, int64(1), gjson.GetBytes(blob, "items.0.quantity").Int())
	assert.Equal(t, "Elden Ring", gjson.GetBytes(blob, "items.0.name").String())

	_, err = mem.Get(ctx, DefaultCartKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWriteFailureIsReturned(t *testing.T) {
	boom := errors.New("read-only")
	c := NewCart(failingStorage{Storage: storage.NewMemory(), err: boom}, zerolog.Nop())

	_, err := c.AddItem(context.Background(), eldenRing)
	assert.ErrorIs(t, err, boom)

	_, err = c.ClearCart(context.Background())
	assert.ErrorIs(t, err, boom)
}
