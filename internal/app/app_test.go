package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"gamershop/internal/catalog"
	"gamershop/internal/config"
	"gamershop/internal/storage"
)

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendMemory
	return cfg
}

func TestNewWiresOneGraph(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Start(ctx))
	assert.Len(t, a.GamesView.Games(), catalog.DefaultPageSize)
	assert.Equal(t, 2, a.GamesView.TotalPages())
	assert.NotEmpty(t, a.GamesView.AvailableFilters())
	assert.True(t, a.FlagsView.CartUseDrawer())

	game := a.GamesView.Games()[0]
	require.NoError(t, a.Cart.AddItem(ctx, game))
	assert.True(t, a.CartView.IsInCart(game.ID))
	assert.Equal(t, game.Price, a.CartView.Total())
}

func TestCartSurvivesRestartOnBolt(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "cart.db")
	cfg.Storage.UserID = "6f1c1a52-3f43-4d2b-9b7e-8a2d0c6f9e11"

	first, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Start(ctx))
	game := first.GamesView.Games()[1]
	require.NoError(t, first.Cart.AddItem(ctx, game))
	require.NoError(t, first.Cart.AddItem(ctx, game))
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Start(ctx))

	assert.Equal(t, 2, second.CartView.ItemQuantity(game.ID))
}

func TestCorruptCartIsReportedAndDropped(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, "gamer-shop-cart", []byte(`{"items":[{"id":"1","quantity":2}]}`)))

	a, err := New(ctx, memoryConfig(), zerolog.Nop(), WithStorage(mem))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Cart.InitializeCart(ctx))
	assert.Empty(t, a.CartView.State().Items)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.DroppedCounter("cart", "malformed_record")))
}

func TestUserIDIsStampedOnBlob(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	cfg := memoryConfig()
	cfg.Storage.Key = "cart-under-test"
	cfg.Storage.UserID = "6f1c1a52-3f43-4d2b-9b7e-8a2d0c6f9e11"

	a, err := New(ctx, cfg, zerolog.Nop(), WithStorage(mem))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Cart.AddItem(ctx, catalog.Game{ID: "3", Name: "Portal 2", Price: 9.99}))

	blob, err := mem.Get(ctx, "cart-under-test")
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.UserID, gjson.GetBytes(blob, "userId").String())
}

func TestOpenStorageRejectsUnknownBackend(t *testing.T) {
	_, err := OpenStorage(context.Background(), config.StorageConfig{Backend: "s3"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
