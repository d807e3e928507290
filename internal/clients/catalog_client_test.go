package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"gamershop/internal/catalog"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	games, err := catalog.SeedGames()
	require.NoError(t, err)
	h := catalog.NewHandler(catalog.NewService(games), zerolog.Nop())
	r := chi.NewRouter()
	r.Mount("/api/games", h.Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestCatalogClientFetchGames(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewCatalogClient(srv.URL)

	body, err := c.FetchGames(context.Background(), catalog.Query{Genre: "Racing", Page: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(2), gjson.GetBytes(body, "games.#").Int())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "currentPage").Int())
	assert.Equal(t, "Racing", gjson.GetBytes(body, "games.0.genre").String())
}

func TestCatalogClientGetGame(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewCatalogClient(srv.URL)

	game, err := c.GetGame(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", game.ID)

	_, err = c.GetGame(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, catalog.ErrGameNotFound)
}

func TestCatalogClientNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/games", r.URL.Path)
		assert.Equal(t, "RPG", r.URL.Query().Get("genre"))
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewCatalogClient(srv.URL).FetchGames(context.Background(), catalog.Query{Genre: "RPG"})
	assert.EqualError(t, err, "unexpected status code: 503")
}
