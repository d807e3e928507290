package catalog

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, games []Game) *httptest.Server {
	t.Helper()
	h := NewHandler(NewService(games), zerolog.Nop())
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleListGames(t *testing.T) {
	srv := newTestServer(t, makeGames(15, "RPG", "Action"))

	resp, err := http.Get(srv.URL + "/?genre=rpg&page=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var page Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Games, 8)
	assert.Equal(t, []string{"RPG", "Action"}, page.AvailableFilters)
}

func TestHandleListGames_MalformedPageFallsBack(t *testing.T) {
	srv := newTestServer(t, makeGames(3, "RPG"))

	resp, err := http.Get(srv.URL + "/?page=abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	var page Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Games, 3)
}

func TestHandleListGames_HugePageIsEmpty(t *testing.T) {
	srv := newTestServer(t, makeGames(3, "RPG"))

	resp, err := http.Get(srv.URL + "/?page=" + strconv.Itoa(math.MaxInt))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, math.MaxInt, page.CurrentPage)
	assert.Empty(t, page.Games)
}

func TestHandleGetGame(t *testing.T) {
	srv := newTestServer(t, makeGames(3, "RPG"))

	resp, err := http.Get(srv.URL + "/g-3")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var game Game
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&game))
	assert.Equal(t, "Game 3", game.Name)

	missing, err := http.Get(srv.URL + "/g-99")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestLocalSourceEncodesPage(t *testing.T) {
	src := NewLocalSource(NewService(makeGames(2, "RPG")))

	body, err := src.FetchGames(context.Background(), Query{Genre: "RPG"})
	require.NoError(t, err)

	var page Page
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Games, 2)
	assert.Equal(t, 1, page.TotalPages)
}
