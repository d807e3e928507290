package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamershop/internal/catalog"
	"gamershop/internal/config"
	"gamershop/internal/telemetry"
)

func TestRouterServesCatalog(t *testing.T) {
	games, err := catalog.SeedGames()
	require.NoError(t, err)
	srv := httptest.NewServer(newRouter(catalog.NewService(games), telemetry.NewMetrics(), zerolog.Nop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/games?genre=RPG")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page catalog.Page
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Games, 3)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRunReturnsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Addr = "127.0.0.1:0"
	cfg.Catalog.DSN = ""

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
