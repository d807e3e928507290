// internal/storefront/handler.go

// Package storefront is the HTTP surface of the storefront. Reads are served
// from the store views; writes go through the operators.
package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"gamershop/internal/abstractor"
	"gamershop/internal/app"
	"gamershop/internal/cart"
	"gamershop/internal/catalog"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

type Handler struct {
	app     *app.App
	limiter *RateLimiter
	log     zerolog.Logger
}

func NewHandler(a *app.App) *Handler {
	log := a.Log.With().Str("component", "storefront").Logger()
	return &Handler{
		app:     a,
		limiter: NewRateLimiter(a.Config.RateLimit.RPS, a.Config.RateLimit.Burst, log),
		log:     log,
	}
}

// Routes returns the storefront router. When catalogAPI is true the catalog
// query interface is mounted under /api/games as well.
func (h *Handler) Routes(catalogAPI bool) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.log))
	r.Use(Instrument(h.app.Metrics))

	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", h.app.Metrics.Handler())

	r.Get("/cart", h.HandleGetCart)
	r.Get("/games", h.HandleListGames)
	r.Get("/games/filters", h.HandleFilters)
	r.Get("/games/{id}", h.HandleGetGame)
	r.Get("/flags", h.HandleGetFlags)

	r.Group(func(r chi.Router) {
		r.Use(h.limiter.Handler)
		r.Post("/cart/items", h.HandleAddItem)
		r.Put("/cart/items/{id}", h.HandleUpdateQuantity)
		r.Delete("/cart/items/{id}", h.HandleRemoveItem)
		r.Delete("/cart", h.HandleClearCart)
		r.Post("/cart/refresh", h.HandleRefreshCart)
		r.Put("/flags/cart", h.HandleSetCartFlag)
		r.Post("/flags/reset", h.HandleResetFlags)
	})

	if catalogAPI {
		r.Mount("/api/games", catalog.NewHandler(h.app.Catalog, h.app.Log).Routes())
	}
	return r
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, h.app.CartView.State())
}

// HandleAddItem accepts a full game, or just {"id": ...} which is resolved
// against the catalog.
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var game catalog.Game
	if err := decodeBody(w, r, &game); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if game.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if game.Name == "" {
		found, err := h.app.Catalog.GetGame(r.Context(), game.ID)
		if err != nil {
			if errors.Is(err, catalog.ErrGameNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		game = *found
	}

	if err := h.app.Cart.AddItem(r.Context(), game); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.CartView.State())
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity == nil {
		http.Error(w, "quantity is required", http.StatusBadRequest)
		return
	}
	if *req.Quantity > cart.MaxQuantity {
		http.Error(w, fmt.Sprintf("quantity must not exceed %d", cart.MaxQuantity), http.StatusBadRequest)
		return
	}

	if err := h.app.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.CartView.State())
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Cart.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.CartView.State())
}

func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Cart.ClearCart(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.CartView.State())
}

func (h *Handler) HandleRefreshCart(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Cart.RefreshCart(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.CartView.State())
}

// HandleListGames loads the requested page into the games store and
// returns the resulting state.
func (h *Handler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Games.LoadGames(r.Context(), catalog.ParseQuery(r)); err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, h.app.GamesView.State())
}

func (h *Handler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Games.LoadAvailableGenres(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, h.app.GamesView.AvailableFilters())
}

// HandleGetGame looks the id up in the currently loaded page.
func (h *Handler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	game, ok := h.app.GamesView.GameByID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, catalog.ErrGameNotFound.Error(), http.StatusNotFound)
		return
	}
	writeCached(w, r, game)
}

func (h *Handler) HandleGetFlags(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, h.app.FlagsView.State())
}

func (h *Handler) HandleSetCartFlag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UseDrawer   *bool  `json:"useDrawer"`
		Description string `json:"description"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.UseDrawer == nil {
		http.Error(w, "useDrawer is required", http.StatusBadRequest)
		return
	}

	h.app.Flags.SetCartFlag(r.Context(), *req.UseDrawer, req.Description)
	writeJSON(w, http.StatusOK, h.app.FlagsView.State())
}

func (h *Handler) HandleResetFlags(w http.ResponseWriter, r *http.Request) {
	h.app.Flags.Reset(r.Context())
	writeJSON(w, http.StatusOK, h.app.FlagsView.State())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, abstractor.ErrInvalidGame) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.Error().Err(err).Msg("request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	return dec.Decode(v)
}
