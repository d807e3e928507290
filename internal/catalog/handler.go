// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	service Service
	log     zerolog.Logger
}

func NewHandler(service Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log.With().Str("component", "catalog_handler").Logger()}
}

// Routes mounts the catalog endpoints: GET / and GET /{id}.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleListGames)
	r.Get("/{id}", h.HandleGetGame)
	return r
}

func (h *Handler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListGames(r.Context(), ParseQuery(r))
	if err != nil {
		h.log.Error().Err(err).Msg("list games failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// ParseQuery reads genre and page from the request query string.
// A missing or malformed page falls back to the first page.
func ParseQuery(r *http.Request) Query {
	values := r.URL.Query()
	q := Query{Genre: values.Get("genre"), Page: 1}
	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			q.Page = page
		}
	}
	return q
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
