// internal/catalog/domain.go
package catalog

import "errors"

// DefaultPageSize is the number of games returned per catalog page.
const DefaultPageSize = 12

// ErrGameNotFound is returned when a game id is not in the catalog.
var ErrGameNotFound = errors.New("game not found")

// Game represents a single title in the storefront catalog.
type Game struct {
	ID          string  `json:"id"`
	Genre       string  `json:"genre"`
	Image       string  `json:"image"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	IsNew       bool    `json:"isNew"`
}

// Query narrows a catalog listing. Zero values mean "no filter" and "first page".
type Query struct {
	Genre string `json:"genre,omitempty"`
	Page  int    `json:"page,omitempty"`
}

// Page is the catalog query response.
type Page struct {
	Games            []Game   `json:"games"`
	AvailableFilters []string `json:"availableFilters"`
	TotalPages       int      `json:"totalPages"`
	CurrentPage      int      `json:"currentPage"`
}

// EmptyPage is the well-formed response used when a listing cannot be served.
func EmptyPage() Page {
	return Page{
		Games:            []Game{},
		AvailableFilters: []string{},
		TotalPages:       0,
		CurrentPage:      1,
	}
}
