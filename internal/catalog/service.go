// internal/catalog/service.go
package catalog

import "context"

// Service defines the interface for the catalog service.
type Service interface {
	ListGames(ctx context.Context, q Query) (*Page, error)
	GetGame(ctx context.Context, id string) (*Game, error)
	Genres(ctx context.Context) ([]string, error)
}
