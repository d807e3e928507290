// internal/catalog/local.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

// LocalSource serves catalog responses in their wire form without a network
// hop, so consumers validate the same payload an HTTP client would receive.
type LocalSource struct {
	service Service
}

func NewLocalSource(service Service) *LocalSource {
	return &LocalSource{service: service}
}

// FetchGames returns the JSON encoding of a catalog page.
func (s *LocalSource) FetchGames(ctx context.Context, q Query) ([]byte, error) {
	page, err := s.service.ListGames(ctx, q)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("encode catalog page: %w", err)
	}
	return body, nil
}
