// internal/clients/catalog_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gamershop/internal/catalog"
)

// maxBodySize bounds how much of a catalog response is read.
const maxBodySize = 4 << 20

type CatalogClient struct {
	baseURL string
	http    *http.Client
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchGames returns the raw body of GET /api/games. Validation is left to
// the caller.
func (c *CatalogClient) FetchGames(ctx context.Context, q catalog.Query) ([]byte, error) {
	params := url.Values{}
	if q.Genre != "" {
		params.Set("genre", q.Genre)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	endpoint := fmt.Sprintf("%s/api/games", c.baseURL)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	return body, nil
}

func (c *CatalogClient) GetGame(ctx context.Context, id string) (*catalog.Game, error) {
	resp, err := c.get(ctx, fmt.Sprintf("%s/api/games/%s", c.baseURL, url.PathEscape(id)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, catalog.ErrGameNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var game catalog.Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (c *CatalogClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}
