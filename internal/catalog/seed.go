// internal/catalog/seed.go
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed games.json
var seedJSON []byte

// SeedGames returns the built-in catalog shipped with the binary.
func SeedGames() ([]Game, error) {
	var games []Game
	if err := json.Unmarshal(seedJSON, &games); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return games, nil
}
