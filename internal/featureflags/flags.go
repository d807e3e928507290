// internal/featureflags/flags.go

// Package featureflags loads the static feature flag document read once at
// process start.
package featureflags

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed feature-flags.json
var defaultDocument []byte

// CartFlag controls how the cart is presented.
type CartFlag struct {
	UseDrawer   bool   `json:"useDrawer"`
	Description string `json:"description"`
}

// State is the full flag document.
type State struct {
	Cart CartFlag `json:"cart"`
}

// Default returns the flags compiled into the binary.
func Default() State {
	var s State
	// the embedded document is validated by tests
	_ = json.Unmarshal(defaultDocument, &s)
	return s
}

// Load reads the flag document at path. An empty path or a missing file
// yields Default; a present but malformed file is an error.
func Load(path string) (State, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return State{}, fmt.Errorf("read feature flags: %w", err)
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parse feature flags: %w", err)
	}
	return s, nil
}
