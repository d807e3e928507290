// internal/store/flags.go
package store

import "gamershop/internal/featureflags"

// FlagsStore owns the runtime feature flags. Its initial state is the
// document it was created with; Reset returns to it.
type FlagsStore struct {
	base    *Store[featureflags.State]
	initial featureflags.State
}

func NewFlagsStore(initial featureflags.State) *FlagsStore {
	return &FlagsStore{
		base:    newStore(initial, cloneFlags),
		initial: initial,
	}
}

// featureflags.State holds only value fields, so a copy is a clone.
func cloneFlags(s featureflags.State) featureflags.State { return s }

func (s *FlagsStore) State() featureflags.State { return s.base.State() }
func (s *FlagsStore) Subscribe(fn func(featureflags.State)) func() {
	return s.base.Subscribe(fn)
}

func (s *FlagsStore) SetFlags(flags featureflags.State) {
	s.base.update(func(featureflags.State) featureflags.State { return flags })
}

// SetCartFlag sets the cart presentation flag. An empty description keeps
// the current one.
func (s *FlagsStore) SetCartFlag(useDrawer bool, description string) {
	s.base.update(func(cur featureflags.State) featureflags.State {
		cur.Cart.UseDrawer = useDrawer
		if description != "" {
			cur.Cart.Description = description
		}
		return cur
	})
}

func (s *FlagsStore) SetCartUseDrawer(useDrawer bool) {
	s.base.update(func(cur featureflags.State) featureflags.State {
		cur.Cart.UseDrawer = useDrawer
		return cur
	})
}

func (s *FlagsStore) Reset() {
	s.base.update(func(featureflags.State) featureflags.State { return s.initial })
}

func (s *FlagsStore) CartFlag() featureflags.CartFlag {
	return s.State().Cart
}

func (s *FlagsStore) CartUseDrawer() bool {
	return s.State().Cart.UseDrawer
}
