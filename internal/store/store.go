// internal/store/store.go

// Package store holds the in-process state containers of the storefront.
//
// Each entity (cart, games, feature flags) gets one container created at
// process start. State changes only through the container's declared
// actions; readers and subscribers always receive copies.
//
// Notification is synchronous: an action computes the next state under the
// container lock, releases it, then calls every subscriber in subscription
// order on the calling goroutine. A subscriber may read or act on the store
// from inside its callback; such nested actions interleave with the
// remaining notifications of the outer one.
package store

import "sync"

// Store is a generic state container with an ordered subscriber registry.
type Store[S any] struct {
	mu     sync.Mutex
	state  S
	clone  func(S) S
	subs   []subscriber[S]
	nextID uint64
}

type subscriber[S any] struct {
	id uint64
	fn func(S)
}

func newStore[S any](initial S, clone func(S) S) *Store[S] {
	return &Store[S]{state: clone(initial), clone: clone}
}

// State returns a copy of the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.state)
}

// Subscribe registers fn and returns a function that removes it. Calling
// the returned function more than once is a no-op.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[S]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Store[S]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Subscribers reports how many callbacks are registered.
func (s *Store[S]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// update replaces the state with fn(copy of current state) and notifies.
func (s *Store[S]) update(fn func(S) S) {
	s.mu.Lock()
	next := fn(s.clone(s.state))
	s.state = next
	subs := append([]subscriber[S](nil), s.subs...)
	snapshot := s.clone(next)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(s.clone(snapshot))
	}
}

// read runs fn against the live state under the lock. fn must not retain it.
func (s *Store[S]) read(fn func(S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}
