// internal/storage/faulty.go
package storage

import (
	"context"
	"sync"
	"time"
)

// Faulty wraps a Storage and injects errors and latency on demand. It is
// used by resilience experiments and tests.
type Faulty struct {
	inner Storage

	mu      sync.RWMutex
	err     error
	latency time.Duration
}

func NewFaulty(inner Storage) *Faulty {
	return &Faulty{inner: inner}
}

// FailWith makes every call return err until Heal is called.
func (f *Faulty) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// SetLatency delays every call by d.
func (f *Faulty) SetLatency(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latency = d
}

// Heal removes all injected faults.
func (f *Faulty) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = nil
	f.latency = 0
}

func (f *Faulty) inject(ctx context.Context) error {
	f.mu.RLock()
	err, latency := f.err, f.latency
	f.mu.RUnlock()

	if latency > 0 {
		t := time.NewTimer(latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *Faulty) Get(ctx context.Context, key string) ([]byte, error) {
	if err := f.inject(ctx); err != nil {
		return nil, err
	}
	return f.inner.Get(ctx, key)
}

func (f *Faulty) Set(ctx context.Context, key string, value []byte) error {
	if err := f.inject(ctx); err != nil {
		return err
	}
	return f.inner.Set(ctx, key, value)
}

func (f *Faulty) Delete(ctx context.Context, key string) error {
	if err := f.inject(ctx); err != nil {
		return err
	}
	return f.inner.Delete(ctx, key)
}

func (f *Faulty) Close() error {
	return f.inner.Close()
}
