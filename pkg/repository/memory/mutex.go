package memory

import (
	"context"
	"sync"
)

// advisoryMutex is the in-memory advisory lock. It coordinates goroutines of
// a single process only, which matches the in-memory backend's single-node
// scope. Acquisition failure is reported via the bool, never as an error.
type advisoryMutex struct {
	mu   sync.Mutex
	held map[string]bool
}

func newAdvisoryMutex() *advisoryMutex {
	return &advisoryMutex{
		held: make(map[string]bool),
	}
}

func (m *advisoryMutex) TryLock(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *advisoryMutex) Unlock(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, key)
	return nil
}
