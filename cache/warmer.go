package cache

import (
	"context"
	"sync"
)

// Producer computes the value for a single key during cache warming. It runs
// outside any cache lock; producers may block on I/O or compilation.
type Producer func(ctx context.Context) (any, error)

// Warmer proactively populates a manager's caches with a known working set,
// for example the templates every request path renders. It is a collaborator
// of the manager, not part of it: values pass through the ordinary Set path
// and are evicted and expired like any other entry.
type Warmer struct {
	manager *Manager

	mu     sync.Mutex
	warmed map[string]struct{}
}

// NewWarmer creates a Warmer that populates the given manager.
func NewWarmer(m *Manager) *Warmer {
	return &Warmer{manager: m, warmed: make(map[string]struct{})}
}

// Warm runs each producer and stores its value under the corresponding key
// in the given role cache, returning the number of entries loaded. A
// producer error skips that key without failing the batch; a cancelled
// context stops the batch and returns the context's error along with the
// count loaded so far.
func (w *Warmer) Warm(ctx context.Context, role Role, producers map[string]Producer) (int, error) {
	if _, err := w.manager.GetCache(role); err != nil {
		return 0, err
	}

	loaded := 0
	for key, produce := range producers {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		value, err := produce(ctx)
		if err != nil {
			continue
		}

		if err := w.manager.Set(role, key, value); err != nil {
			return loaded, err
		}
		w.markWarmed(role, key)
		loaded++
	}
	return loaded, nil
}

// WarmedKeys returns every role-qualified key the warmer has loaded.
func (w *Warmer) WarmedKeys() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	keys := make([]string, 0, len(w.warmed))
	for key := range w.warmed {
		keys = append(keys, key)
	}
	return keys
}

// Reset clears the warmed-key tracking. It does not remove entries from the
// caches.
func (w *Warmer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warmed = make(map[string]struct{})
}

func (w *Warmer) markWarmed(role Role, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warmed[string(role)+":"+key] = struct{}{}
}
