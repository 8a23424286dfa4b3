// Package stats holds the latest aggregate statistics snapshot pushed
// by the upstream.
package stats

import (
	"sync"

	"watchdeck/internal/core"
)

// Holder is a single guarded cell. Apply replaces the snapshot
// wholesale; no history is retained.
type Holder struct {
	mu      sync.RWMutex
	current core.Stats
}

// NewHolder creates a holder seeded with the zero snapshot.
func NewHolder() *Holder {
	return &Holder{current: core.ZeroStats()}
}

// Apply replaces the current snapshot in full.
func (h *Holder) Apply(s core.Stats) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
}

// Current returns the latest snapshot.
func (h *Holder) Current() core.Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}
