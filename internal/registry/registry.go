// Package registry holds the live, unique-per-symbol store of the most
// recently seen signal state.
package registry

import (
	"sync"

	"watchdeck/internal/core"
)

// Hooks are callbacks fired on registry activity. Nil hooks are skipped.
type Hooks struct {
	// OnChange fires after every mutation that changes content
	// identity, including a wholesale replacement with equal values.
	OnChange func()

	// OnNewSignal fires exactly once per live Upsert. It never fires
	// for seeded history; backlog replay is not a live event.
	OnNewSignal func(core.Signal)
}

// Registry maps symbol to its active signal. Entries are only removed
// by Clear; "expiry" is a presentation concern handled by the view
// layer, never a deletion here.
type Registry struct {
	mu      sync.RWMutex
	signals map[string]core.Signal
	hooks   Hooks
}

// New creates an empty registry.
func New(hooks Hooks) *Registry {
	return &Registry{
		signals: make(map[string]core.Signal),
		hooks:   hooks,
	}
}

// Upsert inserts or fully replaces the entry for sig.Symbol. A new
// signal for a known symbol overwrites the prior entry wholesale,
// including its timestamp; that is the intended re-trigger semantics.
func (r *Registry) Upsert(sig core.Signal) {
	r.put(sig)
	if r.hooks.OnNewSignal != nil {
		r.hooks.OnNewSignal(sig)
	}
	r.changed()
}

// ApplyUpdate refreshes price and volume in place for an existing
// symbol. The origin timestamp is never touched. An update for an
// unknown symbol is a no-op, not an error: the upstream may race a
// late update against a clear or deliver it before the signal itself.
func (r *Registry) ApplyUpdate(u core.SignalUpdate) bool {
	r.mu.Lock()
	sig, ok := r.signals[u.Symbol]
	if ok {
		sig.Price = u.Price
		sig.Volume = u.Volume
		r.signals[u.Symbol] = sig
	}
	r.mu.Unlock()

	if ok {
		r.changed()
	}
	return ok
}

// SeedHistory replays a backlog of signals. Each entry is upserted as
// in Upsert but without the new-signal side channel.
func (r *Registry) SeedHistory(signals []core.Signal) {
	if len(signals) == 0 {
		return
	}
	for _, sig := range signals {
		r.put(sig)
	}
	r.changed()
}

// Clear empties the registry. User-initiated only; the event stream
// never triggers it.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.signals = make(map[string]core.Signal)
	r.mu.Unlock()
	r.changed()
}

// Snapshot returns a copy of the current symbol-to-signal mapping.
func (r *Registry) Snapshot() map[string]core.Signal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]core.Signal, len(r.signals))
	for sym, sig := range r.signals {
		snap[sym] = sig
	}
	return snap
}

// Len returns the number of active entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.signals)
}

func (r *Registry) put(sig core.Signal) {
	r.mu.Lock()
	r.signals[sig.Symbol] = sig
	r.mu.Unlock()
}

func (r *Registry) changed() {
	if r.hooks.OnChange != nil {
		r.hooks.OnChange()
	}
}
