// Package view computes presentation-ready projections of the signal
// registry. All functions are pure over (snapshot, now); the view layer
// is never a source of truth.
package view

import (
	"fmt"
	"sort"
	"time"

	"watchdeck/internal/core"
)

// DefaultActiveWindow is the horizon after which a signal is shown as
// expired. Expiry is a display classification, not a deletion.
const DefaultActiveWindow = 60 * time.Minute

// Entry is one signal decorated with its time-dependent display fields.
type Entry struct {
	core.Signal

	Age      time.Duration
	Elapsed  string  // whole minutes, "{n}m"
	Progress float64 // 0-100 over the active window
	Expired  bool    // age >= active window
}

// Builder derives display projections from registry snapshots.
type Builder struct {
	window time.Duration

	// injectable for tests
	now func() time.Time
}

// NewBuilder creates a builder with the given active window. A zero or
// negative window falls back to the default.
func NewBuilder(window time.Duration) *Builder {
	if window <= 0 {
		window = DefaultActiveWindow
	}
	return &Builder{window: window, now: time.Now}
}

// Window returns the configured active window.
func (b *Builder) Window() time.Duration { return b.window }

// ActiveFeed returns the entries younger than the active window, most
// recent first. The boundary is exclusive: an entry aged exactly one
// window is no longer active.
func (b *Builder) ActiveFeed(snapshot map[string]core.Signal) []Entry {
	now := b.now()
	entries := make([]Entry, 0, len(snapshot))
	for _, sig := range snapshot {
		e := b.decorate(sig, now)
		if e.Expired {
			continue
		}
		entries = append(entries, e)
	}
	sortByTimestampDesc(entries)
	return entries
}

// HistoryTable returns every entry regardless of age, most recent first.
func (b *Builder) HistoryTable(snapshot map[string]core.Signal) []Entry {
	now := b.now()
	entries := make([]Entry, 0, len(snapshot))
	for _, sig := range snapshot {
		entries = append(entries, b.decorate(sig, now))
	}
	sortByTimestampDesc(entries)
	return entries
}

// ProgressRatio maps elapsed time since ts onto a clamped 0-100
// percentage over the active window.
func (b *Builder) ProgressRatio(ts time.Time) float64 {
	return b.progress(ts, b.now())
}

// ElapsedLabel formats whole minutes elapsed since ts, e.g. "12m".
func (b *Builder) ElapsedLabel(ts time.Time) string {
	return elapsedLabel(ts, b.now())
}

func (b *Builder) decorate(sig core.Signal, now time.Time) Entry {
	age := now.Sub(sig.Timestamp)
	return Entry{
		Signal:   sig,
		Age:      age,
		Elapsed:  elapsedLabel(sig.Timestamp, now),
		Progress: b.progress(sig.Timestamp, now),
		Expired:  age >= b.window,
	}
}

func (b *Builder) progress(ts, now time.Time) float64 {
	ratio := float64(now.Sub(ts)) / float64(b.window) * 100
	if ratio < 0 {
		return 0
	}
	if ratio > 100 {
		return 100
	}
	return ratio
}

func elapsedLabel(ts, now time.Time) string {
	mins := int(now.Sub(ts).Minutes())
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%dm", mins)
}

// sortByTimestampDesc orders most recent first. Symbol breaks ties so
// output stays deterministic across map iterations.
func sortByTimestampDesc(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Symbol < entries[j].Symbol
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
