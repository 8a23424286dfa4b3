// Package engine runs the reconciliation loop. Every mutation of the
// signal registry and stats holder happens on one goroutine, fed by
// three inputs only: inbound stream frames, the periodic clock tick,
// and user-initiated clear requests. Readers see the state through an
// immutable published projection.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"watchdeck/internal/core"
	"watchdeck/internal/metrics"
	"watchdeck/internal/notify"
	"watchdeck/internal/protocol"
	"watchdeck/internal/registry"
	"watchdeck/internal/stats"
	"watchdeck/internal/view"
)

// DefaultTickInterval drives time-decayed view fields between events.
const DefaultTickInterval = time.Second

const defaultFrameBuffer = 256

// Config holds engine settings.
type Config struct {
	TickInterval time.Duration
	ActiveWindow time.Duration
	FrameBuffer  int
}

// Projection is the presentation-ready state published after every
// mutation and every tick.
type Projection struct {
	UpdatedAt time.Time
	Feed      []view.Entry
	History   []view.Entry
	Stats     core.Stats
}

// Engine owns the registry, the stats holder and the view builder.
type Engine struct {
	logger    *zap.Logger
	metrics   *metrics.Registry
	notifiers *notify.Registry

	registry *registry.Registry
	stats    *stats.Holder
	views    *view.Builder

	frames chan []byte
	clears chan struct{}
	tick   time.Duration

	mu         sync.RWMutex
	projection Projection

	now func() time.Time
}

// New creates an engine. Notifiers and metrics may be nil.
func New(cfg Config, notifiers *notify.Registry, m *metrics.Registry, logger *zap.Logger) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.FrameBuffer <= 0 {
		cfg.FrameBuffer = defaultFrameBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifiers == nil {
		notifiers = notify.NewRegistry(logger)
	}
	if m == nil {
		m = metrics.NewRegistry()
	}

	e := &Engine{
		logger:    logger,
		metrics:   m,
		notifiers: notifiers,
		stats:     stats.NewHolder(),
		views:     view.NewBuilder(cfg.ActiveWindow),
		frames:    make(chan []byte, cfg.FrameBuffer),
		clears:    make(chan struct{}, 1),
		tick:      cfg.TickInterval,
		now:       time.Now,
	}

	e.registry = registry.New(registry.Hooks{
		OnChange:    e.recompute,
		OnNewSignal: e.announce,
	})

	e.recompute()
	return e
}

// HandleFrame enqueues one raw frame for the loop. Called from the
// stream goroutine; drops on backpressure rather than blocking the
// reader.
func (e *Engine) HandleFrame(frame []byte) {
	select {
	case e.frames <- frame:
	default:
		e.logger.Warn("frame buffer full, dropping frame", zap.Int("size", len(frame)))
	}
}

// RequestClear asks the loop to empty the registry. User-initiated
// only.
func (e *Engine) RequestClear() {
	select {
	case e.clears <- struct{}{}:
	default:
	}
}

// Projection returns the latest published projection.
func (e *Engine) Projection() Projection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.projection
}

// ActiveWindow returns the display expiry horizon.
func (e *Engine) ActiveWindow() time.Duration { return e.views.Window() }

// Run blocks, processing inputs until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-e.frames:
			e.metrics.RecordFrame()
			e.processFrame(frame)
		case <-e.clears:
			e.logger.Info("clearing signal registry")
			e.registry.Clear()
		case <-ticker.C:
			// Age, progress and expiry drift with the wall clock
			// even when no events arrive.
			e.recompute()
		}
	}
}

func (e *Engine) processFrame(frame []byte) {
	ev, err := protocol.Decode(frame)
	if err != nil {
		// Recoverable: drop the frame, keep the registry intact.
		e.metrics.RecordDecodeFailure()
		e.logger.Warn("dropping undecodable frame",
			zap.Int("size", len(frame)),
			zap.Error(err),
		)
		return
	}

	switch ev.Type {
	case protocol.EventSignal:
		e.registry.Upsert(*ev.Signal)
	case protocol.EventUpdate:
		applied := e.registry.ApplyUpdate(*ev.Update)
		// An orphan update is a benign race, not a fault; counted,
		// never logged.
		e.metrics.RecordUpdate(applied)
	case protocol.EventStats:
		e.stats.Apply(*ev.Stats)
		e.recompute()
	case protocol.EventHistory:
		e.registry.SeedHistory(ev.History)
	}
}

// announce pushes the new-signal side channel. Fired by the registry
// for live upserts only, never for seeded history.
func (e *Engine) announce(sig core.Signal) {
	alert := notify.NewAlert(sig.Direction, sig.Symbol)
	errs := e.notifiers.NotifyAll(alert)
	for _, name := range e.notifiers.Names() {
		_, failed := errs[name]
		e.metrics.RecordNotification(name, !failed)
	}
}

func (e *Engine) recompute() {
	snap := e.registry.Snapshot()
	proj := Projection{
		UpdatedAt: e.now(),
		Feed:      e.views.ActiveFeed(snap),
		History:   e.views.HistoryTable(snap),
		Stats:     e.stats.Current(),
	}
	e.metrics.SetActiveSignals(len(snap))

	e.mu.Lock()
	e.projection = proj
	e.mu.Unlock()
}
