package notify

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"watchdeck/internal/core"
)

// Registry fans alerts out to every registered notifier. Sink failures
// are logged and swallowed; a broken sink must never stall the stream.
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	logger    *zap.Logger
}

// NewRegistry creates an empty notifier registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		notifiers: make(map[string]Notifier),
		logger:    logger,
	}
}

// Register adds a notifier to the registry.
func (r *Registry) Register(n Notifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, exists := r.notifiers[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}
	r.notifiers[name] = n
	return nil
}

// Names returns the registered notifier names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.notifiers))
	for name := range r.notifiers {
		names = append(names, name)
	}
	return names
}

// NotifyAll delivers the alert to every sink and reports per-sink
// failures.
func (r *Registry) NotifyAll(alert Alert) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errs := make(map[string]error)
	for name, n := range r.notifiers {
		if err := n.Notify(alert); err != nil {
			wrapped := core.WrapError(core.ErrNotifierFailed, err)
			errs[name] = wrapped
			r.logger.Warn("notifier failed",
				zap.String("notifier", name),
				zap.String("symbol", alert.Symbol),
				zap.Error(err),
			)
		}
	}
	return errs
}
