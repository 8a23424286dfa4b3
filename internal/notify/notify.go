// Package notify is the side channel for "new signal" alerts. Sinks
// are fire-and-forget: an alert carries a TTL after which the consumer
// drops it on its own; the core never tracks expiry.
package notify

import (
	"time"

	"github.com/google/uuid"

	"watchdeck/internal/core"
)

// DefaultTTL is how long a consumer should display an alert.
const DefaultTTL = 3 * time.Second

// Alert is one new-signal notification.
type Alert struct {
	ID        string         `json:"id"`
	Direction core.Direction `json:"direction"`
	Symbol    string         `json:"symbol"`
	At        time.Time      `json:"at"`
	TTL       time.Duration  `json:"ttl"`
}

// NewAlert builds an alert for a freshly upserted signal.
func NewAlert(direction core.Direction, symbol string) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Direction: direction,
		Symbol:    symbol,
		At:        time.Now().UTC(),
		TTL:       DefaultTTL,
	}
}

// Notifier delivers alerts to one sink.
type Notifier interface {
	// Name returns the unique identifier for this notifier.
	Name() string

	// Notify delivers a single alert.
	Notify(alert Alert) error
}
