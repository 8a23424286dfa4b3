package core

import "time"

// Direction is the side of a trade alert.
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// IsValid reports whether the direction is a known value.
func (d Direction) IsValid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Signal is a directional trade alert for a symbol. Timestamp is the
// instant the signal was first raised and never changes afterwards;
// Price and Volume are refreshed in place by later updates.
type Signal struct {
	Symbol    string
	Direction Direction
	Price     float64
	Volume    float64
	AvgVolume float64
	Timestamp time.Time
	Reason    string

	// Corroborating metrics attached by the upstream verifier.
	// Zero means the upstream did not supply the value.
	BookRatio    float64
	OpenInterest float64
	NetInflow    float64
}

// IsValid checks the fields a signal must carry to enter the registry.
func (s Signal) IsValid() bool {
	return s.Symbol != "" && s.Direction.IsValid() && !s.Timestamp.IsZero()
}

// SignalUpdate is a partial refresh for an existing signal. It never
// creates a registry entry and never touches the origin timestamp.
type SignalUpdate struct {
	Symbol    string
	Price     float64
	Volume    float64
	EventTime time.Time
}

// Stats is the aggregate snapshot pushed by the upstream. It replaces
// the previous snapshot in full; nothing is merged.
type Stats struct {
	TotalSignals int     `json:"total_signals"`
	WinRate      float64 `json:"win_rate"`
	TopGainer    string  `json:"top_gainer"`
}

// TopGainerNone is the upstream's placeholder before any gainer exists.
const TopGainerNone = "None"

// ZeroStats is the holder's value before the first Stats frame arrives.
func ZeroStats() Stats {
	return Stats{TotalSignals: 0, WinRate: 0, TopGainer: TopGainerNone}
}
