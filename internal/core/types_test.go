package core

import (
	"testing"
	"time"
)

func TestDirection_IsValid(t *testing.T) {
	if !DirectionLong.IsValid() || !DirectionShort.IsValid() {
		t.Error("expected Long and Short to be valid")
	}
	if Direction("Sideways").IsValid() {
		t.Error("expected unknown direction to be invalid")
	}
}

func TestDirection_Constants(t *testing.T) {
	// Wire values are the upstream enum variant names.
	if string(DirectionLong) != "Long" || string(DirectionShort) != "Short" {
		t.Errorf("unexpected direction values: %s, %s", DirectionLong, DirectionShort)
	}
}

func TestSignal_IsValid(t *testing.T) {
	tests := []struct {
		name string
		s    Signal
		want bool
	}{
		{"valid", Signal{Symbol: "BTCUSDT", Direction: DirectionLong, Timestamp: time.Now()}, true},
		{"empty symbol", Signal{Direction: DirectionLong, Timestamp: time.Now()}, false},
		{"bad direction", Signal{Symbol: "BTCUSDT", Direction: "Up", Timestamp: time.Now()}, false},
		{"zero timestamp", Signal{Symbol: "BTCUSDT", Direction: DirectionShort}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZeroStats(t *testing.T) {
	z := ZeroStats()
	if z.TotalSignals != 0 || z.WinRate != 0 {
		t.Errorf("expected zeroed counters, got %+v", z)
	}
	if z.TopGainer != TopGainerNone {
		t.Errorf("expected sentinel top gainer, got %q", z.TopGainer)
	}
}
