// Package protocol decodes frames from the upstream signal stream.
//
// Each frame is one JSON object tagged with its variant:
//
//	{ "type": "Signal",  "payload": { ... } }
//	{ "type": "Update",  "payload": { ... } }
//	{ "type": "Stats",   "payload": { ... } }
//	{ "type": "History", "payload": [ ... ] }
//
// Decoding is best-effort: a malformed or unknown frame yields a coded
// error and the caller drops the frame. Decode failure never carries
// partial state.
package protocol

import (
	"encoding/json"
	"time"

	"watchdeck/internal/core"
)

// EventType identifies a decoded frame variant.
type EventType string

const (
	EventSignal  EventType = "Signal"
	EventUpdate  EventType = "Update"
	EventStats   EventType = "Stats"
	EventHistory EventType = "History"
)

// Event is the decoded form of one frame. Exactly one of the payload
// fields is set, matching Type.
type Event struct {
	Type    EventType
	Signal  *core.Signal
	Update  *core.SignalUpdate
	Stats   *core.Stats
	History []core.Signal
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// signalPayload mirrors the upstream Signal shape. Timestamps are unix
// milliseconds on the wire.
type signalPayload struct {
	Symbol       string  `json:"symbol"`
	SignalType   string  `json:"signal_type"`
	Price        float64 `json:"price"`
	Volume       float64 `json:"volume"`
	AvgVolume    float64 `json:"avg_volume"`
	Timestamp    int64   `json:"timestamp"`
	Reason       string  `json:"reason"`
	BookRatio    float64 `json:"book_ratio,omitempty"`
	OpenInterest float64 `json:"open_interest,omitempty"`
	NetInflow    float64 `json:"net_inflow,omitempty"`
}

type updatePayload struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// Decode parses one raw frame into a typed event.
func Decode(frame []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, core.WrapError(core.ErrBadPayload, err)
	}

	switch EventType(env.Type) {
	case EventSignal:
		sig, err := decodeSignal(env.Payload)
		if err != nil {
			return nil, err
		}
		return &Event{Type: EventSignal, Signal: sig}, nil

	case EventUpdate:
		var p updatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, core.WrapError(core.ErrBadPayload, err)
		}
		if p.Symbol == "" {
			return nil, core.ErrBadPayload
		}
		u := &core.SignalUpdate{
			Symbol:    p.Symbol,
			Price:     p.Price,
			Volume:    p.Volume,
			EventTime: time.UnixMilli(p.Timestamp),
		}
		return &Event{Type: EventUpdate, Update: u}, nil

	case EventStats:
		var s core.Stats
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return nil, core.WrapError(core.ErrBadPayload, err)
		}
		return &Event{Type: EventStats, Stats: &s}, nil

	case EventHistory:
		var raw []json.RawMessage
		if err := json.Unmarshal(env.Payload, &raw); err != nil {
			return nil, core.WrapError(core.ErrBadPayload, err)
		}
		history := make([]core.Signal, 0, len(raw))
		for _, r := range raw {
			sig, err := decodeSignal(r)
			if err != nil {
				return nil, err
			}
			history = append(history, *sig)
		}
		return &Event{Type: EventHistory, History: history}, nil

	default:
		return nil, core.ErrUnknownFrame
	}
}

func decodeSignal(payload json.RawMessage) (*core.Signal, error) {
	var p signalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, core.WrapError(core.ErrBadPayload, err)
	}
	sig := core.Signal{
		Symbol:       p.Symbol,
		Direction:    core.Direction(p.SignalType),
		Price:        p.Price,
		Volume:       p.Volume,
		AvgVolume:    p.AvgVolume,
		Timestamp:    time.UnixMilli(p.Timestamp),
		Reason:       p.Reason,
		BookRatio:    p.BookRatio,
		OpenInterest: p.OpenInterest,
		NetInflow:    p.NetInflow,
	}
	if !sig.IsValid() {
		return nil, core.ErrBadPayload
	}
	return &sig, nil
}
