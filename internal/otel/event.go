// Package otel records structured CineScope events.
//
// Events are typed structs written as JSONL by an async Logger. A RingBuffer
// attached to the Logger keeps the most recent events in memory for the
// debug overlay and the `cinescope events` viewer reads the file back.
package otel

import (
	"time"

	json "github.com/goccy/go-json"
)

// Level is the event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	// Query controller
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchEmpty    EventKind = "search.empty"
	KindSearchError    EventKind = "search.error"
	KindSearchStale    EventKind = "search.stale"
	KindSearchRetry    EventKind = "search.retry"

	// Trending tracker
	KindTrendingRecord EventKind = "trending.record"
	KindTrendingLoad   EventKind = "trending.load"
	KindTrendingError  EventKind = "trending.error"

	// UI
	KindKeyPress  EventKind = "ui.key"
	KindModalOpen EventKind = "ui.modal"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is one JSONL line. Only Kind and Time are always present.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "query", "trending", "ui", "main"
	SessionID string         `json:"session_id,omitempty"`
	Seq       uint64         `json:"seq,omitempty"` // fetch generation
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Endpoint  string         `json:"endpoint,omitempty"` // "discover" or "search"
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON fills DurMs from Dur.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
