// Package otel records what the catalog client does as structured events.
//
// Events are typed structs written one per line as JSON. The Logger writes
// asynchronously through a buffered channel drained by a background
// goroutine. An optional RingBuffer keeps recent events in memory for the
// debug overlay, and the reader side (Filter, ReadTail, Follow) backs the
// `outfitter events` command.
package otel

import (
	"time"

	json "github.com/goccy/go-json"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// rank orders levels for filtering; unknown levels rank as debug.
func (l Level) rank() int {
	switch l {
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 0
	}
}

// EventKind names an event as "<subsystem>.<action>".
type EventKind string

const (
	// Catalog requests
	KindSearchStart       EventKind = "search.start"
	KindSearchComplete    EventKind = "search.complete"
	KindSearchError       EventKind = "search.error"
	KindSearchDiscard     EventKind = "search.discard"
	KindRecommendStart    EventKind = "recommend.start"
	KindRecommendComplete EventKind = "recommend.complete"
	KindRecommendError    EventKind = "recommend.error"
	KindRecommendDiscard  EventKind = "recommend.discard"
	KindImageFallback     EventKind = "image.fallback"

	// UI
	KindKeyPress EventKind = "ui.key"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindConfig   EventKind = "sys.config"
	KindError    EventKind = "sys.error"

	// Message tracing, emitted only when OUTFITTER_TRACE is set
	KindMsgReceived EventKind = "trace.msg_received"
	KindMsgHandled  EventKind = "trace.msg_handled"
)

// Event is one observability record. Only Kind is required; Time and
// SessionID are filled in by the Logger.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "ui", "catalog", "main"
	SessionID string         `json:"session_id,omitempty"`
	Seq       uint64         `json:"seq,omitempty"` // request ticket sequence
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Query     string         `json:"query,omitempty"`
	ProductID string         `json:"product_id,omitempty"`
	Status    int            `json:"status,omitempty"` // HTTP status, when one was received
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

type eventAlias Event

// MarshalJSON writes Dur as dur_ms.
func (e Event) MarshalJSON() ([]byte, error) {
	a := eventAlias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores Dur from dur_ms.
func (e *Event) UnmarshalJSON(data []byte) error {
	var a eventAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Event(a)
	if e.DurMs > 0 {
		e.Dur = time.Duration(e.DurMs * float64(time.Millisecond))
	}
	return nil
}
