// Package otel provides structured diagnostics for redditmini.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of a diagnostic event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Upstream exchanges
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Secondary lookups that degraded to an absent value
	KindAvatarError EventKind = "avatar.error"

	// Loader lifecycle, one set per route activation
	KindLoadStart  EventKind = "load.start"
	KindLoadReady  EventKind = "load.ready"
	KindLoadFailed EventKind = "load.failed"
	KindLoadStale  EventKind = "load.stale"

	// Request journal
	KindJournalError EventKind = "journal.error"

	// UI events
	KindNav      EventKind = "ui.nav"
	KindVoteStub EventKind = "ui.vote_stub"
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events, emitted only when REDDITMINI_TRACE is set
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal diagnostic record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time         time.Time      `json:"t"`
	Level        Level          `json:"level,omitempty"`
	Kind         EventKind      `json:"kind"`
	Comp         string         `json:"comp,omitempty"`       // component: "loader", "ui", "reddit", "main"
	SessionID    string         `json:"session_id,omitempty"` // same for the entire app run
	ActivationID string         `json:"aid,omitempty"`        // route activation correlation id
	Route        string         `json:"route,omitempty"`      // route key, e.g. "feed:golang"
	Dur          time.Duration  `json:"-"`                    // not serialized directly
	DurMs        float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count        int            `json:"count,omitempty"`
	Status       int            `json:"status,omitempty"`
	URL          string         `json:"url,omitempty"`
	Author       string         `json:"author,omitempty"`
	Err          string         `json:"err,omitempty"`
	Msg          string         `json:"msg,omitempty"`   // free text
	Extra        map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
