package otel

import (
	"maps"
	"slices"
	"sync"
)

// DefaultRingSize is the default ring buffer capacity.
const DefaultRingSize = 1024

// RingBuffer keeps the most recent events in memory so the debug overlay
// can show load activity without reading the JSONL file back.
// Safe for concurrent use.
type RingBuffer struct {
	mu    sync.Mutex
	slots []Event
	next  int // slot the next Push writes
	n     int // filled slots, at most len(slots)
}

// NewRingBuffer creates a ring buffer holding up to size events. A
// non-positive size selects DefaultRingSize.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{slots: make([]Event, size)}
}

// Push stores e, evicting the oldest event when full. Extra is cloned so a
// caller reusing its map cannot rewrite history.
func (r *RingBuffer) Push(e Event) {
	e.Extra = maps.Clone(e.Extra)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[r.next] = e
	r.next = (r.next + 1) % len(r.slots)
	r.n = min(r.n+1, len(r.slots))
}

// newest returns the i-th most recent event, i in [0, r.n). Caller holds mu.
func (r *RingBuffer) newest(i int) Event {
	size := len(r.slots)
	return r.slots[(r.next-1-i+size)%size]
}

// LastMatching returns up to n of the most recent events for which keep
// returns true, oldest first. A nil keep matches every event.
func (r *RingBuffer) LastMatching(n int, keep func(Event) bool) []Event {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for i := 0; i < r.n && len(out) < n; i++ {
		if e := r.newest(i); keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	slices.Reverse(out)
	return out
}

// Last returns the n most recent events, oldest first.
func (r *RingBuffer) Last(n int) []Event {
	return r.LastMatching(n, nil)
}

// Snapshot returns every buffered event, oldest first.
func (r *RingBuffer) Snapshot() []Event {
	return r.LastMatching(len(r.slots), nil)
}

// ByActivation returns the buffered events of one route activation,
// oldest first.
func (r *RingBuffer) ByActivation(id string) []Event {
	if id == "" {
		return nil
	}
	return r.LastMatching(len(r.slots), func(e Event) bool { return e.ActivationID == id })
}

// Len returns the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.slots)
}

// Stats counts the buffered events by kind.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	for i := 0; i < r.n; i++ {
		counts[r.newest(i).Kind]++
	}
	return counts
}
