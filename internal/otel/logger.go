package otel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// queueSize bounds the events waiting for the writer. Emit never blocks;
// past this the event is counted as dropped.
const queueSize = 4096

// queued pairs the encoded line with the event itself so the ring buffer
// keeps fields the JSON form flattens (Dur).
type queued struct {
	line []byte
	ev   Event
}

// Logger appends events to a JSONL stream from a single writer goroutine
// and mirrors them into an optional RingBuffer. Safe for concurrent use; a
// nil *Logger discards everything.
//
// The writer goroutine is the only reader of queue and the only user of
// out. mu guards ring alone and is never held while pushing into it.
type Logger struct {
	session string
	out     io.Writer
	queue   chan queued
	done    chan struct{}

	mu   sync.Mutex
	ring *RingBuffer

	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewLogger starts a Logger writing to out. Close flushes it.
func NewLogger(out io.Writer) *Logger {
	l := &Logger{
		session: uuid.NewString(),
		out:     out,
		queue:   make(chan queued, queueSize),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Logger) run() {
	defer close(l.done)
	for q := range l.queue {
		if _, err := l.out.Write(q.line); err != nil {
			l.dropped.Add(1)
		}
		l.mu.Lock()
		ring := l.ring
		l.mu.Unlock()
		if ring != nil {
			ring.Push(q.ev)
		}
	}
}

// Emit stamps e with the session id (and the current time if unset) and
// queues it. A full queue or a closed logger drops the event.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}
	// Close can still win between the check above and the send
	defer func() {
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	line, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}

	select {
	case l.queue <- queued{line: append(line, '\n'), ev: e}:
	default:
		l.dropped.Add(1)
	}
}

// Error emits an error-level event carrying err's text.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	ev := Event{Level: LevelError, Kind: kind, Comp: comp}
	if err != nil {
		ev.Err = err.Error()
	}
	l.Emit(ev)
}

// SetRingBuffer mirrors every written event into ring.
func (l *Logger) SetRingBuffer(ring *RingBuffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = ring
}

// SessionID returns the id stamped on every event of this run.
func (l *Logger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.session
}

// Dropped returns the number of events lost so far.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close drains the queue and stops the writer. Later Emits are dropped.
// Losses are reported on stderr since the log itself may be what failed.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.queue)
		<-l.done
		if d := l.dropped.Load(); d > 0 {
			fmt.Fprintf(os.Stderr, "redditmini: %d events dropped during session %s\n", d, l.session)
		}
	})
}
