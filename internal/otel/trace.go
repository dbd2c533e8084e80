package otel

import (
	"os"
	"sync/atomic"
)

// EnvTrace turns on per-message and per-key trace events when non-empty.
const EnvTrace = "REDDITMINI_TRACE"

var trace atomic.Bool

func init() {
	trace.Store(os.Getenv(EnvTrace) != "")
}

// TraceEnabled reports whether trace.* and ui.key events should be emitted.
func TraceEnabled() bool {
	return trace.Load()
}

// SetTrace overrides the environment setting and returns a func restoring
// the previous value.
func SetTrace(on bool) (restore func()) {
	prev := trace.Swap(on)
	return func() { trace.Store(prev) }
}
