package otel

import "github.com/DanielleFiene/redditmini/internal/reddit"

// RecordExchange turns a finished upstream request into a fetch.* event,
// so a Logger can be handed to reddit.Options as its Recorder.
func (l *Logger) RecordExchange(x reddit.Exchange) {
	ev := Event{
		Time:   x.Started,
		Level:  LevelDebug,
		Kind:   KindFetchComplete,
		Comp:   "reddit",
		Dur:    x.Duration,
		Status: x.Status,
		URL:    x.URL,
	}
	if x.Bytes > 0 {
		ev.Extra = map[string]any{"bytes": x.Bytes}
	}
	if x.Err != nil {
		ev.Level = LevelWarn
		ev.Kind = KindFetchError
		ev.Err = x.Err.Error()
	}
	l.Emit(ev)
}
