package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/DanielleFiene/redditmini/internal/app"
	"github.com/DanielleFiene/redditmini/internal/otel"
)

// eventFilter selects events from the JSONL log. Zero fields match anything.
type eventFilter struct {
	kindPrefix string
	minLevel   otel.Level
	comp       string
	aidPrefix  string
	session    string
	route      string
}

// levelOf maps an event level onto the logger's scale. Unknown or empty
// levels rank lowest.
func levelOf(l otel.Level) log.Level {
	lvl, err := log.ParseLevel(string(l))
	if err != nil {
		return log.DebugLevel
	}
	return lvl
}

func (f eventFilter) match(ev otel.Event) bool {
	switch {
	case f.kindPrefix != "" && !strings.HasPrefix(string(ev.Kind), f.kindPrefix):
		return false
	case f.minLevel != "" && levelOf(ev.Level) < levelOf(f.minLevel):
		return false
	case f.comp != "" && ev.Comp != f.comp:
		return false
	case f.aidPrefix != "" && !strings.HasPrefix(ev.ActivationID, f.aidPrefix):
		return false
	case f.session != "" && ev.SessionID != f.session:
		return false
	case f.route != "" && ev.Route != f.route:
		return false
	}
	return true
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent matching events to show")
	follow := fs.Bool("f", false, "Keep printing events as they are appended")
	kind := fs.String("kind", "", "Event kind prefix, e.g. 'load' or 'fetch.error'")
	level := fs.String("level", "debug", "Minimum level: debug, info, warn, error")
	comp := fs.String("comp", "", "Component: loader, reddit, ui, main, rmctl")
	aid := fs.String("aid", "", "Activation id prefix")
	session := fs.String("session", "", "Session id")
	routeKey := fs.String("route", "", "Route key, e.g. 'feed:golang'")
	rawJSON := fs.Bool("json", false, "Print JSON lines instead of text")
	fs.Parse(os.Args[1:])

	if _, err := log.ParseLevel(*level); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	filter := eventFilter{
		kindPrefix: *kind,
		minLevel:   otel.Level(*level),
		comp:       *comp,
		aidPrefix:  *aid,
		session:    *session,
		route:      *routeKey,
	}
	show := func(ev otel.Event) {
		if *rawJSON {
			line, _ := json.Marshal(ev)
			fmt.Println(string(line))
			return
		}
		fmt.Println(formatEvent(ev))
	}

	logPath := app.EventLogPath()
	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", logPath)
		fmt.Fprintf(os.Stderr, "  Run redditmini or another rmctl command first to generate events.\n")
		os.Exit(1)
	}
	defer f.Close()

	for _, ev := range tailEvents(f, *tail, filter.match) {
		show(ev)
	}
	if *follow {
		followEvents(f, filter.match, show)
	}
}

// tailEvents returns the last n events in r accepted by keep. Lines that
// are not events are skipped.
func tailEvents(r io.Reader, n int, keep func(otel.Event) bool) []otel.Event {
	if n <= 0 {
		return nil
	}
	ring := otel.NewRingBuffer(n)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		if ev, ok := decodeEvent(scanner.Bytes()); ok && keep(ev) {
			ring.Push(ev)
		}
	}
	return ring.Snapshot()
}

// followEvents polls f from its current end, like tail -f.
func followEvents(f *os.File, keep func(otel.Event) bool, emit func(otel.Event)) {
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	reader := bufio.NewReader(f)
	var partial []byte
	for {
		chunk, err := reader.ReadBytes('\n')
		partial = append(partial, chunk...)
		if err == io.EOF {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if ev, ok := decodeEvent(partial); ok && keep(ev) {
			emit(ev)
		}
		partial = partial[:0]
	}
}

func decodeEvent(line []byte) (otel.Event, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return otel.Event{}, false
	}
	var ev otel.Event
	if err := json.Unmarshal(line, &ev); err != nil || ev.Kind == "" {
		return otel.Event{}, false
	}
	return ev, true
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(ev otel.Event) string {
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s [%-6s] %-16s", ev.Time.Local().Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)

	field := func(s string) {
		if s != "" {
			b.WriteByte(' ')
			b.WriteString(s)
		}
	}
	field(ev.Route)
	if ev.Msg != "" {
		field("- " + ev.Msg)
	}
	if ev.DurMs > 0 {
		field(formatMs(ev.DurMs))
	}
	if ev.Count > 0 {
		field(fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Status != 0 {
		field(fmt.Sprintf("status=%d", ev.Status))
	}
	field(truncate(ev.URL, 80))
	if ev.Author != "" {
		field("author=" + ev.Author)
	}
	if len(ev.ActivationID) >= 8 {
		field("aid=" + ev.ActivationID[:8])
	}
	if ev.Err != "" {
		field("err=" + ev.Err)
	}
	return b.String()
}

// formatMs prints a duration in milliseconds with fewer decimals as it grows.
func formatMs(ms float64) string {
	switch {
	case ms >= 100:
		return fmt.Sprintf("(%.0fms)", ms)
	case ms >= 1:
		return fmt.Sprintf("(%.1fms)", ms)
	default:
		return fmt.Sprintf("(%.2fms)", ms)
	}
}
