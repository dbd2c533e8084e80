package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/DanielleFiene/redditmini/internal/otel"
	"github.com/DanielleFiene/redditmini/internal/route"
)

// debugChrome is the height DebugPanel adds: border and vertical padding.
const debugChrome = 4

// debugRecent is how many non-key events the overlay lists.
const debugRecent = 12

// debugOverlay renders the D panel: load counters, the events of the live
// main-route activation, then recent events. Returns "" without a ring.
func debugOverlay(ring *otel.RingBuffer, live route.Activation, width, height int, now time.Time) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	lines := []string{
		DebugHeaderStyle.Render("Load Stats"),
		fmt.Sprintf("  Requests:   %d complete, %d errors", stats[otel.KindFetchComplete], stats[otel.KindFetchError]),
		fmt.Sprintf("  Loads:      %d started, %d ready, %d failed",
			stats[otel.KindLoadStart], stats[otel.KindLoadReady], stats[otel.KindLoadFailed]),
		fmt.Sprintf("  Discarded:  %d stale, %d avatar errors", stats[otel.KindLoadStale], stats[otel.KindAvatarError]),
		fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()),
	}

	if live.ID != "" {
		lines = append(lines, "", DebugHeaderStyle.Render("Current: "+live.Route.Key()))
		for _, e := range ring.ByActivation(live.ID) {
			lines = append(lines, debugEventLine(e, now, false))
		}
	}

	lines = append(lines, "", DebugHeaderStyle.Render("Recent Events"))
	// key presses drown everything else out
	for _, e := range ring.LastMatching(debugRecent, func(e otel.Event) bool { return e.Kind != otel.KindKeyPress }) {
		lines = append(lines, debugEventLine(e, now, true))
	}

	if limit := max(height-debugChrome, 1); len(lines) > limit {
		lines = lines[:limit]
	}
	panelWidth := max(min(96, width-4), 20)
	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// debugEventLine renders one event as "  age  kind  route  msg  ERR:..  aid:..".
func debugEventLine(e otel.Event, now time.Time, withRoute bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %6s  %-16s", formatAge(now.Sub(e.Time)), e.Kind)
	if withRoute && e.Route != "" {
		b.WriteString("  " + truncateRunes(e.Route, 24))
	}
	switch {
	case e.URL != "":
		b.WriteString("  " + truncateRunes(e.URL, 40))
	case e.Msg != "":
		b.WriteString("  " + truncateRunes(e.Msg, 40))
	}
	if e.Err != "" {
		b.WriteString("  ERR:" + truncateRunes(e.Err, 30))
	}
	if withRoute && e.ActivationID != "" {
		b.WriteString("  aid:" + e.ActivationID[:min(8, len(e.ActivationID))])
	}
	return b.String()
}

// formatAge renders d compactly. Negative ages from clock skew read "0ms".
func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

func debugStatusBar(width int) string {
	return StatusBar.Width(width).Render("  [DEBUG]  " + StatusBarKey.Render("D") + StatusBarText.Render(":close"))
}
