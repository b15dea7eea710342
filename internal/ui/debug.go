package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/cinescope/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders query and trending stats plus recent events.
// Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Session Stats"))
	lines = append(lines, fmt.Sprintf("  Searches:   %d started, %d complete, %d empty, %d errors",
		stats[otel.KindSearchStart], stats[otel.KindSearchComplete], stats[otel.KindSearchEmpty], stats[otel.KindSearchError]))
	lines = append(lines, fmt.Sprintf("  Discarded:  %d stale, %d retries",
		stats[otel.KindSearchStale], stats[otel.KindSearchRetry]))
	lines = append(lines, fmt.Sprintf("  Trending:   %d recorded, %d loads, %d errors",
		stats[otel.KindTrendingRecord], stats[otel.KindTrendingLoad], stats[otel.KindTrendingError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-16s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Seq != 0 {
			line += fmt.Sprintf("  #%d", e.Seq)
		}
		if e.Query != "" {
			line += "  q:" + truncateRunes(e.Query, 20)
		}
		if e.Dur > 0 {
			line += "  " + formatAge(e.Dur)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 30)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 84
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("ctrl+g") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
