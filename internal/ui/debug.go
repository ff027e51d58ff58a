package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/outfitter/internal/otel"
	"github.com/abelbrown/outfitter/internal/session"
)

// debugPanelChrome is the number of lines DebugPanel's border and padding take.
const debugPanelChrome = 4

// debugOverlay renders request stats and the most recent events. Returns ""
// when no ring is attached.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Requests"))
	lines = append(lines, fmt.Sprintf("  Searches:   %d started, %d applied, %d discarded, %d failed",
		stats[otel.KindSearchStart], stats[otel.KindSearchComplete], stats[otel.KindSearchDiscard], stats[otel.KindSearchError]))
	lines = append(lines, fmt.Sprintf("  Recommends: %d started, %d applied, %d discarded, %d failed",
		stats[otel.KindRecommendStart], stats[otel.KindRecommendComplete], stats[otel.KindRecommendDiscard], stats[otel.KindRecommendError]))
	images := fmt.Sprintf("  Images:     %d fallbacks", stats[otel.KindImageFallback])
	if fallbacks := ring.WithPrefix("image."); len(fallbacks) > 0 {
		images += ", last " + truncateRunes(fallbacks[len(fallbacks)-1].Msg, 40)
	}
	lines = append(lines, images)
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-20s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Seq != 0 {
			line += fmt.Sprintf("  #%d", e.Seq)
		}
		switch {
		case e.Query != "":
			line += "  q=" + truncateRunes(e.Query, 24)
		case e.ProductID != "":
			line += "  id=" + e.ProductID
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := max(1, height-debugPanelChrome)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(96, width-4)
	panelWidth = max(panelWidth, 20)

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge renders a duration compactly. Negative ages clamp to "0ms".
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

func debugStatusBar(ordering session.Ordering, outstanding, width int) string {
	keys := StatusBarKey.Render("?") + StatusBarText.Render(":close")
	info := StatusBarText.Render(fmt.Sprintf("ordering=%s in-flight=%d", ordering, outstanding))
	return StatusBar.Width(width).Render("  [DEBUG]  " + info + "  " + keys)
}
