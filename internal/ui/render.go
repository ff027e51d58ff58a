package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/session"
	"github.com/abelbrown/outfitter/internal/view"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		return debugOverlay(a.cfg.Obs.Ring, a.width, a.height-1) + "\n" + debugStatusBar(a.sess.Ordering(), a.sess.Outstanding(), a.width)
	}

	snap := a.sess.Snapshot()
	plan := a.project(snap)

	var b strings.Builder
	b.WriteString(a.renderHeader(plan))
	b.WriteString("\n")

	if a.err != nil {
		b.WriteString(ErrorStyle.Width(a.width).Render("Error: " + a.err.Error() + " (press any key to dismiss)"))
		b.WriteString("\n")
	}

	// Header box is three lines, status bar one.
	budget := a.height - 4 - strings.Count(b.String(), "\n")
	cursor := -1
	if a.focus == focusList {
		cursor = a.cursor
	}

	if !plan.Results.Visible && !plan.Recommendations.Visible {
		b.WriteString(HelpStyle.Render("Type a query and press enter to search the catalog."))
	} else {
		recRows := 0
		if plan.Recommendations.Visible {
			recRows = min(len(plan.Recommendations.Items)+2, budget/2)
		}
		if plan.Results.Visible {
			b.WriteString(RenderSection(plan.Results, cursor, plan.Selected, a.width, budget-recRows))
		}
		if plan.Recommendations.Visible {
			b.WriteString(RenderSection(plan.Recommendations, -1, "", a.width, recRows))
		}
	}

	body := b.String()
	if pad := a.height - 1 - lipgloss.Height(body); pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body + "\n" + renderStatusBar(a.focus, plan.Trigger, snap.Phase, a.sess.Outstanding(), a.width)
}

func (a App) renderHeader(plan view.Plan) string {
	box := InputStyle
	if a.focus == focusInput {
		box = InputFocusedStyle
	}
	input := box.Render(a.input.View())

	trigger := TriggerStyle.Render(plan.Trigger.Label)
	if !plan.Trigger.Enabled {
		trigger = TriggerDisabledStyle.Render(plan.Trigger.Label) + " " + a.spinner.View()
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, TitleStyle.Render("outfitter"), input, " ", trigger)
}

// RenderSection renders a titled product list in at most height lines.
// cursor is the highlighted row, or -1. The card whose id equals selected
// is marked as the source of the current recommendations.
func RenderSection(s view.Section, cursor int, selected catalog.ProductID, width, height int) string {
	var lines []string
	lines = append(lines, SectionTitle.Render(s.Title)+" "+SectionCount.Render(s.CountLabel))

	rows := max(1, height-2)
	if cursor >= 0 && cursor < len(s.Items) && len(s.Items[cursor].Details) > 0 {
		rows = max(1, rows-1)
	}
	from, to := window(len(s.Items), cursor, rows)

	for i := from; i < to; i++ {
		c := s.Items[i]
		lines = append(lines, renderCard(c, i == cursor, c.ID == selected && selected != "", width))
		if i == cursor && len(c.Details) > 0 {
			lines = append(lines, DetailLine.Render(strings.Join(c.Details, " · ")))
		}
	}
	if hidden := len(s.Items) - (to - from); hidden > 0 {
		lines = append(lines, MetaItem.Render(fmt.Sprintf("    … %d more", hidden)))
	}
	return strings.Join(lines, "\n") + "\n"
}

// window picks the visible slice of n rows so that cursor stays in view.
func window(n, cursor, rows int) (from, to int) {
	if n <= rows {
		return 0, n
	}
	if cursor >= rows {
		from = cursor - rows + 1
	}
	return from, from + rows
}

func renderCard(c view.Card, highlighted, source bool, width int) string {
	marker := "  "
	if source {
		marker = SourceMarker.Render("• ")
	}

	badge := ""
	if c.Rank > 0 {
		badge = RankBadge.Render(fmt.Sprintf("#%d", c.Rank))
	}

	image := MetaItem.Render(c.Image)
	if c.Fallback {
		image = FallbackImage.Render(c.Image)
	}
	meta := MetaItem.Render(c.Category+" · "+c.Color) + "  " + image

	nameWidth := max(12, width-lipgloss.Width(marker+badge+meta)-6)
	name := truncateRunes(c.DisplayName, nameWidth)

	style := NormalItem
	if highlighted {
		style = SelectedItem
	}
	return marker + badge + style.Render(name) + "  " + meta
}

// renderStatusBar renders the bottom bar with the session phase, the
// request count and key hints.
func renderStatusBar(f focus, trigger view.Trigger, phase session.Phase, outstanding, width int) string {
	left := " ready "
	if !trigger.Enabled {
		left = fmt.Sprintf(" %s · %d in flight ", phase, outstanding)
	}

	var hints []string
	if f == focusList {
		hints = []string{
			StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
			StatusBarKey.Render("enter") + StatusBarText.Render(":recommend"),
			StatusBarKey.Render("esc") + StatusBarText.Render(":query"),
			StatusBarKey.Render("?") + StatusBarText.Render(":debug"),
			StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
		}
	} else {
		hints = []string{
			StatusBarKey.Render("enter") + StatusBarText.Render(":search"),
			StatusBarKey.Render("tab") + StatusBarText.Render(":results"),
			StatusBarKey.Render("ctrl+c") + StatusBarText.Render(":quit"),
		}
	}
	right := strings.Join(hints, " ")

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// truncateRunes shortens s to at most n runes, ending with an ellipsis.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
