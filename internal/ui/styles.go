package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("62")  // purple
	colorSecondary = lipgloss.Color("241") // gray
	colorMuted     = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("212") // pink
	colorSuccess   = lipgloss.Color("78")  // green
	colorText      = lipgloss.Color("255")
	colorPanel     = lipgloss.Color("236")
)

// TitleStyle renders the app name in the header.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// InputStyle frames the query input.
var InputStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorSecondary).
	Padding(0, 1)

// InputFocusedStyle frames the query input while it has focus.
var InputFocusedStyle = InputStyle.
	BorderForeground(colorPrimary)

// TriggerStyle renders the search control when it can be used.
var TriggerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText).
	Background(colorPrimary).
	Padding(0, 2)

// TriggerDisabledStyle renders the search control while a request is outstanding.
var TriggerDisabledStyle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Background(colorPanel).
	Padding(0, 2)

// SpinnerStyle colors the busy spinner.
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(colorHighlight)

// SectionTitle renders "Search Results" and "Recommended For You".
var SectionTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// SectionCount renders the item count beside a section title.
var SectionCount = lipgloss.NewStyle().
	Foreground(colorSecondary)

// SelectedItem highlights the card under the cursor.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem renders a card that is not under the cursor.
var NormalItem = lipgloss.NewStyle().
	Foreground(colorText).
	Padding(0, 1)

// MetaItem renders category, color and image locator.
var MetaItem = lipgloss.NewStyle().
	Foreground(colorSecondary)

// FallbackImage marks an image locator replaced by the fallback.
var FallbackImage = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)

// RankBadge renders the "#n" badge on recommendation cards.
var RankBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(colorPanel).
	Bold(true).
	Padding(0, 1).
	MarginRight(1)

// SourceMarker marks the result the recommendations were fetched for.
var SourceMarker = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// DetailLine renders the optional product attributes under the cursor.
var DetailLine = lipgloss.NewStyle().
	Foreground(colorMuted).
	PaddingLeft(4)

// StatusBar is the bottom bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(colorText).
	Background(colorPanel).
	Padding(0, 1)

// StatusBarKey renders key names in the status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText renders key descriptions in the status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle renders the dismissible error line.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle renders placeholder text for empty screens.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// DebugPanel frames the debug overlay. Changing its border or padding
// changes debugPanelChrome.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle renders headings inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
