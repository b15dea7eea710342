package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/cinescope/internal/tmdb"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorText      = lipgloss.Color("255")
	colorError     = lipgloss.Color("196")
)

// Rating badge colors by tier.
var tierColors = map[tmdb.RatingTier]lipgloss.Color{
	tmdb.TierGreat: lipgloss.Color("#22c55e"),
	tmdb.TierGood:  lipgloss.Color("#fbbf24"),
	tmdb.TierFair:  lipgloss.Color("#f97316"),
	tmdb.TierLow:   lipgloss.Color("#e53e3e"),
}

// AppTitle style for the header line.
var AppTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// Tagline style for the text next to the title.
var Tagline = lipgloss.NewStyle().
	Foreground(colorSecondary)

// SearchBox wraps the text input.
var SearchBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// QuickSearch style for suggestion chips.
var QuickSearch = lipgloss.NewStyle().
	Foreground(colorText).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// SectionHeader style for "Popular Movies", trending and search headings.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// SectionNote style for the right-hand note of a section header.
var SectionNote = lipgloss.NewStyle().
	Foreground(colorSecondary)

// TrendingRank style for leaderboard positions.
var TrendingRank = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary).
	Width(4).
	Align(lipgloss.Right).
	PaddingRight(1)

// Card style for an unselected movie card.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// SelectedCard style for the card under the cursor.
var SelectedCard = Card.
	BorderForeground(colorHighlight)

// CardTitle style for movie titles.
var CardTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText)

// CardMeta style for year and language.
var CardMeta = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Panel style for the loading, error and empty-results panels.
var Panel = lipgloss.NewStyle().
	Padding(1, 2)

// ErrorTitle style for the error panel heading.
var ErrorTitle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true)

// EmptyTitle style for the empty-results heading.
var EmptyTitle = lipgloss.NewStyle().
	Foreground(colorText).
	Bold(true)

// HintStyle for dim hint text.
var HintStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// Modal style for the movie details dialog.
var Modal = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(colorText).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// DebugPanel style for the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for section titles inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

func ratingStyle(t tmdb.RatingTier) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(tierColors[t])
}
