package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/cinescope/internal/query"
	"github.com/abelbrown/cinescope/internal/tmdb"
	"github.com/abelbrown/cinescope/internal/trending"
)

// cardWidth is the outer width of a movie card including its border.
const cardWidth = 30

// cardHeight is the outer height of a movie card: border plus two lines.
const cardHeight = 4

// gridColumns is how many cards fit side by side.
func gridColumns(width int) int {
	cols := width / cardWidth
	if cols < 1 {
		return 1
	}
	return cols
}

func renderHeader(width int) string {
	title := AppTitle.Render("CineScope")
	tag := Tagline.Render("Discover amazing movies, tailored just for you")
	return lipgloss.NewStyle().MaxWidth(width).Render(title + " " + tag)
}

// renderQuickSearches lists suggestion chips while the search box is empty.
func renderQuickSearches(raw string) string {
	if raw != "" {
		return ""
	}
	chips := make([]string, len(quickSearches))
	for i, term := range quickSearches {
		chips[i] = QuickSearch.Render(fmt.Sprintf("%d %s", i+1, term))
	}
	return HintStyle.Render(" Popular searches (alt+N): ") + strings.Join(chips, "")
}

// renderTrending renders the leaderboard. Empty when there are no entries.
func renderTrending(entries []trending.Entry, width int) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(SectionHeader.Render("🔥 Most Searched Movies"))
	b.WriteString(SectionNote.Render("  Based on user searches"))
	for i, e := range entries {
		label := truncateRunes(e.Label(), width-30)
		b.WriteString("\n")
		b.WriteString(TrendingRank.Render(fmt.Sprintf("%d", i+1)))
		b.WriteString(CardTitle.Render(label))
		b.WriteString(CardMeta.Render("  " + e.SearchesLabel()))
	}
	return b.String()
}

// renderMoviesHeader is the section heading plus the result counter.
func renderMoviesHeader(st *query.State, width int) string {
	heading := truncateRunes(st.Heading(), width-20)
	line := SectionHeader.Render(heading)
	if len(st.Movies) > 0 && st.View() == query.ViewGrid {
		line += SectionNote.Render(fmt.Sprintf("  %d movies found", len(st.Movies)))
	}
	return line
}

// renderMovies draws exactly one of the loading, error, empty or grid views.
func renderMovies(st *query.State, spin string, cursor, width, height int) string {
	switch st.View() {
	case query.ViewLoading:
		return Panel.Render(spin + " Loading amazing movies...")

	case query.ViewError:
		return Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
			ErrorTitle.Render("Oops! Something went wrong"),
			st.Err,
			"",
			HintStyle.Render("Press ctrl+r to try again"),
		))

	case query.ViewEmpty:
		lines := []string{EmptyTitle.Render("No movies found")}
		if st.Notice != "" {
			lines = append(lines, st.Notice)
		}
		lines = append(lines, HintStyle.Render("Try searching for a different movie or browse the trending list above."))
		return Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	return renderGrid(st.Movies, cursor, width, height)
}

// renderGrid lays cards out in rows, scrolled so the cursor row is visible.
func renderGrid(movies []tmdb.Movie, cursor, width, height int) string {
	cols := gridColumns(width)
	maxRows := height / cardHeight
	if maxRows < 1 {
		maxRows = 1
	}

	totalRows := (len(movies) + cols - 1) / cols
	offset := 0
	if cursorRow := cursor / cols; cursorRow >= maxRows {
		offset = cursorRow - maxRows + 1
	}

	var rows []string
	for r := offset; r < totalRows && r < offset+maxRows; r++ {
		var cards []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(movies) {
				break
			}
			cards = append(cards, renderCard(movies[i], i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCard renders one movie: title, then rating, year and language.
func renderCard(m tmdb.Movie, selected bool) string {
	inner := cardWidth - 4 // border and padding

	style := Card
	if selected {
		style = SelectedCard
	}

	title := CardTitle.Render(truncateRunes(m.Title, inner))
	badge := ratingStyle(m.Tier()).Render("★ " + m.RatingBadge())
	meta := CardMeta.Render(" • " + m.ReleaseYear() + " • " + truncateRunes(m.LanguageName(), 10))

	return style.Width(cardWidth - 2).Render(title + "\n" + badge + meta)
}

// renderModal renders the details dialog for m.
func renderModal(m tmdb.Movie, width int) string {
	w := width - 10
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}

	overview := m.Overview
	if strings.TrimSpace(overview) == "" {
		overview = "No overview available."
	}

	poster := m.PosterURL()
	if poster == "" {
		poster = "No poster"
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		CardTitle.Render(m.Title),
		ratingStyle(m.Tier()).Render("★ "+m.RatingText())+
			CardMeta.Render(" • "+m.ReleaseYear()+" • "+m.LanguageName()),
		"",
		DebugHeaderStyle.Render("Overview"),
		lipgloss.NewStyle().Width(w-4).Render(overview),
		"",
		HintStyle.Render("Poster: "+poster),
		HintStyle.Render("esc: close"),
	)
	return Modal.Width(w).Render(body)
}

// renderStatusBar shows the fetch status on the left and key help on the right.
func renderStatusBar(st *query.State, keyHints string, width int) string {
	var left string
	switch {
	case st.Loading:
		left = " Loading... "
	case st.Err != "":
		left = " Error "
	default:
		left = fmt.Sprintf(" %d movies ", len(st.Movies))
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

// truncateRunes shortens s to at most n runes, adding "…" when cut.
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
