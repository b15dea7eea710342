package query

import (
	"fmt"
	"strings"

	"github.com/abelbrown/cinescope/internal/tmdb"
)

// View is which of the mutually exclusive movie panels to show.
type View int

const (
	ViewLoading View = iota
	ViewError
	ViewEmpty
	ViewGrid
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	case ViewGrid:
		return "grid"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// State is the query state owned by the UI model. Not safe for concurrent
// use; the Bubble Tea update loop is its only writer.
type State struct {
	Raw       string // search box contents
	Debounced string // last settled value, the one that was fetched
	Movies    []tmdb.Movie
	Loading   bool
	Err       string
	Notice    string
	Seq       uint64 // latest fetch generation
	Term      string // term of the latest fetch

	debounceID uint64
	loaded     bool // at least one fetch has been applied
}

// Type records new search box contents and returns the debounce id the
// pending timer must carry.
func (s *State) Type(raw string) uint64 {
	s.Raw = raw
	s.debounceID++
	return s.debounceID
}

// Settle is called when a debounce timer fires. It returns the term to
// fetch, or ok=false when the timer was superseded by a later keystroke or
// the text is unchanged since the last fetch.
func (s *State) Settle(id uint64) (term string, ok bool) {
	if id != s.debounceID || s.Raw == s.Debounced {
		return "", false
	}
	s.Debounced = s.Raw
	return s.Debounced, true
}

// Begin starts a fetch for term and returns its generation.
func (s *State) Begin(term string) uint64 {
	s.Seq++
	s.Term = term
	s.Loading = true
	s.Err = ""
	s.Notice = ""
	return s.Seq
}

// Retry restarts the latest fetch.
func (s *State) Retry() (term string, seq uint64) {
	term = s.Term
	return term, s.Begin(term)
}

// Apply stores r unless a newer fetch has started since r was requested.
// It reports whether r was applied.
func (s *State) Apply(r Result) bool {
	if r.Seq != s.Seq {
		return false
	}
	s.Loading = false
	s.loaded = true
	s.Movies = r.Movies
	s.Err = r.Err
	s.Notice = r.Notice
	return true
}

// Loaded reports whether any fetch has completed.
func (s State) Loaded() bool {
	return s.loaded
}

// View picks the movie panel. The empty panel is never shown before the
// first fetch completes.
func (s State) View() View {
	switch {
	case s.Loading:
		return ViewLoading
	case s.Err != "":
		return ViewError
	case len(s.Movies) == 0 && !s.loaded:
		return ViewLoading
	case len(s.Movies) == 0:
		return ViewEmpty
	default:
		return ViewGrid
	}
}

// Heading is the movies section title for the current search box contents.
func (s State) Heading() string {
	if strings.TrimSpace(s.Raw) == "" {
		return "Popular Movies"
	}
	return fmt.Sprintf("Search Results for %q", s.Raw)
}
