// Package trending counts searches per normalized term and serves the
// leaderboard of the most searched terms.
//
// The Tracker holds the policy (normalization, defaults, truncation); a
// Store does the increment-or-create. Two stores exist: SQLiteStore for a
// local file and AppwriteStore for the hosted document database.
package trending

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/cinescope/internal/logging"
	"github.com/abelbrown/cinescope/internal/otel"
	"github.com/abelbrown/cinescope/internal/tmdb"
)

// DefaultTopN is the leaderboard size when ListTop gets n <= 0.
const DefaultTopN = 8

// ErrEmptyTerm is returned when a search term normalizes to nothing.
var ErrEmptyTerm = errors.New("trending: empty search term")

// Entry is one leaderboard row.
type Entry struct {
	ID         string `json:"id"`
	SearchTerm string `json:"search_term"`
	MovieID    int64  `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
	PosterURL  string `json:"poster_url,omitempty"`
	Count      int    `json:"count"`
}

// Label is the text shown for the entry: the exemplar title, or the term.
func (e Entry) Label() string {
	if e.MovieTitle != "" {
		return e.MovieTitle
	}
	return e.SearchTerm
}

// SearchesLabel renders the count, e.g. "1 search" or "1,204 searches".
func (e Entry) SearchesLabel() string {
	if e.Count == 1 {
		return "1 search"
	}
	return humanize.Comma(int64(e.Count)) + " searches"
}

// Store persists entries keyed by normalized search term.
type Store interface {
	// Increment adds one to the entry for seed.SearchTerm, creating it from
	// seed with count 1 when absent. It returns the stored entry.
	Increment(ctx context.Context, seed Entry) (Entry, error)
	// Top returns up to n entries by count descending, ties by term.
	Top(ctx context.Context, n int) ([]Entry, error)
	Close() error
}

// Normalize trims, collapses inner whitespace and lowercases a term so
// "The  Matrix " and "the matrix" count together.
func Normalize(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// Tracker records searches into a Store.
type Tracker struct {
	store  Store
	events *otel.Logger
}

// NewTracker creates a Tracker. events may be nil.
func NewTracker(store Store, events *otel.Logger) *Tracker {
	return &Tracker{store: store, events: events}
}

// RecordSearch counts one search for term, using exemplar as the movie
// shown for the term when the entry is first created.
func (t *Tracker) RecordSearch(ctx context.Context, term string, exemplar tmdb.Movie) (Entry, error) {
	norm := Normalize(term)
	if norm == "" {
		return Entry{}, ErrEmptyTerm
	}

	e, err := t.store.Increment(ctx, Entry{
		SearchTerm: norm,
		MovieID:    exemplar.ID,
		MovieTitle: exemplar.Title,
		PosterURL:  exemplar.PosterURL(),
		Count:      1,
	})
	if err != nil {
		logging.Warn("trending update failed", "term", norm, "err", err)
		t.events.Error(otel.KindTrendingError, "trending", err)
		return Entry{}, fmt.Errorf("record search %q: %w", norm, err)
	}

	t.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindTrendingRecord, Comp: "trending", Query: norm, Count: e.Count})
	return e, nil
}

// ListTop returns at most n entries, most searched first. n <= 0 means
// DefaultTopN.
func (t *Tracker) ListTop(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	entries, err := t.store.Top(ctx, n)
	if err != nil {
		logging.Warn("trending load failed", "err", err)
		t.events.Error(otel.KindTrendingError, "trending", err)
		return nil, fmt.Errorf("list trending: %w", err)
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	t.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindTrendingLoad, Comp: "trending", Count: len(entries)})
	return entries, nil
}

// Close closes the underlying store.
func (t *Tracker) Close() error {
	return t.store.Close()
}
