// Package query owns the movie query policy: which endpoint a term maps to,
// how results are filtered, and how failures turn into user-facing text.
//
// Debouncing and generation stamps live in State; the Bubble Tea model in
// internal/ui drives both from its single update goroutine.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/cinescope/internal/logging"
	"github.com/abelbrown/cinescope/internal/otel"
	"github.com/abelbrown/cinescope/internal/tmdb"
)

// DefaultDebounce is how long typing must pause before a fetch is issued.
const DefaultDebounce = 500 * time.Millisecond

// MsgLoadFailed is the only error text users ever see for a failed fetch.
const MsgLoadFailed = "Unable to load movies. Please check your connection and try again."

// MsgNoMovies is the empty-result notice for discovery.
const MsgNoMovies = "No movies available"

// NoResultsMessage is the empty-result notice for a search term.
func NoResultsMessage(term string) string {
	return fmt.Sprintf("No movies found for %q", term)
}

// Fetcher returns movies for a term. An empty term means discovery.
// *tmdb.Client satisfies it.
type Fetcher interface {
	Movies(ctx context.Context, term string) ([]tmdb.Movie, error)
}

// Result is the outcome of one fetch, stamped with the generation that
// requested it.
type Result struct {
	Seq    uint64
	Term   string
	Movies []tmdb.Movie
	Err    string // user-facing; empty on success
	Cause  error  // underlying error, for logs only
	Notice string // set when the fetch succeeded with zero movies
	// Record is the exemplar movie for a trending write. Only set for a
	// non-empty term with at least one movie.
	Record *tmdb.Movie
	Dur    time.Duration
}

// Failed reports whether the fetch failed.
func (r Result) Failed() bool {
	return r.Err != ""
}

// Controller runs fetches. Safe for concurrent use.
type Controller struct {
	fetcher       Fetcher
	requirePoster bool
	events        *otel.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRequirePoster toggles dropping movies without a poster. On by default.
func WithRequirePoster(on bool) Option {
	return func(c *Controller) {
		c.requirePoster = on
	}
}

// WithEvents emits search events to l.
func WithEvents(l *otel.Logger) Option {
	return func(c *Controller) {
		c.events = l
	}
}

// NewController creates a Controller backed by f.
func NewController(f Fetcher, opts ...Option) *Controller {
	c := &Controller{fetcher: f, requirePoster: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch loads movies for term. It never returns an error: failures are
// folded into Result.Err so the caller can render them directly.
func (c *Controller) Fetch(ctx context.Context, seq uint64, term string) Result {
	term = strings.TrimSpace(term)
	endpoint := "search"
	if term == "" {
		endpoint = "discover"
	}
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "query", Seq: seq, Endpoint: endpoint, Query: term})

	start := time.Now()
	movies, err := c.fetcher.Movies(ctx, term)
	res := Result{Seq: seq, Term: term, Dur: time.Since(start)}

	if err != nil {
		logging.Error("movie fetch failed", "endpoint", endpoint, "term", term, "err", err)
		c.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindSearchError, Comp: "query", Seq: seq, Endpoint: endpoint, Query: term, Dur: res.Dur, Err: err.Error()})
		res.Movies = []tmdb.Movie{}
		res.Err = MsgLoadFailed
		res.Cause = err
		return res
	}

	if c.requirePoster {
		movies = tmdb.WithPosters(movies)
	}
	if len(movies) == 0 {
		res.Movies = []tmdb.Movie{}
		if term == "" {
			res.Notice = MsgNoMovies
		} else {
			res.Notice = NoResultsMessage(term)
		}
		c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchEmpty, Comp: "query", Seq: seq, Endpoint: endpoint, Query: term, Dur: res.Dur})
		return res
	}

	res.Movies = movies
	if term != "" {
		first := movies[0]
		res.Record = &first
	}
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: "query", Seq: seq, Endpoint: endpoint, Query: term, Dur: res.Dur, Count: len(movies)})
	return res
}
