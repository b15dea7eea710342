package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/cinescope/internal/logging"
	"github.com/abelbrown/cinescope/internal/query"
	"github.com/abelbrown/cinescope/internal/tmdb"
)

var (
	searchLimit    int
	searchRecord   bool
	searchJSON     bool
	searchParallel int
)

var searchCmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Search TMDB and print the results",
	Long: `Run one search per argument and print the matching movies.

Each term is searched concurrently. A search that returns movies is counted
on the trending leaderboard unless --record=false is given. Pass "" to list
popular movies instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "max movies to print per term (0 for all)")
	searchCmd.Flags().BoolVar(&searchRecord, "record", true, "count searches on the trending leaderboard")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	searchCmd.Flags().IntVar(&searchParallel, "parallel", 4, "max concurrent searches")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireTMDB(); err != nil {
		return err
	}
	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	results := make([]query.Result, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, searchParallel))
	for i, term := range args {
		g.Go(func() error {
			r := svc.controller.Fetch(ctx, uint64(i+1), term)
			results[i] = r
			if searchRecord && r.Record != nil {
				// Analytics failures never fail the search.
				if _, err := svc.tracker.RecordSearch(ctx, r.Term, *r.Record); err != nil {
					logging.Warn("record search", "term", r.Term, "err", err)
				}
			}
			return nil
		})
	}
	// Failures are carried per term in results.
	g.Wait()

	out := cmd.OutOrStdout()
	if searchJSON {
		return writeSearchJSON(out, results, searchLimit)
	}
	failed := 0
	for _, r := range results {
		printResult(out, r, searchLimit)
		if r.Failed() {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d searches failed", failed)
	}
	return nil
}

// searchOutput is the --json shape of one Result.
type searchOutput struct {
	Term     string        `json:"term"`
	Endpoint string        `json:"endpoint"`
	DurMs    int64         `json:"dur_ms"`
	Error    string        `json:"error,omitempty"`
	Notice   string        `json:"notice,omitempty"`
	Movies   []movieOutput `json:"movies"`
}

type movieOutput struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Year     string  `json:"year"`
	Rating   float64 `json:"rating"`
	Language string  `json:"language"`
	Poster   string  `json:"poster,omitempty"`
}

func writeSearchJSON(w io.Writer, results []query.Result, limit int) error {
	outs := make([]searchOutput, 0, len(results))
	for _, r := range results {
		o := searchOutput{
			Term:     r.Term,
			Endpoint: endpointName(r.Term),
			DurMs:    r.Dur.Milliseconds(),
			Error:    r.Err,
			Notice:   r.Notice,
			Movies:   []movieOutput{},
		}
		for _, m := range limitMovies(r, limit) {
			o.Movies = append(o.Movies, movieOutput{
				ID:       m.ID,
				Title:    m.Title,
				Year:     m.ReleaseYear(),
				Rating:   m.VoteAverage,
				Language: m.LanguageName(),
				Poster:   m.PosterURL(),
			})
		}
		outs = append(outs, o)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outs)
}

func printResult(w io.Writer, r query.Result, limit int) {
	heading := "Popular Movies"
	if r.Term != "" {
		heading = fmt.Sprintf("Search Results for %q", r.Term)
	}
	fmt.Fprintf(w, "%s (%s, %s)\n", heading, pluralize(len(r.Movies), "movie"), r.Dur.Round(time.Millisecond))

	switch {
	case r.Failed():
		fmt.Fprintf(w, "  error: %s\n", r.Err)
	case r.Notice != "":
		fmt.Fprintf(w, "  %s\n", r.Notice)
	default:
		for i, m := range limitMovies(r, limit) {
			fmt.Fprintf(w, "  %2d. %-40s %4s  ★ %-4s %s\n",
				i+1, truncate(m.Title, 40), m.ReleaseYear(), m.RatingBadge(), m.LanguageName())
		}
		if limit > 0 && len(r.Movies) > limit {
			fmt.Fprintf(w, "  ... %d more\n", len(r.Movies)-limit)
		}
	}
	fmt.Fprintln(w)
}

func limitMovies(r query.Result, limit int) []tmdb.Movie {
	if limit > 0 && len(r.Movies) > limit {
		return r.Movies[:limit]
	}
	return r.Movies
}

func endpointName(term string) string {
	if strings.TrimSpace(term) == "" {
		return "discover"
	}
	return "search"
}
