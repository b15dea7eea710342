package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/abelbrown/cinescope/internal/query"
	"github.com/abelbrown/cinescope/internal/tmdb"
	"github.com/abelbrown/cinescope/internal/trending"
)

func sampleMovies(n int) []tmdb.Movie {
	out := make([]tmdb.Movie, n)
	for i := range out {
		out[i] = tmdb.Movie{
			ID:               int64(i + 1),
			Title:            "Movie " + string(rune('A'+i)),
			PosterPath:       "/p.jpg",
			VoteAverage:      7.3,
			ReleaseDate:      "2021-01-01",
			OriginalLanguage: "en",
		}
	}
	return out
}

func TestPrintResultGrid(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, query.Result{Term: "dune", Movies: sampleMovies(3), Dur: 1234 * time.Microsecond}, 2)

	out := buf.String()
	for _, want := range []string{`Search Results for "dune"`, "3 movies", "1. Movie A", "2021", "★ 7.3", "English", "... 1 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Movie C") {
		t.Errorf("limit not applied:\n%s", out)
	}
}

func TestPrintResultStates(t *testing.T) {
	tests := []struct {
		name string
		r    query.Result
		want string
	}{
		{"discover heading", query.Result{Movies: sampleMovies(1)}, "Popular Movies (1 movie"},
		{"error", query.Result{Term: "x", Err: query.MsgLoadFailed, Cause: errors.New("boom")}, "error: " + query.MsgLoadFailed},
		{"empty", query.Result{Term: "zzz", Notice: query.NoResultsMessage("zzz")}, query.NoResultsMessage("zzz")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.r, 10)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestWriteSearchJSON(t *testing.T) {
	var buf bytes.Buffer
	results := []query.Result{
		{Movies: sampleMovies(2), Dur: 5 * time.Millisecond},
		{Term: "nothing", Notice: "No movies found", Movies: []tmdb.Movie{}},
	}
	if err := writeSearchJSON(&buf, results, 1); err != nil {
		t.Fatalf("writeSearchJSON: %v", err)
	}

	var got []searchOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("got %d outputs, want 2", len(got))
	}
	if got[0].Endpoint != "discover" || got[0].DurMs != 5 || len(got[0].Movies) != 1 {
		t.Errorf("first output = %+v", got[0])
	}
	if m := got[0].Movies[0]; m.Year != "2021" || m.Language != "English" || m.Poster != "https://image.tmdb.org/t/p/w500/p.jpg" {
		t.Errorf("movie = %+v", m)
	}
	if got[1].Endpoint != "search" || got[1].Notice == "" || got[1].Movies == nil {
		t.Errorf("second output = %+v", got[1])
	}
}

func TestPrintTrending(t *testing.T) {
	var buf bytes.Buffer
	printTrending(&buf, nil)
	if !strings.Contains(buf.String(), "No searches yet") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	printTrending(&buf, []trending.Entry{
		{SearchTerm: "dune", MovieTitle: "Dune", Count: 1204},
		{SearchTerm: "heat", Count: 1},
	})
	out := buf.String()
	for _, want := range []string{"Most Searched Movies", "1. Dune", "1,204 searches", "(dune)", "2. heat", "1 search"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTrendingJSONUsesSnakeCase(t *testing.T) {
	var buf bytes.Buffer
	err := writeTrendingJSON(&buf, []trending.Entry{
		{ID: "a1", SearchTerm: "dune", MovieID: 438631, MovieTitle: "Dune", PosterURL: "https://image.tmdb.org/t/p/w500/d.jpg", Count: 3},
	})
	if err != nil {
		t.Fatalf("writeTrendingJSON: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	want := map[string]any{
		"id":          "a1",
		"search_term": "dune",
		"movie_id":    float64(438631),
		"movie_title": "Dune",
		"poster_url":  "https://image.tmdb.org/t/p/w500/d.jpg",
		"count":       float64(3),
	}
	for k, v := range want {
		if got[0][k] != v {
			t.Errorf("%s = %v, want %v", k, got[0][k], v)
		}
	}
	if _, ok := got[0]["SearchTerm"]; ok {
		t.Error("Go field names leaked into JSON")
	}

	buf.Reset()
	if err := writeTrendingJSON(&buf, nil); err != nil {
		t.Fatalf("writeTrendingJSON(nil): %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty leaderboard = %q, want []", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a long movie title", 10, "a long ..."},
		{"amélie poulain", 8, "améli..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "movie"); got != "1 movie" {
		t.Errorf("got %q", got)
	}
	if got := pluralize(0, "movie"); got != "0 movies" {
		t.Errorf("got %q", got)
	}
}
