package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c := NewClient("test-key", 5*time.Second,
		WithBaseURL(server.URL),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	)
	return c, server
}

func TestEndpointDispatch(t *testing.T) {
	c := NewClient("k", time.Second, WithBaseURL("https://api.example.com/3"))

	tests := []struct {
		name string
		term string
		want string
	}{
		{"empty term discovers", "", "https://api.example.com/3/discover/movie?sort_by=popularity.desc&include_adult=false&page=1"},
		{"whitespace term discovers", "   ", "https://api.example.com/3/discover/movie?sort_by=popularity.desc&include_adult=false&page=1"},
		{"plain term searches", "batman", "https://api.example.com/3/search/movie?query=batman&include_adult=false"},
		{"space is %20", "the matrix", "https://api.example.com/3/search/movie?query=the%20matrix&include_adult=false"},
		{"reserved chars encoded", "a&b=c?/+", "https://api.example.com/3/search/movie?query=a%26b%3Dc%3F%2F%2B&include_adult=false"},
		{"unicode encoded", "amélie", "https://api.example.com/3/search/movie?query=am%C3%A9lie&include_adult=false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.endpoint(tt.term); got != tt.want {
				t.Errorf("endpoint(%q) = %q, want %q", tt.term, got, tt.want)
			}
		})
	}
}

func TestMoviesDiscover(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("sort_by"); got != "popularity.desc" {
			t.Errorf("sort_by = %q", got)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected authorization: %s", auth)
		}
		if accept := r.Header.Get("accept"); accept != "application/json" {
			t.Errorf("unexpected accept: %s", accept)
		}
		fmt.Fprint(w, `{"page":1,"results":[{"id":1,"title":"Dune","poster_path":"/d.jpg","vote_average":8.1,"release_date":"2021-09-15","original_language":"en"},{"id":2,"title":"No Poster","poster_path":null}]}`)
	})

	movies, err := c.Movies(context.Background(), "")
	if err != nil {
		t.Fatalf("Movies() error = %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("got %d movies, want 2", len(movies))
	}
	if movies[0].Title != "Dune" || movies[0].VoteAverage != 8.1 {
		t.Errorf("unexpected first movie: %+v", movies[0])
	}
	if movies[1].HasPoster() {
		t.Error("null poster_path should decode to no poster")
	}
}

func TestMoviesSearchEncodesTerm(t *testing.T) {
	var rawQuery atomic.Value
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		rawQuery.Store(r.URL.RawQuery)
		if got := r.URL.Query().Get("query"); got != "fast & furious" {
			t.Errorf("decoded query = %q", got)
		}
		fmt.Fprint(w, `{"results":[]}`)
	})

	movies, err := c.Movies(context.Background(), "fast & furious")
	if err != nil {
		t.Fatalf("Movies() error = %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("got %d movies, want 0", len(movies))
	}
	if q := rawQuery.Load().(string); !strings.HasPrefix(q, "query=fast%20%26%20furious") {
		t.Errorf("raw query = %q, want percent-encoded term", q)
	}
}

func TestMoviesMissingResultsIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"page":1}`)
	})

	movies, err := c.Movies(context.Background(), "x")
	if err != nil {
		t.Fatalf("Movies() error = %v", err)
	}
	if movies == nil || len(movies) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", movies)
	}
}

func TestMoviesNon2xx(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"status_message":"nope"}`, code)
			})

			movies, err := c.Movies(context.Background(), "alien")
			if err == nil {
				t.Fatal("expected error")
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error %v is not a *StatusError", err)
			}
			if se.Code != code {
				t.Errorf("Code = %d, want %d", se.Code, code)
			}
			if movies != nil {
				t.Errorf("movies = %v, want nil", movies)
			}
		})
	}
}

func TestMoviesMalformedJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[`)
	})

	if _, err := c.Movies(context.Background(), "x"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMoviesMissingKey(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := NewClient("  ", time.Second, WithBaseURL(server.URL))
	if c.Available() {
		t.Error("Available() = true for blank key")
	}
	_, err := c.Movies(context.Background(), "")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
	if hits.Load() != 0 {
		t.Error("no request should be sent without a key")
	}
}

func TestMoviesCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Movies(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 8; i++ {
		_, _ = c.Movies(context.Background(), "x")
	}
	if got := hits.Load(); got != 5 {
		t.Errorf("server saw %d requests, want 5 before the breaker opened", got)
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 8; i++ {
		_, _ = c.Movies(context.Background(), "x")
	}
	if got := hits.Load(); got != 8 {
		t.Errorf("server saw %d requests, want all 8", got)
	}
}
