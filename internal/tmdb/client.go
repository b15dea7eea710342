// Package tmdb is a small client for the two TMDB v3 endpoints CineScope uses:
// popularity-sorted discovery and term search.
//
// The client treats TMDB as an opaque data source: it returns the results
// array and a typed error for non-2xx responses, nothing more.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/abelbrown/cinescope/internal/logging"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// ErrMissingAPIKey is returned before any request is made when no key is set.
var ErrMissingAPIKey = errors.New("tmdb: api key not configured")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: failed to fetch movies: %d", e.Code)
}

// page is the envelope of discover and search responses.
type page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Client calls the TMDB API with a bearer token.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]Movie]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithLimiter replaces the default request limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a Client. TMDB allows roughly 50 requests per second per
// IP; the default limiter stays well below that.
func NewClient(apiKey string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker()
	return c
}

func newBreaker() *gobreaker.CircuitBreaker[[]Movie] {
	return gobreaker.NewCircuitBreaker[[]Movie](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Only transport errors and 5xx count against the breaker: a 401 or
		// 404 says nothing about TMDB's health.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Movies dispatches on the term: an empty (or all-space) term discovers
// popular movies, anything else searches.
func (c *Client) Movies(ctx context.Context, term string) ([]Movie, error) {
	return c.get(ctx, c.endpoint(term))
}

// Discover returns the first page of movies sorted by popularity.
func (c *Client) Discover(ctx context.Context) ([]Movie, error) {
	return c.get(ctx, c.endpoint(""))
}

// Search returns the first page of movies matching term.
func (c *Client) Search(ctx context.Context, term string) ([]Movie, error) {
	if strings.TrimSpace(term) == "" {
		return nil, errors.New("tmdb: empty search term")
	}
	return c.get(ctx, c.endpoint(term))
}

// endpoint builds the request URL for a term.
func (c *Client) endpoint(term string) string {
	if strings.TrimSpace(term) == "" {
		return c.baseURL + "/discover/movie?sort_by=popularity.desc&include_adult=false&page=1"
	}
	return c.baseURL + "/search/movie?query=" + encodeComponent(term) + "&include_adult=false"
}

// encodeComponent percent-encodes s for use as a single query value.
// Spaces become %20 rather than '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (c *Client) get(ctx context.Context, endpoint string) ([]Movie, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !c.Available() {
		return nil, ErrMissingAPIKey
	}
	return c.breaker.Execute(func() ([]Movie, error) {
		return c.do(ctx, endpoint)
	})
}

func (c *Client) do(ctx context.Context, endpoint string) ([]Movie, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tmdb: rate limiter wait failed: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("tmdb: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("tmdb: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: truncate(string(body), 200)}
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("tmdb: failed to parse response: %w", err)
	}
	if p.Results == nil {
		return []Movie{}, nil
	}
	return p.Results, nil
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
