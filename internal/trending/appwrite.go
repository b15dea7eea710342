package trending

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// AppwriteConfig locates a collection in an Appwrite database.
type AppwriteConfig struct {
	Endpoint     string // e.g. https://cloud.appwrite.io/v1
	ProjectID    string
	APIKey       string
	DatabaseID   string
	CollectionID string
	Timeout      time.Duration
}

// AppwriteStore keeps entries as documents in an Appwrite collection with
// attributes searchTerm, count, movie_id, title and poster_url.
//
// Increment is list-then-write, so two clients racing on the same new term
// may both create a document. The service orders concurrent writes.
type AppwriteStore struct {
	cfg    AppwriteConfig
	base   string
	client *http.Client
}

// document is the wire form of an entry.
type document struct {
	ID         string `json:"$id,omitempty"`
	SearchTerm string `json:"searchTerm"`
	Count      int    `json:"count"`
	MovieID    int64  `json:"movie_id"`
	Title      string `json:"title,omitempty"`
	PosterURL  string `json:"poster_url,omitempty"`
}

func (d document) entry() Entry {
	return Entry{
		ID:         d.ID,
		SearchTerm: d.SearchTerm,
		MovieID:    d.MovieID,
		MovieTitle: d.Title,
		PosterURL:  d.PosterURL,
		Count:      d.Count,
	}
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

// appwriteQuery is one element of the queries[] parameter.
type appwriteQuery struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// APIError is a non-2xx response from Appwrite.
type APIError struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("appwrite: %d %s: %s", e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("appwrite: status %d", e.Code)
}

// NewAppwriteStore validates cfg and returns a store. No request is made.
func NewAppwriteStore(cfg AppwriteConfig) (*AppwriteStore, error) {
	if cfg.Endpoint == "" || cfg.ProjectID == "" || cfg.DatabaseID == "" || cfg.CollectionID == "" {
		return nil, fmt.Errorf("appwrite: endpoint, project, database and collection are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	base := fmt.Sprintf("%s/databases/%s/collections/%s/documents",
		strings.TrimRight(cfg.Endpoint, "/"),
		url.PathEscape(cfg.DatabaseID),
		url.PathEscape(cfg.CollectionID))
	return &AppwriteStore{
		cfg:    cfg,
		base:   base,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Increment finds the document for seed.SearchTerm and bumps its count, or
// creates it with count 1.
func (s *AppwriteStore) Increment(ctx context.Context, seed Entry) (Entry, error) {
	docs, err := s.list(ctx,
		appwriteQuery{Method: "equal", Attribute: "searchTerm", Values: []any{seed.SearchTerm}},
		appwriteQuery{Method: "limit", Values: []any{1}},
	)
	if err != nil {
		return Entry{}, err
	}

	if len(docs) > 0 {
		doc := docs[0]
		var updated document
		body := map[string]any{"data": map[string]any{"count": doc.Count + 1}}
		if err := s.do(ctx, http.MethodPatch, s.base+"/"+url.PathEscape(doc.ID), body, &updated); err != nil {
			return Entry{}, fmt.Errorf("update document %s: %w", doc.ID, err)
		}
		return updated.entry(), nil
	}

	var created document
	body := map[string]any{
		"documentId": uuid.NewString(),
		"data": document{
			SearchTerm: seed.SearchTerm,
			Count:      1,
			MovieID:    seed.MovieID,
			Title:      seed.MovieTitle,
			PosterURL:  seed.PosterURL,
		},
	}
	if err := s.do(ctx, http.MethodPost, s.base, body, &created); err != nil {
		return Entry{}, fmt.Errorf("create document: %w", err)
	}
	return created.entry(), nil
}

// Top returns up to n entries by count descending.
func (s *AppwriteStore) Top(ctx context.Context, n int) ([]Entry, error) {
	docs, err := s.list(ctx,
		appwriteQuery{Method: "orderDesc", Attribute: "count"},
		appwriteQuery{Method: "limit", Values: []any{n}},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.entry())
	}
	// The service only orders by count.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].SearchTerm < entries[j].SearchTerm
	})
	return entries, nil
}

// Close is a no-op; the store holds no connections of its own.
func (s *AppwriteStore) Close() error {
	return nil
}

func (s *AppwriteStore) list(ctx context.Context, queries ...appwriteQuery) ([]document, error) {
	params := url.Values{}
	for _, q := range queries {
		raw, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("encode query: %w", err)
		}
		params.Add("queries[]", string(raw))
	}

	var out documentList
	if err := s.do(ctx, http.MethodGet, s.base+"?"+params.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out.Documents, nil
}

func (s *AppwriteStore) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", s.cfg.ProjectID)
	if s.cfg.APIKey != "" {
		req.Header.Set("X-Appwrite-Key", s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
