package trending

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps trending entries in a local SQLite file.
// Safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each connection to ":memory:" is its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trending (
		id TEXT PRIMARY KEY,
		search_term TEXT NOT NULL UNIQUE,
		count INTEGER NOT NULL DEFAULT 1,
		movie_id INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL DEFAULT '',
		poster_url TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trending_count ON trending(count DESC, search_term);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Increment upserts the entry in one statement, so concurrent writers never
// lose a count.
func (s *SQLiteStore) Increment(ctx context.Context, seed Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e Entry
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO trending (id, search_term, count, movie_id, title, poster_url)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT(search_term) DO UPDATE SET
			count = count + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, search_term, count, movie_id, title, poster_url
	`, uuid.NewString(), seed.SearchTerm, seed.MovieID, seed.MovieTitle, seed.PosterURL).
		Scan(&e.ID, &e.SearchTerm, &e.Count, &e.MovieID, &e.MovieTitle, &e.PosterURL)
	if err != nil {
		return Entry{}, fmt.Errorf("upsert %q: %w", seed.SearchTerm, err)
	}
	return e, nil
}

// Top returns up to n entries by count descending.
func (s *SQLiteStore) Top(ctx context.Context, n int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_term, count, movie_id, title, poster_url
		FROM trending
		ORDER BY count DESC, search_term ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query trending: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SearchTerm, &e.Count, &e.MovieID, &e.MovieTitle, &e.PosterURL); err != nil {
			return nil, fmt.Errorf("scan trending: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
