package tmdb

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ImageBaseURL is the w500 poster base used for cards and trending entries.
const ImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Movie is a single record from a discover or search response.
// Optional fields are left at their zero value when TMDB omits them or sends null.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	PosterPath       string  `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
}

// HasPoster reports whether TMDB returned a poster image for the movie.
func (m Movie) HasPoster() bool {
	return strings.TrimSpace(m.PosterPath) != ""
}

// PosterURL returns the absolute w500 poster URL, or "" when there is no poster.
func (m Movie) PosterURL() string {
	return PosterURL(m.PosterPath)
}

// PosterURL joins a TMDB poster path onto ImageBaseURL.
func PosterURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return ImageBaseURL + path
}

// ReleaseYear returns the four digit release year, or "TBA".
func (m Movie) ReleaseYear() string {
	if m.ReleaseDate == "" {
		return "TBA"
	}
	t, err := time.Parse("2006-01-02", m.ReleaseDate)
	if err == nil {
		return fmt.Sprintf("%d", t.Year())
	}
	// Partial dates such as "2024" or "2024-05" keep their year.
	if len(m.ReleaseDate) >= 4 && isDigits(m.ReleaseDate[:4]) {
		return m.ReleaseDate[:4]
	}
	return "TBA"
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// LanguageName returns the English display name of the original language code.
func (m Movie) LanguageName() string {
	return LanguageName(m.OriginalLanguage)
}

// LanguageName maps an ISO 639-1 code to its English name. Codes that
// x/text cannot name (TMDB uses "xx" for "no language") come back upper-cased.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(code)
	}
	return name
}

// Rated reports whether the movie has a non-zero vote average.
func (m Movie) Rated() bool {
	return m.VoteAverage > 0
}

// RatingBadge is the short badge text: one decimal, or "N/A".
func (m Movie) RatingBadge() string {
	if !m.Rated() {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// RatingText is the long form used in card details: "7.4/10" or "Unrated".
func (m Movie) RatingText() string {
	if !m.Rated() {
		return "Unrated"
	}
	return fmt.Sprintf("%.1f/10", m.VoteAverage)
}

// RatingTier buckets a vote average for badge colouring.
type RatingTier int

const (
	TierLow RatingTier = iota
	TierFair
	TierGood
	TierGreat
)

// Tier returns the colour bucket for the movie's vote average.
func (m Movie) Tier() RatingTier {
	switch v := m.VoteAverage; {
	case v >= 8:
		return TierGreat
	case v >= 7:
		return TierGood
	case v >= 6:
		return TierFair
	default:
		return TierLow
	}
}

// WithPosters returns the movies that have a poster, preserving order.
// The input slice is not modified.
func WithPosters(movies []Movie) []Movie {
	out := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if m.HasPoster() {
			out = append(out, m)
		}
	}
	return out
}
