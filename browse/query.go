package browse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/s0up4200/streamify/tmdb"
)

const (
	// AllGenres selects no concrete genre
	AllGenres = 0
	// AllRatings selects no rating threshold
	AllRatings = 0

	// MaxRating is the top of the TMDB vote scale
	MaxRating = 10

	allValue = "all"
)

// Query is the triple of user inputs that drives what is fetched and filtered.
// Any combination is legal; Operation resolves which input takes effect.
type Query struct {
	Text      string `json:"text"`
	GenreID   int    `json:"genre"`
	MinRating int    `json:"rating"`
}

// IsDefault reports whether every input is at its empty value.
// Whitespace-only text is not empty here, only the raw string counts.
func (q Query) IsDefault() bool {
	return q.Text == "" && q.GenreID == AllGenres && q.MinRating == AllRatings
}

// SearchTerm returns the search text with surrounding whitespace removed
func (q Query) SearchTerm() string {
	return strings.TrimSpace(q.Text)
}

// Operation selects the catalog call for this query.
// Search text wins over genre, genre wins over the popular list.
func (q Query) Operation() tmdb.Op {
	switch {
	case q.SearchTerm() != "":
		return tmdb.OpSearch
	case q.GenreID != AllGenres:
		return tmdb.OpByGenre
	default:
		return tmdb.OpPopular
	}
}

func (q Query) String() string {
	return fmt.Sprintf("text=%q genre=%s rating=%s", q.Text, FormatGenre(q.GenreID), FormatRating(q.MinRating))
}

// ParseGenre accepts "all" (or empty) and positive genre ids
func ParseGenre(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, allValue) {
		return AllGenres, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGenre, s)
	}
	return id, nil
}

// ParseRating accepts "all" (or empty) and integer thresholds from 0 to 10
func ParseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, allValue) {
		return AllRatings, nil
	}
	r, err := strconv.Atoi(s)
	if err != nil || r < 0 || r > MaxRating {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
	return r, nil
}

// FormatGenre renders a genre selection the way ParseGenre reads it
func FormatGenre(id int) string {
	if id == AllGenres {
		return allValue
	}
	return strconv.Itoa(id)
}

// FormatRating renders a rating selection the way ParseRating reads it
func FormatRating(r int) string {
	if r == AllRatings {
		return allValue
	}
	return strconv.Itoa(r)
}
