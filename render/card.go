// Package render formats movies for the terminal and for machine-readable output.
package render

import (
	"fmt"

	"github.com/s0up4200/streamify/library"
	"github.com/s0up4200/streamify/tmdb"
)

const (
	// UnknownYear is shown when a movie has no usable release date
	UnknownYear = "N/A"
)

// Options controls how movies are presented
type Options struct {
	ShowDetails bool
	Images      *tmdb.ImageResolver
	Genres      map[int]string
	Badges      library.Badges
}

func (o Options) images() *tmdb.ImageResolver {
	if o.Images == nil {
		return tmdb.NewImageResolver("", "")
	}
	return o.Images
}

// Card is the presentation model of one movie
type Card struct {
	ID       int64          `json:"id" yaml:"id"`
	Title    string         `json:"title" yaml:"title"`
	Year     string         `json:"year" yaml:"year"`
	Rating   string         `json:"rating" yaml:"rating"`
	Poster   string         `json:"poster" yaml:"poster"`
	Overview string         `json:"overview" yaml:"overview"`
	Genres   []string       `json:"genres,omitempty" yaml:"genres,omitempty"`
	Library  *library.Badge `json:"library,omitempty" yaml:"library,omitempty"`
}

// Year derives the display year from the leading four digits of a release
// date, so "1999", "1999-03" and "1999-03-30" all give 1999.
func Year(releaseDate string) string {
	if len(releaseDate) < 4 {
		return UnknownYear
	}
	year := releaseDate[:4]
	for _, c := range year {
		if c < '0' || c > '9' {
			return UnknownYear
		}
	}
	return year
}

// Rating formats a vote average with one decimal place
func Rating(voteAverage float64) string {
	return fmt.Sprintf("%.1f", voteAverage)
}

// NewCard builds the card for one movie
func NewCard(m tmdb.Movie, opts Options) Card {
	card := Card{
		ID:       m.ID,
		Title:    m.Title,
		Year:     Year(m.ReleaseDate),
		Rating:   Rating(m.VoteAverage),
		Poster:   opts.images().PosterURL(m.PosterPath),
		Overview: m.Overview,
	}

	for _, id := range m.GenreIDs {
		if name, ok := opts.Genres[id]; ok {
			card.Genres = append(card.Genres, name)
		}
	}

	if b := opts.Badges.Get(m.ID); !b.Empty() {
		card.Library = b
	}
	return card
}

// NewCards builds cards for movies, preserving order
func NewCards(movies []tmdb.Movie, opts Options) []Card {
	cards := make([]Card, 0, len(movies))
	for _, m := range movies {
		cards = append(cards, NewCard(m, opts))
	}
	return cards
}

// BadgeLabels returns the short labels shown next to a title
func BadgeLabels(b *library.Badge) []string {
	if b.Empty() {
		return nil
	}
	var labels []string
	if b.InLibrary {
		if b.HasFile {
			labels = append(labels, "IN LIBRARY")
		} else {
			labels = append(labels, "IN LIBRARY: MISSING")
		}
	}
	if b.Requested {
		labels = append(labels, "REQUESTED: "+b.RequestStatus)
	}
	if b.Watched {
		labels = append(labels, "WATCHED")
	}
	return labels
}
