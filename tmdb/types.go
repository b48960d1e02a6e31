package tmdb

import (
	"strconv"
	"strings"
)

// Movie represents a movie entry as returned by the TMDB list endpoints
type Movie struct {
	ID               int64   `json:"id" yaml:"id"`
	Title            string  `json:"title" yaml:"title"`
	OriginalTitle    string  `json:"original_title,omitempty" yaml:"original_title,omitempty"`
	PosterPath       string  `json:"poster_path" yaml:"poster_path"`
	BackdropPath     string  `json:"backdrop_path,omitempty" yaml:"backdrop_path,omitempty"`
	VoteAverage      float64 `json:"vote_average" yaml:"vote_average"`
	VoteCount        int     `json:"vote_count,omitempty" yaml:"vote_count,omitempty"`
	Popularity       float64 `json:"popularity,omitempty" yaml:"popularity,omitempty"`
	ReleaseDate      string  `json:"release_date" yaml:"release_date"`
	Overview         string  `json:"overview" yaml:"overview"`
	GenreIDs         []int   `json:"genre_ids" yaml:"genre_ids"`
	OriginalLanguage string  `json:"original_language,omitempty" yaml:"original_language,omitempty"`
	Adult            bool    `json:"adult,omitempty" yaml:"adult,omitempty"`
}

// HasPoster reports whether the catalog supplied a poster path
func (m *Movie) HasPoster() bool {
	return m.PosterPath != ""
}

// HasGenre checks if the movie is tagged with the given genre
func (m *Movie) HasGenre(id int) bool {
	for _, g := range m.GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}

// MoviePage is one page of movie results
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasMorePages checks if there are more pages to fetch
func (p *MoviePage) HasMorePages() bool {
	return p.Page < p.TotalPages
}

// Genre represents a movie genre
type Genre struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// genreListResponse is the envelope of the genre list endpoint
type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// GenreNames maps genre ids to display names
func GenreNames(genres []Genre) map[int]string {
	names := make(map[int]string, len(genres))
	for _, g := range genres {
		names[g.ID] = g.Name
	}
	return names
}

// FindGenre resolves a genre by numeric id or case-insensitive name
func FindGenre(genres []Genre, idOrName string) (Genre, bool) {
	idOrName = strings.TrimSpace(idOrName)
	if id, err := strconv.Atoi(idOrName); err == nil {
		for _, g := range genres {
			if g.ID == id {
				return g, true
			}
		}
		return Genre{}, false
	}

	for _, g := range genres {
		if strings.EqualFold(g.Name, idOrName) {
			return g, true
		}
	}
	return Genre{}, false
}
