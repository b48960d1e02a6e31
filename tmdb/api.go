package tmdb

import (
	"context"
)

// API defines the catalog operations used by the discovery surfaces
type API interface {
	// PopularMovies lists the current popular movies
	PopularMovies(ctx context.Context, page int) (*MoviePage, error)

	// SearchMovies searches movies by title
	SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error)

	// MoviesByGenre lists movies tagged with the given genre
	MoviesByGenre(ctx context.Context, genreID int, page int) (*MoviePage, error)

	// Genres lists the movie genres known to the catalog
	Genres(ctx context.Context) ([]Genre, error)
}
