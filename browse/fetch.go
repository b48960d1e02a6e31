package browse

import (
	"context"

	"github.com/s0up4200/streamify/tmdb"
)

// Fetch issues exactly one catalog call for q and applies the rating threshold
// to the returned page. The input page from the API is not modified.
func Fetch(ctx context.Context, api tmdb.API, q Query, page int) (*tmdb.MoviePage, error) {
	var (
		result *tmdb.MoviePage
		err    error
	)

	switch q.Operation() {
	case tmdb.OpSearch:
		result, err = api.SearchMovies(ctx, q.SearchTerm(), page)
	case tmdb.OpByGenre:
		result, err = api.MoviesByGenre(ctx, q.GenreID, page)
	default:
		result, err = api.PopularMovies(ctx, page)
	}
	if err != nil {
		return nil, err
	}

	filtered := *result
	filtered.Results = FilterByRating(result.Results, q.MinRating)
	return &filtered, nil
}

// FilterByRating keeps the movies rated at or above minRating, in their original order
func FilterByRating(movies []tmdb.Movie, minRating int) []tmdb.Movie {
	out := make([]tmdb.Movie, 0, len(movies))
	if minRating == AllRatings {
		return append(out, movies...)
	}

	threshold := float64(minRating)
	for _, m := range movies {
		if m.VoteAverage >= threshold {
			out = append(out, m)
		}
	}
	return out
}
