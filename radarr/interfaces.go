package radarr

import (
	"context"

	"golift.io/starr/radarr"
)

// RadarrAPI defines the subset of the starr Radarr client used here
type RadarrAPI interface {
	GetMovieContext(ctx context.Context, params *radarr.GetMovie) ([]*radarr.Movie, error)
	LookupContext(ctx context.Context, term string) ([]*radarr.Movie, error)
	AddMovieContext(ctx context.Context, movie *radarr.AddMovieInput) (*radarr.Movie, error)

	// Health check
	GetSystemStatusContext(ctx context.Context) (*radarr.SystemStatus, error)
}

var _ RadarrAPI = (*radarr.Radarr)(nil)
