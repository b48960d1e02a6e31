package overseerr

import (
	"context"
)

// API defines the interface for Overseerr operations
type API interface {
	// TestConnection verifies the client can connect to Overseerr
	TestConnection(ctx context.Context) error

	// GetMovieRequests retrieves all movie requests
	GetMovieRequests(ctx context.Context) ([]MediaRequest, error)

	// GetMovieRequestsByTMDBID indexes movie requests by TMDB id
	GetMovieRequestsByTMDBID(ctx context.Context) (map[int64]MediaRequest, error)

	// RequestMovie submits a new movie request
	RequestMovie(ctx context.Context, tmdbID int64) (*MediaRequest, error)
}

var _ API = (*Client)(nil)
