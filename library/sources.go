package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/s0up4200/streamify/overseerr"
	"github.com/s0up4200/streamify/radarr"
	"github.com/s0up4200/streamify/tautulli"
)

// RadarrLibrary is the subset of the Radarr client used for badges
type RadarrLibrary interface {
	Library(ctx context.Context) (map[int64]radarr.LibraryMovie, error)
}

// OverseerrRequests is the subset of the Overseerr client used for badges
type OverseerrRequests interface {
	GetMovieRequestsByTMDBID(ctx context.Context) (map[int64]overseerr.MediaRequest, error)
}

// WatchHistory is the subset of the Tautulli client used for badges
type WatchHistory interface {
	WatchStatusByTMDBID(ctx context.Context, minWatchPercent float64) (map[int64]tautulli.WatchStatus, error)
}

type radarrSource struct {
	client RadarrLibrary
}

// NewRadarrSource marks movies that are already in the Radarr library
func NewRadarrSource(client RadarrLibrary) Source {
	if client == nil {
		return nil
	}
	return &radarrSource{client: client}
}

func (s *radarrSource) Name() string { return "radarr" }

func (s *radarrSource) Annotate(ctx context.Context, badges Badges, mu *sync.Mutex) error {
	library, err := s.client.Library(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch library: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for id, badge := range badges {
		if movie, ok := library[id]; ok {
			badge.InLibrary = true
			badge.HasFile = movie.HasFile
		}
	}
	return nil
}

type overseerrSource struct {
	client OverseerrRequests
}

// NewOverseerrSource marks movies that have an Overseerr request
func NewOverseerrSource(client OverseerrRequests) Source {
	if client == nil {
		return nil
	}
	return &overseerrSource{client: client}
}

func (s *overseerrSource) Name() string { return "overseerr" }

func (s *overseerrSource) Annotate(ctx context.Context, badges Badges, mu *sync.Mutex) error {
	requests, err := s.client.GetMovieRequestsByTMDBID(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch requests: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for id, badge := range badges {
		if req, ok := requests[id]; ok {
			badge.Requested = true
			badge.RequestStatus = req.Status.String()
			badge.RequestedBy = req.RequestedBy.GetDisplayName()
		}
	}
	return nil
}

type tautulliSource struct {
	client          WatchHistory
	minWatchPercent float64
}

// NewTautulliSource marks movies that appear in the Plex play history
func NewTautulliSource(client WatchHistory, minWatchPercent float64) Source {
	if client == nil {
		return nil
	}
	return &tautulliSource{client: client, minWatchPercent: minWatchPercent}
}

func (s *tautulliSource) Name() string { return "tautulli" }

func (s *tautulliSource) Annotate(ctx context.Context, badges Badges, mu *sync.Mutex) error {
	history, err := s.client.WatchStatusByTMDBID(ctx, s.minWatchPercent)
	if err != nil {
		return fmt.Errorf("failed to fetch watch history: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for id, badge := range badges {
		if status, ok := history[id]; ok {
			badge.Watched = status.Watched
			badge.WatchCount = status.WatchCount
		}
	}
	return nil
}
