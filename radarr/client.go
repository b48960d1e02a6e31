package radarr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golift.io/starr"
	"golift.io/starr/radarr"
)

const defaultCacheTTL = 5 * time.Minute

var (
	// ErrAlreadyExists is returned when adding a movie that Radarr already has
	ErrAlreadyExists = errors.New("movie already exists in Radarr")
	// ErrNotFound is returned when Radarr cannot resolve a TMDB id
	ErrNotFound = errors.New("movie not found")
)

// LibraryMovie is the library state of one movie, keyed by TMDB id
type LibraryMovie struct {
	ID        int64
	Title     string
	Year      int
	HasFile   bool
	Monitored bool
}

// AddOptions controls how a movie is added
type AddOptions struct {
	QualityProfileID int64
	RootFolderPath   string
	Monitored        bool
	SearchForMovie   bool
}

// Client wraps the starr Radarr client with a cached TMDB id index
type Client struct {
	client   RadarrAPI
	logger   zerolog.Logger
	cacheTTL time.Duration

	mu        sync.Mutex
	library   map[int64]LibraryMovie
	fetchedAt time.Time
}

// NewClient creates a new Radarr client
func NewClient(url, apiKey string, logger zerolog.Logger) (*Client, error) {
	if url == "" || apiKey == "" {
		return nil, fmt.Errorf("radarr URL and API key are required")
	}
	config := starr.New(apiKey, url, 30*time.Second)
	return NewClientWithAPI(radarr.New(config), logger), nil
}

// NewClientWithAPI wraps an existing API implementation
func NewClientWithAPI(api RadarrAPI, logger zerolog.Logger) *Client {
	return &Client{
		client:   api,
		logger:   logger,
		cacheTTL: defaultCacheTTL,
	}
}

// TestConnection checks that Radarr is reachable
func (c *Client) TestConnection(ctx context.Context) error {
	status, err := c.client.GetSystemStatusContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to Radarr: %w", err)
	}
	c.logger.Debug().Str("version", status.Version).Msg("Connected to Radarr")
	return nil
}

// Library returns the library index, refreshing it when older than the cache TTL
func (c *Client) Library(ctx context.Context) (map[int64]LibraryMovie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.library != nil && time.Since(c.fetchedAt) < c.cacheTTL {
		return c.library, nil
	}

	movies, err := c.client.GetMovieContext(ctx, &radarr.GetMovie{})
	if err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}

	library := make(map[int64]LibraryMovie, len(movies))
	for _, m := range movies {
		if m.TmdbID == 0 {
			continue
		}
		library[m.TmdbID] = LibraryMovie{
			ID:        m.ID,
			Title:     m.Title,
			Year:      m.Year,
			HasFile:   m.HasFile,
			Monitored: m.Monitored,
		}
	}

	c.library = library
	c.fetchedAt = time.Now()
	c.logger.Debug().Msgf("Retrieved %d movies from Radarr", len(library))
	return library, nil
}

// InvalidateCache forces the next Library call to hit Radarr
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	c.library = nil
	c.mu.Unlock()
}

// AddMovie looks up tmdbID in Radarr and adds it to the library
func (c *Client) AddMovie(ctx context.Context, tmdbID int64, opts AddOptions) (*radarr.Movie, error) {
	library, err := c.Library(ctx)
	if err != nil {
		return nil, err
	}
	if existing, ok := library[tmdbID]; ok {
		return nil, fmt.Errorf("%w: %s (%d)", ErrAlreadyExists, existing.Title, existing.Year)
	}

	results, err := c.client.LookupContext(ctx, "tmdb:"+strconv.FormatInt(tmdbID, 10))
	if err != nil {
		return nil, fmt.Errorf("failed to look up TMDB id %d: %w", tmdbID, err)
	}

	var found *radarr.Movie
	for _, m := range results {
		if m.TmdbID == tmdbID {
			found = m
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: TMDB id %d", ErrNotFound, tmdbID)
	}

	added, err := c.client.AddMovieContext(ctx, &radarr.AddMovieInput{
		Title:            found.Title,
		TitleSlug:        found.TitleSlug,
		Year:             found.Year,
		TmdbID:           tmdbID,
		QualityProfileID: opts.QualityProfileID,
		RootFolderPath:   opts.RootFolderPath,
		Monitored:        opts.Monitored,
		AddOptions: &radarr.AddMovieOptions{
			SearchForMovie: opts.SearchForMovie,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add movie %s: %w", found.Title, err)
	}

	c.InvalidateCache()
	c.logger.Info().
		Int64("tmdb_id", tmdbID).
		Str("title", added.Title).
		Bool("search", opts.SearchForMovie).
		Msg("Successfully added movie")
	return added, nil
}
