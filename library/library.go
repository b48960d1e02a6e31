// Package library marks catalog results with the state they have in the
// user's own media stack: already in Radarr, requested through Overseerr or
// watched according to Tautulli.
package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/streamify/tmdb"
)

// Badge is the library state of one movie
type Badge struct {
	InLibrary     bool   `json:"in_library,omitempty" yaml:"in_library,omitempty"`
	HasFile       bool   `json:"has_file,omitempty" yaml:"has_file,omitempty"`
	Requested     bool   `json:"requested,omitempty" yaml:"requested,omitempty"`
	RequestStatus string `json:"request_status,omitempty" yaml:"request_status,omitempty"`
	RequestedBy   string `json:"requested_by,omitempty" yaml:"requested_by,omitempty"`
	Watched       bool   `json:"watched,omitempty" yaml:"watched,omitempty"`
	WatchCount    int    `json:"watch_count,omitempty" yaml:"watch_count,omitempty"`
}

// Empty reports whether no source marked the movie
func (b *Badge) Empty() bool {
	return b == nil || (!b.InLibrary && !b.Requested && !b.Watched && b.WatchCount == 0)
}

// Badges maps TMDB ids to their badge
type Badges map[int64]*Badge

// Get returns the badge for id, or nil
func (b Badges) Get(id int64) *Badge {
	if b == nil {
		return nil
	}
	return b[id]
}

// Source contributes library state for a set of movies.
// Annotate must only touch entries of badges under the lock it is given.
type Source interface {
	Name() string
	Annotate(ctx context.Context, badges Badges, mu *sync.Mutex) error
}

// Annotator runs all sources concurrently
type Annotator struct {
	sources []Source
	logger  zerolog.Logger
}

// NewAnnotator creates an annotator over the given sources; nil sources are skipped
func NewAnnotator(logger zerolog.Logger, sources ...Source) *Annotator {
	a := &Annotator{logger: logger}
	for _, s := range sources {
		if s != nil {
			a.sources = append(a.sources, s)
		}
	}
	return a
}

// Enabled reports whether any source is configured
func (a *Annotator) Enabled() bool {
	return a != nil && len(a.sources) > 0
}

// Annotate builds badges for movies. A failing source is logged and skipped.
func (a *Annotator) Annotate(ctx context.Context, movies []tmdb.Movie) Badges {
	badges := make(Badges, len(movies))
	if !a.Enabled() || len(movies) == 0 {
		return badges
	}

	for _, m := range movies {
		badges[m.ID] = &Badge{}
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, source := range a.sources {
		g.Go(func() error {
			if err := source.Annotate(ctx, badges, &mu); err != nil {
				// Log but don't fail the entire operation
				a.logger.Warn().
					Err(err).
					Str("source", source.Name()).
					Msg("Failed to annotate movies")
			}
			return nil
		})
	}
	g.Wait()

	for id, b := range badges {
		if b.Empty() {
			delete(badges, id)
		}
	}
	return badges
}

// NotConfiguredError is returned by actions whose backing service has no configuration
type NotConfiguredError struct {
	Service string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Service)
}
