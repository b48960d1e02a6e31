package browse

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/streamify/filter"
	"github.com/s0up4200/streamify/tmdb"
)

// DefaultDebounce is the quiet period before a changed query is fetched
const DefaultDebounce = 500 * time.Millisecond

const waitInterval = 10 * time.Millisecond

// Status is the fetch state of a session
type Status int

const (
	// StatusIdle means nothing has been fetched yet
	StatusIdle Status = iota
	// StatusLoading means a fetch is in flight
	StatusLoading
	// StatusReady means the last fetch succeeded
	StatusReady
	// StatusFailed means the last fetch failed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// MarshalText renders the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name; unknown names are idle
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = StatusLoading
	case "ready":
		*s = StatusReady
	case "failed":
		*s = StatusFailed
	default:
		*s = StatusIdle
	}
	return nil
}

// State is what presentation reads from a session.
// Movies and Genres are replaced wholesale and must be treated as read-only.
type State struct {
	Query  Query        `json:"query"`
	Status Status       `json:"status"`
	Movies []tmdb.Movie `json:"movies"`
	Genres []tmdb.Genre `json:"genres"`
	Error  string       `json:"error,omitempty"`

	// Generation identifies the fetch that Status refers to
	Generation uint64 `json:"generation"`
}

// Loading reports whether a fetch is in flight
func (s State) Loading() bool { return s.Status == StatusLoading }

// Failed reports whether the last fetch failed
func (s State) Failed() bool { return s.Status == StatusFailed }

// Option configures a Session
type Option func(*Session)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithClock replaces the wall clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithFilter applies f to every result set after the rating threshold
func WithFilter(f filter.Filter) Option {
	return func(s *Session) {
		s.filter = f
	}
}

// Session owns the query state of one user and the result set derived from it.
// All mutation goes through its methods; watchers receive every state change in order.
type Session struct {
	api      tmdb.API
	logger   zerolog.Logger
	clock    Clock
	debounce time.Duration
	filter   filter.Filter

	ctx    context.Context
	cancel context.CancelFunc
	task   *DelayedTask

	mu          sync.Mutex
	state       State
	generation  uint64
	initialized bool
	closed      bool
	watchers    map[int]func(State)
	nextWatcher int

	// held while watchers run so notifications keep state order
	emitMu sync.Mutex
}

// NewSession creates an idle session over api
func NewSession(api tmdb.API, opts ...Option) *Session {
	s := &Session{
		api:      api,
		logger:   zerolog.Nop(),
		clock:    RealClock,
		debounce: DefaultDebounce,
		watchers: make(map[int]func(State)),
		state: State{
			Movies: []tmdb.Movie{},
			Genres: []tmdb.Genre{},
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.task = NewDelayedTask(s.clock, s.settle)
	return s
}

// Snapshot returns the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch registers fn for every state change and returns a function that removes it.
// fn runs synchronously and must not call back into the session.
func (s *Session) Watch(fn func(State)) (stop func()) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// Subscribe returns a channel holding the most recent unread state.
// A reader that falls behind skips intermediate states.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	stop := s.Watch(func(state State) {
		replaceLatest(ch, state)
	})
	return ch, stop
}

// replaceLatest swaps any unread state in ch for state.
// Watchers run one at a time, so there is a single sender.
func replaceLatest(ch chan State, state State) {
	for {
		select {
		case ch <- state:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// SetSearchText changes the search text
func (s *Session) SetSearchText(text string) {
	s.mutate(func(q *Query) { q.Text = text })
}

// SetGenre changes the genre selection; AllGenres clears it
func (s *Session) SetGenre(genreID int) {
	s.mutate(func(q *Query) { q.GenreID = genreID })
}

// SetRating changes the rating threshold; AllRatings clears it
func (s *Session) SetRating(minRating int) {
	s.mutate(func(q *Query) { q.MinRating = minRating })
}

// SetQuery replaces all three inputs at once
func (s *Session) SetQuery(q Query) {
	s.mutate(func(cur *Query) { *cur = q })
}

// Pending reports whether a changed query is waiting for its quiet period
func (s *Session) Pending() bool {
	return s.task.Pending()
}

// Wait blocks until no evaluation is waiting for its quiet period or fetching.
func (s *Session) Wait(ctx context.Context) error {
	ticker := time.NewTicker(waitInterval)
	defer ticker.Stop()

	for !s.task.Idle() {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Initialize loads the popular list and the genre list concurrently.
// It runs once per session; later calls return ErrAlreadyInitialized.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.initialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true
	s.mu.Unlock()

	return s.load(ctx)
}

// Retry discards the current query and runs initialization again,
// whichever operation failed.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.task.Cancel()
	s.initialized = true
	s.state.Query = Query{}
	s.mu.Unlock()

	s.logger.Debug().Msg("Retrying initial load")
	return s.load(ctx)
}

// Close cancels the pending evaluation and any call in flight
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.task.Cancel()
	s.cancel()
}

func (s *Session) mutate(change func(q *Query)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	next := s.state.Query
	change(&next)
	if next == s.state.Query {
		s.mu.Unlock()
		return
	}

	s.state.Query = next
	s.task.Schedule(s.debounce)
	s.commit()
}

// settle runs when the query has been quiet for the debounce window
func (s *Session) settle() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	q := s.state.Query
	if q.IsDefault() {
		s.mu.Unlock()
		s.logger.Debug().Msg("Query back at defaults, skipping fetch")
		return
	}

	gen := s.beginLocked()
	s.commit()

	s.logger.Debug().
		Str("op", string(q.Operation())).
		Stringer("query", q).
		Uint64("generation", gen).
		Msg("Query settled, fetching")

	page, err := Fetch(s.ctx, s.api, q, 1)

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		s.logger.Debug().Uint64("generation", gen).Msg("Discarding stale result")
		return
	}

	if err != nil {
		s.failLocked(err)
	} else {
		s.state.Status = StatusReady
		s.state.Movies = s.applyFilter(page.Results)
		s.logger.Debug().Int("count", len(s.state.Movies)).Msg("Result set replaced")
	}
	s.commit()
}

// load fetches the popular list and genres in parallel
func (s *Session) load(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	s.mu.Lock()
	gen := s.beginLocked()
	s.commit()

	var (
		popular *tmdb.MoviePage
		genres  []tmdb.Genre
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.api.PopularMovies(gctx, 1)
		if err != nil {
			return err
		}
		popular = page
		return nil
	})
	g.Go(func() error {
		list, err := s.api.Genres(gctx)
		if err != nil {
			return err
		}
		genres = list
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	if !s.currentLocked(gen) {
		if err == nil && !s.closed {
			// genres do not depend on the query
			s.state.Genres = genres
			s.commit()
		} else {
			s.mu.Unlock()
		}
		s.logger.Debug().Uint64("generation", gen).Msg("Discarding stale initial load")
		return err
	}

	if err != nil {
		s.failLocked(err)
		s.commit()
		return err
	}

	s.state.Status = StatusReady
	s.state.Movies = s.applyFilter(popular.Results)
	s.state.Genres = genres
	s.commit()

	s.logger.Debug().
		Int("movies", len(popular.Results)).
		Int("genres", len(genres)).
		Msg("Initial load complete")
	return nil
}

// beginLocked starts a new fetch generation; s.mu must be held
func (s *Session) beginLocked() uint64 {
	s.generation++
	s.state.Generation = s.generation
	s.state.Status = StatusLoading
	s.state.Error = ""
	return s.generation
}

func (s *Session) currentLocked(gen uint64) bool {
	return !s.closed && gen == s.generation
}

func (s *Session) failLocked(err error) {
	s.state.Status = StatusFailed
	s.state.Error = tmdb.UserMessage(err)
	s.state.Movies = []tmdb.Movie{}
	s.logger.Error().Err(err).Msg("Failed to load movies")
}

func (s *Session) applyFilter(movies []tmdb.Movie) []tmdb.Movie {
	if movies == nil {
		return []tmdb.Movie{}
	}
	if s.filter == nil {
		return movies
	}
	return filter.Apply(s.filter, movies)
}

// commit publishes the state to watchers and releases s.mu, which must be held.
// emitMu is taken before s.mu is released so watchers see changes in order.
func (s *Session) commit() {
	state := s.state
	watchers := make([]func(State), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}

	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()

	for _, fn := range watchers {
		fn(state)
	}
}
