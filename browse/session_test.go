package browse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/streamify/tmdb"
)

// manualClock fires timers only when Advance is called
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// fakeCatalog records every call and serves canned pages
type fakeCatalog struct {
	mu       sync.Mutex
	calls    []string
	popular  []tmdb.Movie
	search   map[string][]tmdb.Movie
	byGenre  map[int][]tmdb.Movie
	genres   []tmdb.Genre
	failures map[tmdb.Op]error
	onSearch func(query string)
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		popular:  []tmdb.Movie{{ID: 1, Title: "Popular", VoteAverage: 7.5}},
		search:   map[string][]tmdb.Movie{},
		byGenre:  map[int][]tmdb.Movie{},
		genres:   []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
		failures: map[tmdb.Op]error{},
	}
}

func (f *fakeCatalog) record(op tmdb.Op, arg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s:%s", op, arg))
	if err := f.failures[op]; err != nil {
		return &tmdb.Error{Op: op, Err: err}
	}
	return nil
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCatalog) PopularMovies(ctx context.Context, page int) (*tmdb.MoviePage, error) {
	if err := f.record(tmdb.OpPopular, fmt.Sprint(page)); err != nil {
		return nil, err
	}
	return &tmdb.MoviePage{Page: 1, Results: f.popular, TotalPages: 1, TotalResults: len(f.popular)}, nil
}

func (f *fakeCatalog) SearchMovies(ctx context.Context, query string, page int) (*tmdb.MoviePage, error) {
	if err := f.record(tmdb.OpSearch, query); err != nil {
		return nil, err
	}
	if f.onSearch != nil {
		f.onSearch(query)
	}
	results := f.search[query]
	return &tmdb.MoviePage{Page: 1, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (f *fakeCatalog) MoviesByGenre(ctx context.Context, genreID int, page int) (*tmdb.MoviePage, error) {
	if err := f.record(tmdb.OpByGenre, fmt.Sprint(genreID)); err != nil {
		return nil, err
	}
	results := f.byGenre[genreID]
	return &tmdb.MoviePage{Page: 1, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (f *fakeCatalog) Genres(ctx context.Context) ([]tmdb.Genre, error) {
	if err := f.record(tmdb.OpGenres, ""); err != nil {
		return nil, err
	}
	return f.genres, nil
}

func newTestSession(t *testing.T, api tmdb.API) (*Session, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	s := NewSession(api, WithClock(clock))
	t.Cleanup(s.Close)
	return s, clock
}

func ratings(movies []tmdb.Movie) []float64 {
	out := make([]float64, len(movies))
	for i, m := range movies {
		out[i] = m.VoteAverage
	}
	return out
}

func TestSession_Initialize(t *testing.T) {
	api := newFakeCatalog()
	s, _ := newTestSession(t, api)

	assert.Equal(t, StatusIdle, s.Snapshot().Status)

	require.NoError(t, s.Initialize(context.Background()))

	state := s.Snapshot()
	assert.Equal(t, StatusReady, state.Status)
	assert.Equal(t, api.popular, state.Movies)
	assert.Equal(t, api.genres, state.Genres)
	assert.Empty(t, state.Error)
	assert.ElementsMatch(t, []string{"popular:1", "genres:"}, api.Calls())

	assert.ErrorIs(t, s.Initialize(context.Background()), ErrAlreadyInitialized)
	assert.Len(t, api.Calls(), 2)
}

func TestSession_InitializeFailure(t *testing.T) {
	api := newFakeCatalog()
	api.failures[tmdb.OpPopular] = errors.New("connection refused")
	s, _ := newTestSession(t, api)

	err := s.Initialize(context.Background())
	require.Error(t, err)

	state := s.Snapshot()
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "Failed to fetch movies. Please try again later.", state.Error)
	assert.NotNil(t, state.Movies)
	assert.Empty(t, state.Movies)
	assert.Empty(t, state.Genres)
}

func TestSession_DebounceCollapsesRapidEdits(t *testing.T) {
	api := newFakeCatalog()
	api.search["abc"] = []tmdb.Movie{{ID: 7, Title: "ABC", VoteAverage: 6}}
	s, clock := newTestSession(t, api)

	s.SetSearchText("a")
	clock.Advance(30 * time.Millisecond)
	s.SetSearchText("ab")
	clock.Advance(30 * time.Millisecond)
	s.SetSearchText("abc")
	clock.Advance(40 * time.Millisecond)

	assert.Empty(t, api.Calls())
	assert.True(t, s.Pending())

	// last edit landed at 60ms, so the window closes at 560ms
	clock.Advance(459 * time.Millisecond)
	assert.Empty(t, api.Calls())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"search:abc"}, api.Calls())
	assert.False(t, s.Pending())

	state := s.Snapshot()
	assert.Equal(t, StatusReady, state.Status)
	assert.Equal(t, api.search["abc"], state.Movies)
}

func TestSession_OperationPriority(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"text beats genre and rating", Query{Text: "alien", GenreID: 878, MinRating: 7}, "search:alien"},
		{"text is trimmed", Query{Text: "  alien  ", GenreID: 28}, "search:alien"},
		{"whitespace text falls through to genre", Query{Text: "   ", GenreID: 878}, "genre:878"},
		{"genre without text", Query{GenreID: 28, MinRating: 5}, "genre:28"},
		{"rating alone uses popular", Query{MinRating: 8}, "popular:1"},
		{"whitespace alone uses popular", Query{Text: " "}, "popular:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeCatalog()
			s, clock := newTestSession(t, api)

			s.SetQuery(tt.query)
			clock.Advance(DefaultDebounce)

			assert.Equal(t, []string{tt.want}, api.Calls())
		})
	}
}

func TestSession_GenreWithRatingFilter(t *testing.T) {
	api := newFakeCatalog()
	api.byGenre[878] = []tmdb.Movie{
		{ID: 1, Title: "First", VoteAverage: 8.1},
		{ID: 2, Title: "Second", VoteAverage: 6.5},
		{ID: 3, Title: "Third", VoteAverage: 9.0},
	}
	s, clock := newTestSession(t, api)

	s.SetSearchText("")
	s.SetGenre(878)
	s.SetRating(7)
	clock.Advance(DefaultDebounce)

	assert.Equal(t, []string{"genre:878"}, api.Calls())
	assert.Equal(t, []float64{8.1, 9.0}, ratings(s.Snapshot().Movies))
}

func TestSession_DefaultQuerySkipsFetch(t *testing.T) {
	api := newFakeCatalog()
	s, clock := newTestSession(t, api)

	s.SetSearchText("x")
	s.SetSearchText("")
	clock.Advance(DefaultDebounce)
	assert.Empty(t, api.Calls())

	s.SetRating(5)
	clock.Advance(DefaultDebounce)
	s.SetRating(AllRatings)
	clock.Advance(DefaultDebounce)
	assert.Equal(t, []string{"popular:1"}, api.Calls())
}

func TestSession_UnchangedValueIsNoop(t *testing.T) {
	api := newFakeCatalog()
	s, clock := newTestSession(t, api)

	var changes int
	stop := s.Watch(func(State) { changes++ })
	defer stop()

	s.SetSearchText("")
	s.SetGenre(AllGenres)
	s.SetRating(AllRatings)
	assert.False(t, s.Pending())
	assert.Zero(t, changes)

	s.SetGenre(28)
	s.SetGenre(28)
	assert.Equal(t, 1, changes)
	clock.Advance(DefaultDebounce)
	assert.Equal(t, []string{"genre:28"}, api.Calls())
}

func TestSession_FetchFailure(t *testing.T) {
	api := newFakeCatalog()
	s, clock := newTestSession(t, api)
	require.NoError(t, s.Initialize(context.Background()))

	api.failures[tmdb.OpSearch] = errors.New("timeout")
	s.SetSearchText("dune")
	clock.Advance(DefaultDebounce)

	state := s.Snapshot()
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "Failed to search movies. Please try again later.", state.Error)
	assert.Empty(t, state.Movies)
	assert.Equal(t, api.genres, state.Genres)
}

func TestSession_StaleResultDiscarded(t *testing.T) {
	api := newFakeCatalog()
	api.search["old"] = []tmdb.Movie{{ID: 1, Title: "Old"}}
	api.search["new"] = []tmdb.Movie{{ID: 2, Title: "New"}}
	s, clock := newTestSession(t, api)

	api.onSearch = func(query string) {
		if query != "old" {
			return
		}
		// newer input settles while the first search is still in flight
		s.SetSearchText("new")
		clock.Advance(DefaultDebounce)
	}

	s.SetSearchText("old")
	clock.Advance(DefaultDebounce)

	assert.Equal(t, []string{"search:old", "search:new"}, api.Calls())
	state := s.Snapshot()
	assert.Equal(t, StatusReady, state.Status)
	require.Len(t, state.Movies, 1)
	assert.Equal(t, "New", state.Movies[0].Title)
	assert.Equal(t, "new", state.Query.Text)
}

func TestSession_Retry(t *testing.T) {
	api := newFakeCatalog()
	api.failures[tmdb.OpByGenre] = errors.New("bad gateway")
	s, clock := newTestSession(t, api)
	require.NoError(t, s.Initialize(context.Background()))

	s.SetGenre(28)
	s.SetRating(6)
	clock.Advance(DefaultDebounce)
	require.Equal(t, StatusFailed, s.Snapshot().Status)

	require.NoError(t, s.Retry(context.Background()))

	state := s.Snapshot()
	assert.Equal(t, StatusReady, state.Status)
	assert.Equal(t, Query{}, state.Query)
	assert.Equal(t, api.popular, state.Movies)
	assert.Empty(t, state.Error)
	assert.Equal(t, []string{"genre:28"}, filterCalls(api.Calls(), "genre:"))
	assert.Len(t, filterCalls(api.Calls(), "popular:"), 2)
}

func TestSession_RetryCancelsPendingEvaluation(t *testing.T) {
	api := newFakeCatalog()
	s, clock := newTestSession(t, api)

	s.SetSearchText("pending")
	require.True(t, s.Pending())
	require.NoError(t, s.Retry(context.Background()))
	assert.False(t, s.Pending())

	clock.Advance(DefaultDebounce)
	assert.Empty(t, filterCalls(api.Calls(), "search:"))
}

func TestSession_WatchOrder(t *testing.T) {
	api := newFakeCatalog()
	s, clock := newTestSession(t, api)

	var statuses []Status
	stop := s.Watch(func(st State) { statuses = append(statuses, st.Status) })

	s.SetSearchText("x")
	clock.Advance(DefaultDebounce)
	stop()
	s.SetSearchText("y")

	assert.Equal(t, []Status{StatusIdle, StatusLoading, StatusReady}, statuses)
}

func TestSession_Close(t *testing.T) {
	api := newFakeCatalog()
	s, clock := newTestSession(t, api)

	s.SetSearchText("x")
	s.Close()
	clock.Advance(DefaultDebounce)

	assert.Empty(t, api.Calls())
	assert.ErrorIs(t, s.Initialize(context.Background()), ErrClosed)
	assert.ErrorIs(t, s.Retry(context.Background()), ErrClosed)
}

func TestSession_SubscribeKeepsLatest(t *testing.T) {
	api := newFakeCatalog()
	api.search["abc"] = []tmdb.Movie{{ID: 7, Title: "ABC"}}
	s, clock := newTestSession(t, api)

	updates, stop := s.Subscribe()
	defer stop()

	s.SetSearchText("a")
	s.SetSearchText("abc")
	clock.Advance(DefaultDebounce)

	require.Len(t, updates, 1)
	latest := <-updates
	assert.Equal(t, StatusReady, latest.Status)
	assert.Equal(t, "abc", latest.Query.Text)
	assert.Equal(t, api.search["abc"], latest.Movies)

	stop()
	s.SetSearchText("z")
	assert.Empty(t, updates)
}

func filterCalls(calls []string, prefix string) []string {
	var out []string
	for _, c := range calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func TestSession_WaitCoversDebounceAndFetch(t *testing.T) {
	api := newFakeCatalog()
	api.search["alien"] = []tmdb.Movie{{ID: 348, Title: "Alien", VoteAverage: 8.1}}
	release := make(chan struct{})
	api.onSearch = func(string) { <-release }

	s := NewSession(api, WithDebounce(20*time.Millisecond))
	defer s.Close()
	require.NoError(t, s.Initialize(t.Context()))

	s.SetSearchText("alien")
	waited := make(chan error, 1)
	go func() { waited <- s.Wait(t.Context()) }()

	assert.Never(t, func() bool { return len(waited) > 0 }, 100*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, StatusLoading, s.Snapshot().Status)

	close(release)
	select {
	case err := <-waited:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the fetch finished")
	}

	state := s.Snapshot()
	assert.Equal(t, StatusReady, state.Status)
	require.Len(t, state.Movies, 1)
	assert.Equal(t, int64(348), state.Movies[0].ID)
}

func TestSession_WaitHonorsContext(t *testing.T) {
	clock := &manualClock{}
	s := NewSession(newFakeCatalog(), WithClock(clock))
	defer s.Close()

	require.NoError(t, s.Wait(t.Context()))

	s.SetSearchText("alien")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}
