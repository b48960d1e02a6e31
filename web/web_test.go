package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/tmdb"
)

type stubCatalog struct {
	mu      sync.Mutex
	failPop bool
	delay   time.Duration
	popular []tmdb.Movie
	search  map[string][]tmdb.Movie
	genres  []tmdb.Genre
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		popular: []tmdb.Movie{{ID: 1, Title: "Popular Movie", VoteAverage: 7.4, ReleaseDate: "2021-05-01", GenreIDs: []int{28}}},
		search: map[string][]tmdb.Movie{
			"matrix": {{ID: 603, Title: "The Matrix", VoteAverage: 8.2, ReleaseDate: "1999-03-30"}},
		},
		genres: []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	}
}

func (c *stubCatalog) setFailPopular(fail bool) {
	c.mu.Lock()
	c.failPop = fail
	c.mu.Unlock()
}

func (c *stubCatalog) setDelay(d time.Duration) {
	c.mu.Lock()
	c.delay = d
	c.mu.Unlock()
}

func (c *stubCatalog) PopularMovies(ctx context.Context, page int) (*tmdb.MoviePage, error) {
	c.mu.Lock()
	delay := c.delay
	c.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failPop {
		return nil, &tmdb.Error{Op: tmdb.OpPopular, Err: errors.New("connection refused")}
	}
	return &tmdb.MoviePage{Page: page, Results: c.popular, TotalPages: 1}, nil
}

func (c *stubCatalog) SearchMovies(_ context.Context, query string, page int) (*tmdb.MoviePage, error) {
	return &tmdb.MoviePage{Page: page, Results: c.search[query], TotalPages: 1}, nil
}

func (c *stubCatalog) MoviesByGenre(_ context.Context, _ int, page int) (*tmdb.MoviePage, error) {
	return &tmdb.MoviePage{Page: page, TotalPages: 1}, nil
}

func (c *stubCatalog) Genres(context.Context) ([]tmdb.Genre, error) {
	return c.genres, nil
}

func newTestServer(t *testing.T, api tmdb.API) (*Server, *browse.Session) {
	t.Helper()

	session := browse.NewSession(api, browse.WithDebounce(10*time.Millisecond))
	t.Cleanup(session.Close)

	srv, err := NewServer(session, Config{}, zerolog.Nop())
	require.NoError(t, err)
	srv.heartbeat = time.Hour
	return srv, session
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, newStubCatalog())

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestState(t *testing.T) {
	srv, session := newTestServer(t, newStubCatalog())
	require.NoError(t, session.Initialize(t.Context()))

	rec := doRequest(t, srv, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view stateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.Retry)
	assert.False(t, view.Empty)
	require.Len(t, view.Movies, 1)
	assert.Equal(t, "Popular Movie", view.Movies[0].Title)
	assert.Equal(t, "2021", view.Movies[0].Year)
	assert.Equal(t, "7.4", view.Movies[0].Rating)
	assert.Equal(t, []string{"Action"}, view.Movies[0].Genres)
	assert.Len(t, view.Genres, 2)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestGenres(t *testing.T) {
	srv, session := newTestServer(t, newStubCatalog())
	require.NoError(t, session.Initialize(t.Context()))

	rec := doRequest(t, srv, http.MethodGet, "/api/genres", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]`, rec.Body.String())
}

func TestQuery(t *testing.T) {
	srv, session := newTestServer(t, newStubCatalog())
	require.NoError(t, session.Initialize(t.Context()))

	rec := doRequest(t, srv, http.MethodPost, "/api/query", `{"text":"matrix","genre":0,"rating":8}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"text":"matrix","genre":0,"rating":8}`, rec.Body.String())

	require.Eventually(t, func() bool {
		state := session.Snapshot()
		return state.Status == browse.StatusReady && len(state.Movies) == 1 && state.Movies[0].ID == 603
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQuery_Invalid(t *testing.T) {
	srv, _ := newTestServer(t, newStubCatalog())

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "rating above range", body: `{"rating":11}`, wantField: "rating"},
		{name: "negative genre", body: `{"genre":-1}`, wantField: "genre"},
		{name: "text too long", body: `{"text":"` + strings.Repeat("x", 201) + `"}`, wantField: "text"},
		{name: "unknown field", body: `{"year":1999}`},
		{name: "not json", body: `matrix`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/query", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.wantField != "" {
				assert.Contains(t, resp.Fields, tt.wantField)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	api := newStubCatalog()
	api.setFailPopular(true)
	srv, session := newTestServer(t, api)
	require.Error(t, session.Initialize(t.Context()))

	rec := doRequest(t, srv, http.MethodGet, "/api/state", "")
	var failed stateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failed))
	assert.True(t, failed.Retry)
	assert.Equal(t, "Failed to fetch movies. Please try again later.", failed.Error)

	rec = doRequest(t, srv, http.MethodPost, "/api/retry", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	api.setFailPopular(false)
	rec = doRequest(t, srv, http.MethodPost, "/api/retry", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view stateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.False(t, view.Retry)
	assert.Len(t, view.Movies, 1)
}

func TestRetry_OutlivesRequest(t *testing.T) {
	api := newStubCatalog()
	srv, session := newTestServer(t, api)
	require.NoError(t, session.Initialize(t.Context()))

	api.setDelay(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/api/retry", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	state := session.Snapshot()
	assert.Equal(t, browse.StatusReady, state.Status)
	assert.Empty(t, state.Error)
	require.Len(t, state.Movies, 1)
	assert.Equal(t, int64(1), state.Movies[0].ID)
}

func TestIndex(t *testing.T) {
	srv, session := newTestServer(t, newStubCatalog())
	require.NoError(t, session.Initialize(t.Context()))

	rec := doRequest(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Popular Movie")
	assert.Contains(t, body, `<option value="878">Science Fiction</option>`)
	assert.Contains(t, body, "10+ Stars")
}

func TestIndex_Empty(t *testing.T) {
	api := newStubCatalog()
	api.popular = nil
	srv, session := newTestServer(t, api)
	require.NoError(t, session.Initialize(t.Context()))

	rec := doRequest(t, srv, http.MethodGet, "/", "")
	assert.Contains(t, rec.Body.String(), "No movies found")
}

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, sc *bufio.Scanner) sseEvent {
	t.Helper()
	var ev sseEvent
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.name != "":
			return ev
		}
	}
	t.Fatalf("event stream ended: %v", sc.Err())
	return ev
}

func TestEvents(t *testing.T) {
	srv, session := newTestServer(t, newStubCatalog())
	require.NoError(t, session.Initialize(t.Context()))

	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)

	connected := readEvent(t, sc)
	assert.Equal(t, eventConnected, connected.name)
	assert.Contains(t, connected.data, "client_id")

	initial := readEvent(t, sc)
	require.Equal(t, eventState, initial.name)
	assert.Contains(t, initial.data, "Popular Movie")

	session.SetSearchText("matrix")

	for {
		ev := readEvent(t, sc)
		if ev.name != eventState {
			continue
		}
		var view stateView
		require.NoError(t, json.Unmarshal([]byte(ev.data), &view))
		if view.Status == browse.StatusReady && len(view.Movies) == 1 && view.Movies[0].ID == 603 {
			assert.Equal(t, "matrix", view.Query.Text)
			assert.Equal(t, "The Matrix", view.Movies[0].Title)
			return
		}
	}
}

func TestCORS(t *testing.T) {
	session := browse.NewSession(newStubCatalog())
	t.Cleanup(session.Close)
	srv, err := NewServer(session, Config{CORSOrigins: []string{"http://localhost:3000"}}, zerolog.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
