package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/library"
	"github.com/s0up4200/streamify/tmdb"
)

var matrix = tmdb.Movie{
	ID:          603,
	Title:       "The Matrix",
	PosterPath:  "/matrix.jpg",
	VoteAverage: 8.216,
	ReleaseDate: "1999-03-30",
	Overview:    "A computer hacker learns about the true nature of reality.",
	GenreIDs:    []int{28, 878},
}

func TestYearAndRating(t *testing.T) {
	assert.Equal(t, "1999", Year("1999-03-30"))
	assert.Equal(t, UnknownYear, Year(""))
	assert.Equal(t, UnknownYear, Year("soon"))
	assert.Equal(t, "2027", Year("2027"))
	assert.Equal(t, "2026", Year("2026-11"))
	assert.Equal(t, UnknownYear, Year("99"))
	assert.Equal(t, UnknownYear, Year("+199-01-01"))

	assert.Equal(t, "8.2", Rating(8.216))
	assert.Equal(t, "7.0", Rating(7))
	assert.Equal(t, "0.0", Rating(0))
}

func TestNewCard(t *testing.T) {
	opts := Options{
		Genres: map[int]string{28: "Action", 878: "Science Fiction"},
		Badges: library.Badges{603: {InLibrary: true, HasFile: true}},
	}

	card := NewCard(matrix, opts)
	assert.Equal(t, "The Matrix", card.Title)
	assert.Equal(t, "1999", card.Year)
	assert.Equal(t, "8.2", card.Rating)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", card.Poster)
	assert.Equal(t, []string{"Action", "Science Fiction"}, card.Genres)
	require.NotNil(t, card.Library)
	assert.Equal(t, []string{"IN LIBRARY"}, BadgeLabels(card.Library))

	noPoster := NewCard(tmdb.Movie{Title: "Unknown"}, Options{})
	assert.Equal(t, tmdb.DefaultPlaceholderURL, noPoster.Poster)
	assert.Equal(t, UnknownYear, noPoster.Year)
	assert.Nil(t, noPoster.Library)
}

func TestBadgeLabels(t *testing.T) {
	assert.Nil(t, BadgeLabels(nil))
	assert.Equal(t, []string{"IN LIBRARY: MISSING", "REQUESTED: APPROVED"},
		BadgeLabels(&library.Badge{InLibrary: true, Requested: true, RequestStatus: "APPROVED"}))
	assert.Equal(t, []string{"IN LIBRARY", "WATCHED"},
		BadgeLabels(&library.Badge{InLibrary: true, HasFile: true, Watched: true, WatchCount: 2}))
	assert.Equal(t, []string{"WATCHED"}, BadgeLabels(&library.Badge{Watched: true}))
}

func TestFormatGrid(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := FormatGrid(nil, Options{})
		assert.Contains(t, out, "No movies found")
		assert.Contains(t, out, "Try adjusting your search or filters")
	})

	t.Run("movies", func(t *testing.T) {
		other := tmdb.Movie{ID: 78, Title: "Blade Runner", VoteAverage: 7.9, ReleaseDate: "1982-06-25"}
		out := FormatGrid([]tmdb.Movie{matrix, other}, Options{ShowDetails: true})

		assert.Contains(t, out, "Movies (2):")
		assert.Contains(t, out, "├── The Matrix (1999)  ★ 8.2")
		assert.Contains(t, out, "╰── Blade Runner (1982)  ★ 7.9")
		assert.Contains(t, out, "Poster: https://image.tmdb.org/t/p/w500/matrix.jpg")
		assert.Contains(t, out, "A computer hacker")
		assert.Less(t, strings.Index(out, "The Matrix"), strings.Index(out, "Blade Runner"))
	})
}

func TestFormatSkeleton(t *testing.T) {
	out := FormatSkeleton()
	assert.Equal(t, SkeletonCells, strings.Count(out, "── "))
}

func TestFormatError(t *testing.T) {
	out := FormatError("Failed to fetch movies. Please try again later.", true)
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, "Failed to fetch movies. Please try again later.")
	assert.Contains(t, out, "Try Again")

	assert.NotContains(t, FormatError("boom", false), "Try Again")
}

func TestFormatState(t *testing.T) {
	failed := browse.State{Status: browse.StatusFailed, Error: "Failed to search movies. Please try again later."}
	assert.Contains(t, FormatState(failed, Options{}), "Try Again")

	loading := browse.State{Status: browse.StatusLoading, Movies: []tmdb.Movie{matrix}}
	assert.Equal(t, FormatSkeleton(), FormatState(loading, Options{}))

	empty := browse.State{Status: browse.StatusReady}
	out := FormatState(empty, Options{})
	assert.Contains(t, out, "No movies found")
	assert.NotContains(t, out, "Error")
}

func TestFormatCard(t *testing.T) {
	out := FormatCard(matrix, Options{})
	assert.Contains(t, out, "The Matrix (1999)")
	assert.Contains(t, out, "TMDB: 603")
}

func TestWriteMovies(t *testing.T) {
	movies := []tmdb.Movie{matrix}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteMovies(&buf, FormatJSON, movies, Options{}))

		var cards []Card
		require.NoError(t, json.Unmarshal(buf.Bytes(), &cards))
		require.Len(t, cards, 1)
		assert.Equal(t, "8.2", cards[0].Rating)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteMovies(&buf, FormatYAML, movies, Options{}))

		var cards []Card
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &cards))
		require.Len(t, cards, 1)
		assert.Equal(t, "1999", cards[0].Year)
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteMovies(&buf, FormatTable, movies, Options{}))
		assert.Contains(t, buf.String(), "The Matrix")
	})
}

func TestWriteGenres(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGenres(&buf, FormatTable, []tmdb.Genre{{ID: 878, Name: "Science Fiction"}}))
	assert.Contains(t, buf.String(), "878")
	assert.Contains(t, buf.String(), "Science Fiction")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
