package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the TMDB v3 API root
	DefaultBaseURL = "https://api.themoviedb.org/3"

	defaultTimeout = 30 * time.Second
)

// Client represents a TMDB API client
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	rps        float64
	burst      int
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.baseURL = strings.TrimRight(client.baseURL, "/")
	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid base URL %q: %v", ErrInvalidConfig, client.baseURL, err)
	}

	if client.rps > 0 {
		burst := client.burst
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(client.rps), burst)
	}

	return client, nil
}

// doRequest performs an authenticated GET and returns the response body
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}

	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("query", redact(params).Encode()).
		Msg("Making TMDB API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("TMDB API response")

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// getMoviePage fetches and decodes one page of movies
func (c *Client) getMoviePage(ctx context.Context, op Op, endpoint string, params url.Values, page int) (*MoviePage, error) {
	if page <= 0 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, endpoint, params)
	if err != nil {
		return nil, wrapError(op, err)
	}

	var result MoviePage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, wrapError(op, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	if result.Results == nil {
		result.Results = []Movie{}
	}

	c.logger.Debug().
		Str("op", string(op)).
		Int("page", result.Page).
		Int("count", len(result.Results)).
		Int("total", result.TotalResults).
		Msg("Retrieved movies from TMDB")

	return &result, nil
}

// PopularMovies lists popular movies
func (c *Client) PopularMovies(ctx context.Context, page int) (*MoviePage, error) {
	return c.getMoviePage(ctx, OpPopular, "/movie/popular", url.Values{}, page)
}

// SearchMovies searches movies by title
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.getMoviePage(ctx, OpSearch, "/search/movie", params, page)
}

// MoviesByGenre lists movies of the given genre through the discover endpoint
func (c *Client) MoviesByGenre(ctx context.Context, genreID int, page int) (*MoviePage, error) {
	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	return c.getMoviePage(ctx, OpByGenre, "/discover/movie", params, page)
}

// Genres lists the movie genres
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	body, err := c.doRequest(ctx, "/genre/movie/list", nil)
	if err != nil {
		return nil, wrapError(OpGenres, err)
	}

	var result genreListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, wrapError(OpGenres, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	if result.Genres == nil {
		return nil, wrapError(OpGenres, fmt.Errorf("%w: missing genres", ErrMalformedResponse))
	}

	c.logger.Debug().Msgf("Retrieved %d genres from TMDB", len(result.Genres))
	return result.Genres, nil
}

// TestConnection verifies the API key by fetching the genre list
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.Genres(ctx); err != nil {
		return fmt.Errorf("failed to connect to TMDB: %w", err)
	}
	return nil
}

// newAPIError builds an APIError, preferring TMDB's status_message when present
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
		Body:       string(body),
	}

	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
		apiErr.Message = payload.StatusMessage
	}

	return apiErr
}

// redact hides the credential before query parameters are logged
func redact(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, v := range params {
		if k == "api_key" {
			out[k] = []string{"***"}
			continue
		}
		out[k] = v
	}
	return out
}
