package overseerr

import (
	"bytes"
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
)

const defaultPageSize = 100

// Client represents an Overseerr API client
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new Overseerr client
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: overseerr URL is required", ErrInvalidConfig)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: overseerr API key is required", ErrInvalidConfig)
	}

	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, payload any) ([]byte, error) {
	requestURL := fmt.Sprintf("%s/api/v1%s", c.baseURL, endpoint)
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Msg("Making Overseerr API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

// TestConnection tests the connection to Overseerr
func (c *Client) TestConnection(ctx context.Context) error {
	// /auth/me checks both reachability and the API key
	if _, err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, nil); err != nil {
		return fmt.Errorf("failed to connect to Overseerr: %w", err)
	}
	return nil
}

// GetMovieRequests retrieves all movie requests from Overseerr
func (c *Client) GetMovieRequests(ctx context.Context) ([]MediaRequest, error) {
	var allRequests []MediaRequest
	page := 1

	for {
		params := url.Values{}
		params.Set("take", strconv.Itoa(c.pageSize))
		params.Set("skip", strconv.Itoa((page-1)*c.pageSize))
		params.Set("filter", "all")

		body, err := c.doRequest(ctx, http.MethodGet, "/request", params, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get requests: %w", err)
		}

		var response RequestsResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		for _, req := range response.Results {
			if req.IsMovieRequest() {
				allRequests = append(allRequests, req)
			}
		}

		c.logger.Debug().
			Int("page", page).
			Int("count", len(response.Results)).
			Int("total", len(allRequests)).
			Msg("Retrieved movie requests from Overseerr")

		if page >= response.PageInfo.Pages {
			break
		}
		page++
	}

	return allRequests, nil
}

// GetMovieRequestsByTMDBID indexes movie requests by TMDB id, keeping the newest per movie
func (c *Client) GetMovieRequestsByTMDBID(ctx context.Context) (map[int64]MediaRequest, error) {
	// Overseerr has no server side filter by TMDB id
	requests, err := c.GetMovieRequests(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]MediaRequest, len(requests))
	for _, req := range requests {
		id := req.Media.GetTMDBID()
		if existing, ok := byID[id]; ok && existing.CreatedAt.After(req.CreatedAt) {
			continue
		}
		byID[id] = req
	}
	return byID, nil
}

// RequestMovie submits a request for the movie with the given TMDB id
func (c *Client) RequestMovie(ctx context.Context, tmdbID int64) (*MediaRequest, error) {
	payload := createRequest{
		MediaType: MediaTypeMovie,
		MediaID:   tmdbID,
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/request", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to request movie %d: %w", tmdbID, err)
	}

	var created MediaRequest
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.Info().
		Int64("tmdb_id", tmdbID).
		Int("request_id", created.ID).
		Str("status", created.Status.String()).
		Msg("Submitted movie request")
	return &created, nil
}
