package tautulli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultHistoryLength = 1000

// Client wraps the Tautulli API
type Client struct {
	baseURL       string
	apiKey        string
	historyLength int
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewClient creates a new Tautulli client
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: tautulli URL is required", ErrInvalidConfig)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: tautulli API key is required", ErrInvalidConfig)
	}

	client := &Client{
		// Ensure base URL ends without slash
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		historyLength: defaultHistoryLength,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		logger:        logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// doRequest calls one API v2 command and decodes its data into out (when non-nil)
func (c *Client) doRequest(ctx context.Context, cmd string, params url.Values, out any) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("cmd", cmd)

	c.logger.Debug().
		Str("cmd", cmd).
		Str("params", query.Encode()).
		Msg("Making Tautulli API request")

	query.Set("apikey", c.apiKey)
	requestURL := fmt.Sprintf("%s/api/v2?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Tautulli: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status code %d", ErrAPIFailure, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if env.Response.Result != "success" {
		msg := env.Response.Result
		if env.Response.Message != nil {
			msg = *env.Response.Message
		}
		return fmt.Errorf("%w: %s", ErrAPIFailure, msg)
	}

	if out != nil {
		if err := json.Unmarshal(env.Response.Data, out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return nil
}

// TestConnection tests the connection to Tautulli
func (c *Client) TestConnection(ctx context.Context) error {
	return c.doRequest(ctx, "get_server_info", nil, nil)
}

// GetMovieHistory returns the most recent movie plays, newest first
func (c *Client) GetMovieHistory(ctx context.Context) ([]HistoryRecord, error) {
	params := url.Values{
		"media_type": {"movie"},
		"length":     {strconv.Itoa(c.historyLength)},
	}

	var history HistoryData
	if err := c.doRequest(ctx, "get_history", params, &history); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	c.logger.Debug().
		Int("records", len(history.Data)).
		Int("total", history.RecordsTotal).
		Msg("Fetched movie history")
	return history.Data, nil
}

// WatchStatusByTMDBID aggregates movie history per TMDB id.
// A play counts as watched at minWatchPercent or above.
func (c *Client) WatchStatusByTMDBID(ctx context.Context, minWatchPercent float64) (map[int64]WatchStatus, error) {
	records, err := c.GetMovieHistory(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]WatchStatus)
	skipped := 0
	for _, record := range records {
		id := record.TMDBID()
		if id == 0 {
			skipped++
			continue
		}
		status := byID[id]
		status.add(record, minWatchPercent)
		byID[id] = status
	}

	if skipped > 0 {
		c.logger.Debug().Int("skipped", skipped).Msg("History records without TMDB id")
	}
	return byID, nil
}
