package tautulli

import (
	"encoding/json"
	"strconv"
	"time"
)

// envelope is the wrapper around every API v2 response
type envelope struct {
	Response struct {
		Result  string          `json:"result"`
		Message *string         `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"response"`
}

// HistoryData contains the history records
type HistoryData struct {
	RecordsTotal int             `json:"recordsTotal"`
	Data         []HistoryRecord `json:"data"`
}

// HistoryRecord represents a single history entry
type HistoryRecord struct {
	UserID          int             `json:"user_id"`
	User            string          `json:"user"`
	RatingKey       json.RawMessage `json:"rating_key"` // Can be string or number
	Title           string          `json:"title"`
	FullTitle       string          `json:"full_title"`
	MediaType       string          `json:"media_type"`
	GUID            string          `json:"guid"`
	Date            int64           `json:"date"`
	PercentComplete int             `json:"percent_complete"`
	WatchedStatus   float64         `json:"watched_status"`
	IMDbID          string          `json:"imdb_id"`
	TMDbID          string          `json:"tmdb_id"`
}

// GetWatchedTime returns the time when the item was watched
func (h *HistoryRecord) GetWatchedTime() time.Time {
	if h.Date > 0 {
		return time.Unix(h.Date, 0)
	}
	return time.Time{}
}

// IsWatched checks if the item is considered watched based on percentage
func (h *HistoryRecord) IsWatched(minPercentage float64) bool {
	return float64(h.PercentComplete) >= minPercentage || h.WatchedStatus >= 0.9
}

// TMDBID returns the numeric TMDB id, or 0 when the record has none
func (h *HistoryRecord) TMDBID() int64 {
	id, err := strconv.ParseInt(h.TMDbID, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// WatchStatus contains aggregated watch information for a movie
type WatchStatus struct {
	Watched     bool
	WatchCount  int
	LastWatched time.Time
	MaxProgress float64
}

// add folds one history record into the status
func (s *WatchStatus) add(record HistoryRecord, minWatchPercent float64) {
	s.WatchCount++

	if record.IsWatched(minWatchPercent) {
		s.Watched = true
	}

	if progress := float64(record.PercentComplete); progress > s.MaxProgress {
		s.MaxProgress = progress
	}

	if watched := record.GetWatchedTime(); watched.After(s.LastWatched) {
		s.LastWatched = watched
	}
}
