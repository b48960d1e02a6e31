package overseerr

import (
	"time"
)

// RequestStatus represents the status of a media request
type RequestStatus int

const (
	// RequestStatusUnknown represents an unknown request status
	RequestStatusUnknown RequestStatus = iota
	// RequestStatusPending indicates a pending request
	RequestStatusPending
	// RequestStatusApproved indicates an approved request
	RequestStatusApproved
	// RequestStatusDeclined indicates a declined request
	RequestStatusDeclined
	// RequestStatusProcessing indicates a request being processed
	RequestStatusProcessing
	// RequestStatusPartiallyAvailable indicates partial availability
	RequestStatusPartiallyAvailable
	// RequestStatusAvailable indicates full availability
	RequestStatusAvailable
	// RequestStatusFailed indicates a failed request
	RequestStatusFailed
)

// String returns the string representation of a RequestStatus
func (rs RequestStatus) String() string {
	switch rs {
	case RequestStatusPending:
		return "PENDING"
	case RequestStatusApproved:
		return "APPROVED"
	case RequestStatusDeclined:
		return "DECLINED"
	case RequestStatusProcessing:
		return "PROCESSING"
	case RequestStatusPartiallyAvailable:
		return "PARTIALLY_AVAILABLE"
	case RequestStatusAvailable:
		return "AVAILABLE"
	case RequestStatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// MediaType represents the type of media
type MediaType string

const (
	// MediaTypeMovie represents a movie
	MediaTypeMovie MediaType = "movie"
	// MediaTypeTV represents a TV show
	MediaTypeTV MediaType = "tv"
)

// IsMovie checks if the media type is a movie
func (mt MediaType) IsMovie() bool {
	return mt == MediaTypeMovie
}

// User represents an Overseerr user
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username,omitempty"`
	PlexUsername string `json:"plexUsername,omitempty"`
	DisplayName  string `json:"displayName"`
}

// GetDisplayName returns the best available display name for the user
func (u *User) GetDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	if u.PlexUsername != "" {
		return u.PlexUsername
	}
	return u.Email
}

// Media represents media information in Overseerr
type Media struct {
	ID        int       `json:"id"`
	TmdbID    int       `json:"tmdbId"`
	ImdbID    string    `json:"imdbId,omitempty"`
	Status    int       `json:"status"`
	MediaType MediaType `json:"mediaType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetTMDBID returns the TMDB ID as int64
func (m *Media) GetTMDBID() int64 {
	return int64(m.TmdbID)
}

// MediaRequest represents a media request in Overseerr
type MediaRequest struct {
	ID            int           `json:"id"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Type          MediaType     `json:"type"`
	Is4k          bool          `json:"is4k"`
	IsAutoRequest bool          `json:"isAutoRequest"`
	RequestedBy   User          `json:"requestedBy"`
	ModifiedBy    *User         `json:"modifiedBy,omitempty"`
	Media         Media         `json:"media"`
}

// IsMovieRequest checks if this is a movie request
func (mr *MediaRequest) IsMovieRequest() bool {
	return mr.Type.IsMovie()
}

// GetApprover returns the user who approved the request, if available
func (mr *MediaRequest) GetApprover() *User {
	if mr.ModifiedBy != nil && (mr.Status == RequestStatusApproved || mr.Status == RequestStatusAvailable) {
		return mr.ModifiedBy
	}
	return nil
}

// RequestsResponse represents the paginated response from the requests endpoint
type RequestsResponse struct {
	PageInfo PageInfo       `json:"pageInfo"`
	Results  []MediaRequest `json:"results"`
}

// HasMorePages checks if there are more pages to fetch
func (rr *RequestsResponse) HasMorePages() bool {
	return rr.PageInfo.Page < rr.PageInfo.Pages
}

// PageInfo contains pagination information
type PageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"pageSize"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

// createRequest is the body of POST /request
type createRequest struct {
	MediaType MediaType `json:"mediaType"`
	MediaID   int64     `json:"mediaId"`
}
