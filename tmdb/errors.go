package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid tmdb configuration")
	// ErrMissingAPIKey indicates that no API key was supplied
	ErrMissingAPIKey = errors.New("tmdb API key is required")
	// ErrMalformedResponse indicates a response body that could not be decoded
	ErrMalformedResponse = errors.New("malformed tmdb response")
)

// Op identifies a catalog operation
type Op string

const (
	// OpPopular lists popular movies
	OpPopular Op = "popular"
	// OpSearch searches movies by title
	OpSearch Op = "search"
	// OpByGenre lists movies of one genre
	OpByGenre Op = "genre"
	// OpGenres lists genres
	OpGenres Op = "genres"
)

// DefaultErrorMessage is shown for failures that did not come from the catalog client
const DefaultErrorMessage = "An unexpected error occurred"

var opMessages = map[Op]string{
	OpPopular: "Failed to fetch movies. Please try again later.",
	OpSearch:  "Failed to search movies. Please try again later.",
	OpByGenre: "Failed to fetch movies by genre. Please try again later.",
	OpGenres:  "Failed to fetch genres. Please try again later.",
}

// Message returns the fixed user facing message for a failed operation
func (op Op) Message() string {
	if msg, ok := opMessages[op]; ok {
		return msg
	}
	return DefaultErrorMessage
}

// Error wraps any failure of a catalog operation
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tmdb %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the fixed user facing message for this failure
func (e *Error) Message() string {
	return e.Op.Message()
}

// wrapError attaches the operation to an underlying failure
func wrapError(op Op, err error) error {
	return &Error{Op: op, Err: err}
}

// UserMessage returns the message to display for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var tmdbErr *Error
	if errors.As(err, &tmdbErr) {
		return tmdbErr.Message()
	}
	return DefaultErrorMessage
}

// APIError represents a non-200 response from the TMDB API
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimited checks if the server rejected the request for exceeding its rate limit
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
