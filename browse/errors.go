package browse

import "errors"

var (
	// ErrInvalidGenre indicates a genre selection that is neither "all" nor an id
	ErrInvalidGenre = errors.New("invalid genre")
	// ErrInvalidRating indicates a rating outside 0..10
	ErrInvalidRating = errors.New("invalid rating")
	// ErrAlreadyInitialized is returned when Initialize runs a second time
	ErrAlreadyInitialized = errors.New("session already initialized")
	// ErrClosed is returned by operations on a closed session
	ErrClosed = errors.New("session closed")
)
