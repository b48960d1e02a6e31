package tmdb

import "strings"

const (
	// DefaultImageBaseURL serves w500 posters from the TMDB CDN
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	// DefaultPlaceholderURL is used for movies without a poster
	DefaultPlaceholderURL = "https://via.placeholder.com/500x750/1a1a2e/e94560?text=No+Image"
)

// ImageResolver turns poster paths into absolute image URLs
type ImageResolver struct {
	baseURL     string
	placeholder string
}

// NewImageResolver creates a resolver; empty arguments fall back to the defaults
func NewImageResolver(baseURL, placeholder string) *ImageResolver {
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholderURL
	}
	return &ImageResolver{
		baseURL:     strings.TrimRight(baseURL, "/"),
		placeholder: placeholder,
	}
}

// PosterURL returns the full poster URL, or the placeholder when path is empty
func (r *ImageResolver) PosterURL(path string) string {
	if path == "" {
		return r.placeholder
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.baseURL + path
}
