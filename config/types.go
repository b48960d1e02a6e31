package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Browse    BrowseConfig    `mapstructure:"browse"`
	Server    ServerConfig    `mapstructure:"server"`
	Radarr    RadarrConfig    `mapstructure:"radarr"`
	Overseerr OverseerrConfig `mapstructure:"overseerr"`
	Tautulli  TautulliConfig  `mapstructure:"tautulli"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Display   DisplayConfig   `mapstructure:"display"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// TMDBConfig holds the catalog API connection details
type TMDBConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	ImageBaseURL   string        `mapstructure:"image_base_url"`
	PlaceholderURL string        `mapstructure:"placeholder_url"`
	Language       string        `mapstructure:"language"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
}

// BrowseConfig contains interactive session settings
type BrowseConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ServerConfig contains settings for the local web page
type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// RadarrConfig holds Radarr API connection details and add defaults
type RadarrConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	URL              string `mapstructure:"url"`
	APIKey           string `mapstructure:"api_key"`
	QualityProfileID int64  `mapstructure:"quality_profile_id"`
	RootFolder       string `mapstructure:"root_folder"`
	Monitored        bool   `mapstructure:"monitored"`
	SearchOnAdd      bool   `mapstructure:"search_on_add"`
}

// OverseerrConfig holds Overseerr API connection details
type OverseerrConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
}

// TautulliConfig holds Tautulli API connection details
type TautulliConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	URL             string  `mapstructure:"url"`
	APIKey          string  `mapstructure:"api_key"`
	MinWatchPercent float64 `mapstructure:"min_watch_percent"`
}

// FilterConfig contains the default filter and named presets
type FilterConfig struct {
	DefaultExpression string            `mapstructure:"default_expression"`
	Presets           map[string]string `mapstructure:"presets"`
}

// DisplayConfig contains output settings
type DisplayConfig struct {
	ShowDetails bool   `mapstructure:"show_details"`
	Output      string `mapstructure:"output"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
