package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "STREAMIFY"
	placeholder = "your-api-key-here"
)

// Loader reads configuration from file and environment
type Loader struct {
	v  *viper.Viper
	mu sync.Mutex
}

// NewLoader prepares a loader. An empty configPath searches the standard locations.
func NewLoader(configPath string) *Loader {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the conventional variable name works too
	_ = v.BindEnv("tmdb.api_key", envPrefix+"_TMDB_API_KEY", "TMDB_API_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".streamify"))
		}

		v.AddConfigPath("/etc/streamify/")
	}

	return &Loader{v: v}
}

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}

// Load reads the file (if any), applies the environment and validates the result.
// A missing file is not an error when searching the default locations.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = l.v.ConfigFileUsed()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Watch calls onChange with the reloaded configuration whenever the config file changes.
// It does nothing when no file was read.
func (l *Loader) Watch(onChange func(*Config, error)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		l.mu.Lock()
		cfg, err := l.decode()
		l.mu.Unlock()
		onChange(cfg, err)
	})
	l.v.WatchConfig()
	return true
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("tmdb.placeholder_url", "https://via.placeholder.com/500x750/1a1a2e/e94560?text=No+Image")
	v.SetDefault("tmdb.language", "")
	v.SetDefault("tmdb.timeout", "30s")
	v.SetDefault("tmdb.rate_limit", 0)
	v.SetDefault("tmdb.rate_burst", 1)

	v.SetDefault("browse.debounce", "500ms")

	v.SetDefault("server.address", "127.0.0.1:8787")
	v.SetDefault("server.cors_origins", []string{})

	// Radarr defaults
	v.SetDefault("radarr.enabled", false)
	v.SetDefault("radarr.url", "http://localhost:7878")
	v.SetDefault("radarr.api_key", "")
	v.SetDefault("radarr.quality_profile_id", 1)
	v.SetDefault("radarr.root_folder", "")
	v.SetDefault("radarr.monitored", true)
	v.SetDefault("radarr.search_on_add", true)

	// Overseerr defaults
	v.SetDefault("overseerr.enabled", false)
	v.SetDefault("overseerr.url", "http://localhost:5055")
	v.SetDefault("overseerr.api_key", "")

	// Tautulli defaults
	v.SetDefault("tautulli.enabled", false)
	v.SetDefault("tautulli.url", "http://localhost:8181")
	v.SetDefault("tautulli.api_key", "")
	v.SetDefault("tautulli.min_watch_percent", 85.0)

	v.SetDefault("filter.default_expression", "")

	v.SetDefault("display.show_details", false)
	v.SetDefault("display.output", "table")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == placeholder {
		return fmt.Errorf("tmdb.api_key must be set (or TMDB_API_KEY in the environment)")
	}

	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}

	if cfg.TMDB.RateLimit < 0 {
		return fmt.Errorf("tmdb.rate_limit must not be negative")
	}

	if cfg.Browse.Debounce <= 0 {
		return fmt.Errorf("browse.debounce must be positive")
	}

	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	if cfg.Radarr.Enabled {
		if cfg.Radarr.URL == "" {
			return fmt.Errorf("radarr.url is required when radarr is enabled")
		}
		if cfg.Radarr.APIKey == "" || cfg.Radarr.APIKey == placeholder {
			return fmt.Errorf("radarr.api_key must be set to a valid API key")
		}
	}

	if cfg.Overseerr.Enabled {
		if cfg.Overseerr.URL == "" {
			return fmt.Errorf("overseerr.url is required when overseerr is enabled")
		}
		if cfg.Overseerr.APIKey == "" || cfg.Overseerr.APIKey == placeholder {
			return fmt.Errorf("overseerr.api_key must be set to a valid API key")
		}
	}

	if cfg.Tautulli.Enabled {
		if cfg.Tautulli.URL == "" {
			return fmt.Errorf("tautulli.url is required when tautulli is enabled")
		}
		if cfg.Tautulli.APIKey == "" || cfg.Tautulli.APIKey == placeholder {
			return fmt.Errorf("tautulli.api_key must be set to a valid API key")
		}
		if cfg.Tautulli.MinWatchPercent < 0 || cfg.Tautulli.MinWatchPercent > 100 {
			return fmt.Errorf("tautulli.min_watch_percent must be between 0 and 100")
		}
	}

	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
		"yaml":  true,
	}
	if !validOutputs[cfg.Display.Output] {
		return fmt.Errorf("invalid display output: %s", cfg.Display.Output)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
