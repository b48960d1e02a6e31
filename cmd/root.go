package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/streamify/config"
	"github.com/s0up4200/streamify/filter"
	"github.com/s0up4200/streamify/library"
	"github.com/s0up4200/streamify/overseerr"
	"github.com/s0up4200/streamify/radarr"
	"github.com/s0up4200/streamify/render"
	"github.com/s0up4200/streamify/tautulli"
	"github.com/s0up4200/streamify/tmdb"
)

var (
	cfgFile         string
	cfgLoader       *config.Loader
	cfg             *config.Config
	logger          zerolog.Logger
	tmdbClient      *tmdb.Client
	images          *tmdb.ImageResolver
	radarrClient    *radarr.Client
	overseerrClient *overseerr.Client
	tautulliClient  *tautulli.Client
	filters         *filter.Manager
	annotator       *library.Annotator

	// Command flags
	filterExpr   string
	preset       string
	outputFormat string
	showDetails  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "streamify",
	Short: "Discover movies from TMDB in your terminal or browser",
	Long: `streamify browses The Movie Database: popular titles, free text search,
genre listings and a minimum rating filter. Results can be checked against
your Radarr library, Overseerr requests and Tautulli watch history, and added
or requested directly.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The context is cancelled on interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&showDetails, "details", false, "show overview and genres for each movie")

	rootCmd.AddCommand(testCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	cfgLoader = config.NewLoader(cfgFile)

	var err error
	cfg, err = cfgLoader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)
	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("Loaded configuration")
	}

	if cmd.Flags().Changed("details") {
		cfg.Display.ShowDetails = showDetails
	}

	tmdbClient, err = tmdb.NewClient(cfg.TMDB.APIKey, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithRateLimit(cfg.TMDB.RateLimit, cfg.TMDB.RateBurst),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}
	images = tmdb.NewImageResolver(cfg.TMDB.ImageBaseURL, cfg.TMDB.PlaceholderURL)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	var sources []library.Source

	// Create Radarr client if enabled
	if cfg.Radarr.Enabled {
		radarrClient, err = radarr.NewClient(cfg.Radarr.URL, cfg.Radarr.APIKey, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Radarr client, continuing without library status")
		} else {
			sources = append(sources, library.NewRadarrSource(radarrClient))
			logger.Debug().Msg("Radarr integration enabled")
		}
	}

	// Create Overseerr client if enabled
	if cfg.Overseerr.Enabled {
		overseerrClient, err = overseerr.NewClient(cfg.Overseerr.URL, cfg.Overseerr.APIKey, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Overseerr client, continuing without request status")
		} else {
			sources = append(sources, library.NewOverseerrSource(overseerrClient))
			logger.Debug().Msg("Overseerr integration enabled")
		}
	}

	// Create Tautulli client if enabled
	if cfg.Tautulli.Enabled {
		tautulliClient, err = tautulli.NewClient(cfg.Tautulli.URL, cfg.Tautulli.APIKey, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Tautulli client, continuing without watch status")
		} else {
			sources = append(sources, library.NewTautulliSource(tautulliClient, cfg.Tautulli.MinWatchPercent))
			logger.Debug().Msg("Tautulli integration enabled")
		}
	}

	annotator = library.NewAnnotator(logger, sources...)

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// resolveFilter determines the filter to apply
func resolveFilter() (filter.CompiledFilter, error) {
	// Priority: command line filter > preset > default
	f, err := filters.Resolve(filterExpr, preset, cfg.Filter.DefaultExpression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if f != nil {
		logger.Debug().Str("filter", f.Expression()).Msg("Using filter")
	}
	return f, nil
}

// renderOptions builds presentation options from config and the current genre list
func renderOptions(genres []tmdb.Genre) render.Options {
	return render.Options{
		ShowDetails: cfg.Display.ShowDetails,
		Images:      images,
		Genres:      tmdb.GenreNames(genres),
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}
