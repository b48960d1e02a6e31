package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/config"
	"github.com/s0up4200/streamify/web"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the movie browser as a local web page",
	Long: `Serve a local web page with the same search, genre and rating controls as
the terminal session. Changes to the log level in the config file apply
without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addFilterFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "address", "", "listen address (overrides server.address)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	addr := cfg.Server.Address
	if serveAddr != "" {
		addr = serveAddr
	}

	f, err := resolveFilter()
	if err != nil {
		return err
	}

	session := browse.NewSession(tmdbClient,
		browse.WithDebounce(cfg.Browse.Debounce),
		browse.WithLogger(logger),
		browse.WithFilter(f),
	)
	defer session.Close()

	srv, err := web.NewServer(session, web.Config{
		CORSOrigins: cfg.Server.CORSOrigins,
		ShowDetails: cfg.Display.ShowDetails,
		Images:      images,
		Annotator:   annotator,
	}, logger)
	if err != nil {
		return err
	}

	go func() {
		if err := session.Initialize(ctx); err != nil {
			logger.Warn().Err(err).Msg("Initial load failed, the page offers a retry")
		}
	}()

	if cfgLoader.Watch(applyReloadedConfig) {
		logger.Info().Str("file", cfg.File).Msg("Watching config file for changes")
	}

	return srv.ListenAndServe(ctx, addr)
}

// applyReloadedConfig applies the settings that can change while serving
func applyReloadedConfig(newCfg *config.Config, err error) {
	if err != nil {
		logger.Error().Err(err).Msg("Ignoring invalid config change")
		return
	}

	level := parseLevel(newCfg.Logging.Level)
	if level != zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
		logger.Info().Str("level", level.String()).Msg("Log level changed")
	}
}
