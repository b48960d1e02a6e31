package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/streamify/library"
	"github.com/s0up4200/streamify/overseerr"
	"github.com/s0up4200/streamify/radarr"
)

var (
	searchOnAdd bool
	noMonitor   bool
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <tmdb-id>",
	Short: "Add a movie to Radarr",
	Long: `Add a movie to your Radarr library by its TMDB id, using the quality profile
and root folder from the radarr section of the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

// requestCmd represents the request command
var requestCmd = &cobra.Command{
	Use:   "request <tmdb-id>",
	Short: "Request a movie through Overseerr",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequest,
}

func init() {
	addCmd.Flags().BoolVar(&searchOnAdd, "search", false, "search for the movie right after adding it")
	addCmd.Flags().BoolVar(&noMonitor, "no-monitor", false, "add the movie unmonitored")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(requestCmd)
}

func parseTMDBID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid TMDB id %q", arg)
	}
	return id, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if radarrClient == nil {
		return &library.NotConfiguredError{Service: "radarr"}
	}

	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}

	opts := radarr.AddOptions{
		QualityProfileID: cfg.Radarr.QualityProfileID,
		RootFolderPath:   cfg.Radarr.RootFolder,
		Monitored:        cfg.Radarr.Monitored && !noMonitor,
		SearchForMovie:   cfg.Radarr.SearchOnAdd,
	}
	if cmd.Flags().Changed("search") {
		opts.SearchForMovie = searchOnAdd
	}

	movie, err := radarrClient.AddMovie(cmd.Context(), tmdbID, opts)
	if errors.Is(err, radarr.ErrAlreadyExists) {
		fmt.Printf("✓ %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added %s (%d) to Radarr\n", movie.Title, movie.Year)
	if opts.SearchForMovie {
		fmt.Println("→ Search started")
	}
	return nil
}

func runRequest(cmd *cobra.Command, args []string) error {
	if overseerrClient == nil {
		return &library.NotConfiguredError{Service: "overseerr"}
	}

	tmdbID, err := parseTMDBID(args[0])
	if err != nil {
		return err
	}

	request, err := overseerrClient.RequestMovie(cmd.Context(), tmdbID)
	if err != nil {
		var apiErr *overseerr.APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			fmt.Printf("✓ TMDB id %d has already been requested\n", tmdbID)
			return nil
		}
		return err
	}

	fmt.Printf("✓ Requested TMDB id %d (request #%d, %s)\n", tmdbID, request.ID, request.Status)
	return nil
}
