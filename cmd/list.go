package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/filter"
	"github.com/s0up4200/streamify/render"
	"github.com/s0up4200/streamify/tmdb"
)

var (
	minRating string
	pageNum   int
)

// popularCmd represents the popular command
var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List popular movies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd.Context(), browse.Query{})
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search movies by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := browse.Query{Text: strings.Join(args, " ")}
		if q.SearchTerm() == "" {
			return errors.New("search text is required")
		}
		return runListing(cmd.Context(), q)
	},
}

// genreCmd represents the genre command
var genreCmd = &cobra.Command{
	Use:   "genre <id|name>",
	Short: "List movies of one genre",
	Long: `List movies of one genre. The genre can be given by its TMDB id or by name,
for example "streamify genre 878" or "streamify genre 'science fiction'".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenre,
}

// genresCmd represents the genres command
var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the movie genres known to TMDB",
	Args:  cobra.NoArgs,
	RunE:  runGenres,
}

func init() {
	for _, c := range []*cobra.Command{popularCmd, searchCmd, genreCmd} {
		addFilterFlags(c)
		c.Flags().StringVarP(&minRating, "rating", "r", "all", "minimum rating (1-10 or all)")
		c.Flags().IntVar(&pageNum, "page", 1, "result page")
		c.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (table, json, yaml)")
		rootCmd.AddCommand(c)
	}

	genresCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (table, json, yaml)")
	rootCmd.AddCommand(genresCmd)
}

func runGenre(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	genres, err := tmdbClient.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch genres: %w", err)
	}

	name := strings.Join(args, " ")
	genre, ok := tmdb.FindGenre(genres, name)
	if !ok {
		return fmt.Errorf("%w: %q (run 'streamify genres' for the list)", browse.ErrInvalidGenre, name)
	}

	logger.Debug().Int("genre_id", genre.ID).Str("genre", genre.Name).Msg("Resolved genre")
	return runListing(ctx, browse.Query{GenreID: genre.ID})
}

func runGenres(cmd *cobra.Command, args []string) error {
	format, err := outputFormatFor()
	if err != nil {
		return err
	}

	genres, err := tmdbClient.Genres(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch genres: %w", err)
	}

	return render.WriteGenres(os.Stdout, format, genres)
}

// runListing fetches one page for q and prints it
func runListing(ctx context.Context, q browse.Query) error {
	format, err := outputFormatFor()
	if err != nil {
		return err
	}

	q.MinRating, err = browse.ParseRating(minRating)
	if err != nil {
		return err
	}

	f, err := resolveFilter()
	if err != nil {
		return err
	}

	logger.Info().Str("op", string(q.Operation())).Stringer("query", q).Int("page", pageNum).Msg("Fetching movies")

	var (
		page   *tmdb.MoviePage
		genres []tmdb.Genre
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = browse.Fetch(gctx, tmdbClient, q, pageNum)
		return err
	})
	g.Go(func() error {
		// genre names are cosmetic; a failure here only loses them
		list, err := tmdbClient.Genres(gctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to fetch genre names")
			return nil
		}
		genres = list
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Debug().Err(err).Msg("Fetch failed")
		return errors.New(tmdb.UserMessage(err))
	}

	movies := filter.Apply(f, page.Results)

	opts := renderOptions(genres)
	if annotator.Enabled() {
		opts.Badges = annotator.Annotate(ctx, movies)
	}

	if err := render.WriteMovies(os.Stdout, format, movies, opts); err != nil {
		return err
	}

	if format == render.FormatTable && page.HasMorePages() {
		fmt.Printf("\nPage %d of %d (%d results). Use --page for more.\n", page.Page, page.TotalPages, page.TotalResults)
	}
	return nil
}

func outputFormatFor() (render.Format, error) {
	if outputFormat != "" {
		return render.ParseFormat(outputFormat)
	}
	return render.ParseFormat(cfg.Display.Output)
}
