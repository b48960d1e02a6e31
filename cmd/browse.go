package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/render"
	"github.com/s0up4200/streamify/tmdb"
)

const browseHelp = `Type text to search, an empty line clears the search.

  :genre <id|name|all>   show one genre
  :rating <1-10|all>     minimum rating
  :clear                 reset search, genre and rating
  :retry                 reload popular movies and genres
  :genres                list genres
  :help                  show this help
  :quit                  leave
`

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse movies interactively",
	Long: `Start an interactive session. Popular movies are shown first; every line you
type becomes the search text and results refresh once you stop typing.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	addFilterFlags(browseCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

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

	updates, stop := session.Subscribe()
	defer stop()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printStates(ctx, os.Stdout, updates)
	}()

	interactive := isTerminal(os.Stdin)
	if interactive {
		fmt.Println("Type :help for commands.")
	}

	// a failed load is shown as a state; :retry recovers
	if err := session.Initialize(ctx); err != nil {
		logger.Debug().Err(err).Msg("Initial load failed")
	}

	lines := readLines(os.Stdin)
	eof := false
	for {
		if interactive {
			fmt.Print("> ")
		}

		var (
			line string
			ok   bool
		)
		select {
		case line, ok = <-lines:
			eof = !ok
		case <-ctx.Done():
		}
		if !ok {
			break
		}

		quit, err := handleBrowseLine(ctx, session, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if quit {
			break
		}
	}

	// piped input ends before the last search settles
	if eof {
		if err := session.Wait(ctx); err != nil {
			logger.Debug().Err(err).Msg("Stopped waiting for pending search")
		}
	}

	cancel()
	<-printed
	return nil
}

// handleBrowseLine applies one input line to the session
func handleBrowseLine(ctx context.Context, session *browse.Session, line string) (quit bool, err error) {
	if !strings.HasPrefix(line, ":") {
		session.SetSearchText(line)
		return false, nil
	}

	command, arg, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(line), ":"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case "q", "quit", "exit":
		return true, nil
	case "h", "help":
		fmt.Print(browseHelp)
	case "genre", "g":
		id, err := lookupGenre(session.Snapshot().Genres, arg)
		if err != nil {
			return false, err
		}
		session.SetGenre(id)
	case "rating", "r":
		r, err := browse.ParseRating(arg)
		if err != nil {
			return false, err
		}
		session.SetRating(r)
	case "clear":
		session.SetQuery(browse.Query{})
	case "retry":
		if err := session.Retry(ctx); err != nil {
			logger.Debug().Err(err).Msg("Retry failed")
		}
	case "genres":
		fmt.Print(render.FormatGenres(session.Snapshot().Genres))
	default:
		return false, fmt.Errorf("unknown command %q, type :help", command)
	}
	return false, nil
}

// lookupGenre accepts "all", an id or a genre name
func lookupGenre(genres []tmdb.Genre, arg string) (int, error) {
	if id, err := browse.ParseGenre(arg); err == nil {
		return id, nil
	}
	if g, ok := tmdb.FindGenre(genres, arg); ok {
		return g.ID, nil
	}
	return 0, fmt.Errorf("%w: %q", browse.ErrInvalidGenre, arg)
}

// printStates renders each fetch transition. Query edits alone are not printed.
func printStates(ctx context.Context, w io.Writer, updates <-chan browse.State) {
	var (
		lastStatus browse.Status
		lastGen    uint64
	)
	show := func(ctx context.Context, state browse.State) {
		if state.Status == lastStatus && state.Generation == lastGen {
			return
		}
		lastStatus, lastGen = state.Status, state.Generation

		opts := renderOptions(state.Genres)
		if state.Status == browse.StatusReady && annotator.Enabled() {
			opts.Badges = annotator.Annotate(ctx, state.Movies)
		}
		fmt.Fprint(w, render.FormatState(state, opts))
	}

	for {
		select {
		case state := <-updates:
			show(ctx, state)
		case <-ctx.Done():
			// flush the state committed just before shutdown
			select {
			case state := <-updates:
				show(context.WithoutCancel(ctx), state)
			default:
			}
			return
		}
	}
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
			logger.Debug().Err(err).Msg("Input closed")
		}
	}()
	return lines
}
