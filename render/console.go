package render

import (
	"fmt"
	"strings"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/tmdb"
)

const (
	// SkeletonCells is the number of placeholder cells shown while loading
	SkeletonCells = 12

	emptyTitle = "No movies found"
	emptyHint  = "Try adjusting your search or filters"

	errorTitle  = "Error"
	retryAction = "Try Again"

	overviewWidth = 100
)

// FormatGrid renders movies as a tree, or the empty placeholder
func FormatGrid(movies []tmdb.Movie, opts Options) string {
	if len(movies) == 0 {
		return fmt.Sprintf("\n%s\n%s\n", emptyTitle, emptyHint)
	}

	var sb strings.Builder

	sb.WriteString("\nMovie")
	if len(movies) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(movies))

	for i, movie := range movies {
		isLast := i == len(movies)-1
		writeCard(&sb, NewCard(movie, opts), isLast, opts.ShowDetails)

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatCard renders a single movie
func FormatCard(movie tmdb.Movie, opts Options) string {
	var sb strings.Builder
	writeCard(&sb, NewCard(movie, opts), true, true)
	return sb.String()
}

// FormatSkeleton renders the loading placeholder grid
func FormatSkeleton() string {
	var sb strings.Builder
	sb.WriteString("\nLoading movies...\n\n")
	for i := range SkeletonCells {
		prefix := "├"
		if i == SkeletonCells-1 {
			prefix = "╰"
		}
		fmt.Fprintf(&sb, "%s── %s (····)  ★ ·.·\n", prefix, strings.Repeat("░", 18))
	}
	return sb.String()
}

// FormatError renders the error panel; retry adds the retry action hint
func FormatError(message string, retry bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n╭─ %s\n", errorTitle)
	fmt.Fprintf(&sb, "│  %s\n", message)
	if retry {
		fmt.Fprintf(&sb, "│\n╰─ [%s] type :retry\n", retryAction)
	} else {
		sb.WriteString("╰─\n")
	}
	return sb.String()
}

// FormatState picks the panel for a session state: error, loading or results
func FormatState(state browse.State, opts Options) string {
	switch {
	case state.Failed():
		return FormatError(state.Error, true)
	case state.Loading():
		return FormatSkeleton()
	default:
		return FormatGrid(state.Movies, opts)
	}
}

// FormatGenres renders the genre list with ids
func FormatGenres(genres []tmdb.Genre) string {
	if len(genres) == 0 {
		return "No genres found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nGenres (%d):\n\n", len(genres))
	for i, g := range genres {
		prefix := "├"
		if i == len(genres)-1 {
			prefix = "╰"
		}
		fmt.Fprintf(&sb, "%s── %-6d %s\n", prefix, g.ID, g.Name)
	}
	return sb.String()
}

func writeCard(sb *strings.Builder, card Card, isLast, details bool) {
	prefix := "├"
	if isLast {
		prefix = "╰"
	}

	fmt.Fprintf(sb, "%s── %s (%s)  ★ %s", prefix, card.Title, card.Year, card.Rating)
	for _, label := range BadgeLabels(card.Library) {
		fmt.Fprintf(sb, "  [%s]", label)
	}
	sb.WriteString("\n")

	indent := "│   "
	if isLast {
		indent = "    "
	}

	if len(card.Genres) > 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(card.Genres, ", "))
	}

	if !details {
		return
	}

	fmt.Fprintf(sb, "%sTMDB: %d\n", indent, card.ID)
	fmt.Fprintf(sb, "%sPoster: %s\n", indent, card.Poster)
	if card.Library != nil && card.Library.RequestedBy != "" {
		fmt.Fprintf(sb, "%sRequested by: %s\n", indent, card.Library.RequestedBy)
	}
	if card.Overview != "" {
		fmt.Fprintf(sb, "%s%s\n", indent, truncate(card.Overview, overviewWidth))
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return strings.TrimSpace(string(r[:width-1])) + "…"
}
