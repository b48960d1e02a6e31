package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/s0up4200/streamify/tmdb"
)

// Format is an output format for one-shot commands
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: table, json, yaml)", s)
	}
}

// WriteMovies writes movies to w in the given format
func WriteMovies(w io.Writer, format Format, movies []tmdb.Movie, opts Options) error {
	switch format {
	case FormatJSON, FormatYAML:
		return encode(w, format, NewCards(movies, opts))
	default:
		_, err := io.WriteString(w, FormatGrid(movies, opts))
		return err
	}
}

// WriteGenres writes the genre list to w in the given format
func WriteGenres(w io.Writer, format Format, genres []tmdb.Genre) error {
	switch format {
	case FormatJSON, FormatYAML:
		return encode(w, format, genres)
	default:
		_, err := io.WriteString(w, FormatGenres(genres))
		return err
	}
}

func encode(w io.Writer, format Format, v any) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
