// Package filter compiles expr-lang expressions into movie predicates.
package filter

import (
	"github.com/s0up4200/streamify/tmdb"
)

// Filter defines the basic interface for movie filters
type Filter interface {
	// Evaluate checks if a movie matches the filter criteria
	Evaluate(movie tmdb.Movie) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Apply returns the movies matching f, preserving order. A nil filter matches everything.
func Apply(f Filter, movies []tmdb.Movie) []tmdb.Movie {
	out := make([]tmdb.Movie, 0, len(movies))
	if f == nil {
		return append(out, movies...)
	}
	for _, m := range movies {
		if f.Evaluate(m) {
			out = append(out, m)
		}
	}
	return out
}
