// Package keyword provides the local full-text movie index used when upstream
// search returns nothing, plus query spelling suggestions drawn from its terms.
package keyword

import (
	"context"

	"github.com/hyperjump/reelmatch/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution of title matches. Values <= 1 disable it.
	TitleBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default 1.
	Fuzziness int
}

// MovieIndex defines full-text movie indexing and search.
type MovieIndex interface {
	Index(ctx context.Context, movies ...models.Movie) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]Hit, error)
	Delete(ctx context.Context, movieID int) error
	DocCount() (uint64, error)
	Close() error
}

// Hit is a single keyword search hit.
type Hit struct {
	MovieID int
	Score   float64
}

// TermDictionary exposes indexed terms with their document frequencies.
type TermDictionary interface {
	Terms() (map[string]int, error)
}
