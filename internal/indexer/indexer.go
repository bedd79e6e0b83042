// Package indexer loads the movie catalog into the similarity and keyword indices.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/keyword"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/tmdb"
)

// SeedCategories are the listings the catalog is built from, in order.
var SeedCategories = []tmdb.Category{tmdb.CategoryPopular, tmdb.CategoryTopRated}

// Catalog supplies listing pages.
type Catalog interface {
	FetchCatalog(ctx context.Context, cat tmdb.Category, page int) []models.Movie
}

// SimilarityLoader receives a freshly loaded catalog.
type SimilarityLoader interface {
	Load(records []models.Movie)
}

// Indexer loads catalog movies into the keyword index and, on Refresh, the similarity index.
type Indexer struct {
	catalog      Catalog
	keywordIndex keyword.MovieIndex
	spell        *keyword.SpellChecker
	pages        int
	logger       *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithPages sets how many pages of each seed listing are loaded.
func WithPages(n int) IndexerOption {
	return func(idx *Indexer) {
		if n > 0 {
			idx.pages = n
		}
	}
}

// WithSpellChecker registers a spell checker whose dictionary is refreshed after indexing.
func WithSpellChecker(s *keyword.SpellChecker) IndexerOption {
	return func(idx *Indexer) { idx.spell = s }
}

// NewIndexer creates an indexer. keywordIndex may be nil.
func NewIndexer(catalog Catalog, keywordIndex keyword.MovieIndex, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		catalog:      catalog,
		keywordIndex: keywordIndex,
		pages:        1,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Catalog fetches the seed listings and returns their movies deduplicated by id,
// keeping the first occurrence.
func (idx *Indexer) Catalog(ctx context.Context) []models.Movie {
	seen := make(map[int]struct{})
	var out []models.Movie
	for _, cat := range SeedCategories {
		for page := 1; page <= idx.pages; page++ {
			for _, m := range idx.catalog.FetchCatalog(ctx, cat, page) {
				if _, dup := seen[m.ID]; dup {
					continue
				}
				seen[m.ID] = struct{}{}
				m.Title = Preprocess(m.Title)
				m.Overview = Preprocess(m.Overview)
				out = append(out, m)
			}
		}
	}
	return out
}

// Seed loads the catalog and indexes it for keyword search. Keyword indexing failures
// are logged and do not affect the returned catalog. It satisfies similarity.SeedFunc.
func (idx *Indexer) Seed(ctx context.Context) []models.Movie {
	movies := idx.Catalog(ctx)
	if err := idx.IndexMovies(ctx, movies...); err != nil {
		idx.logger.Warn("indexer keyword indexing failed", zap.Error(err))
	}
	idx.logger.Debug("indexer catalog seeded", zap.Int("movies", len(movies)))
	return movies
}

// Refresh reloads the catalog into the keyword index and into sim. Returns the number
// of movies loaded.
func (idx *Indexer) Refresh(ctx context.Context, sim SimilarityLoader) (int, error) {
	movies := idx.Catalog(ctx)
	if len(movies) == 0 {
		return 0, fmt.Errorf("catalog is empty")
	}
	if err := idx.IndexMovies(ctx, movies...); err != nil {
		return 0, err
	}
	sim.Load(movies)
	return len(movies), nil
}

// IndexMovies adds movies to the keyword index.
func (idx *Indexer) IndexMovies(ctx context.Context, movies ...models.Movie) error {
	if idx.keywordIndex == nil || len(movies) == 0 {
		return nil
	}
	if err := idx.keywordIndex.Index(ctx, movies...); err != nil {
		return fmt.Errorf("failed to index keywords: %w", err)
	}
	if idx.spell != nil {
		idx.spell.Invalidate()
	}
	idx.logger.Debug("indexer movies indexed", zap.Int("count", len(movies)))
	return nil
}
