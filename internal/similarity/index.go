// Package similarity provides the content similarity index: TF-IDF vectors over the loaded
// movie set and cosine nearest-neighbour lookup.
package similarity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/vector"
)

// DefaultK is the number of neighbours returned when k is not positive.
const DefaultK = 10

// Fetcher resolves a single movie record by id.
type Fetcher interface {
	FetchByID(ctx context.Context, id int) (*models.Movie, error)
}

// SeedFunc returns the initial catalog used when the index is queried before any Load.
type SeedFunc func(ctx context.Context) []models.Movie

// snapshot is one immutable generation of the index. It is never mutated once published.
// seeded is false while the snapshot holds only fetched movies and the seed catalog is
// still missing.
type snapshot struct {
	generation uint64
	seeded     bool
	movies     []models.Movie
	pos        map[int]int
	vectors    []vector.SparseVector
}

func (s *snapshot) lookup(id int) (int, bool) {
	i, ok := s.pos[id]
	return i, ok
}

// Index is the content similarity index. Queries read the current snapshot without locking;
// rebuilds are serialized and publish a new snapshot atomically.
type Index struct {
	fetcher    Fetcher
	seed       SeedFunc
	vectorizer vector.Vectorizer
	logger     *zap.Logger

	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
	rebuildMu  sync.Mutex
	onRebuild  func(generation uint64, size int)
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) IndexOption {
	return func(idx *Index) { idx.logger = l }
}

// WithSeed sets the function that lazily seeds an empty index.
func WithSeed(fn SeedFunc) IndexOption {
	return func(idx *Index) { idx.seed = fn }
}

// WithRebuildHook registers a callback invoked after each published rebuild.
func WithRebuildHook(fn func(generation uint64, size int)) IndexOption {
	return func(idx *Index) { idx.onRebuild = fn }
}

// NewIndex creates an empty index. fetcher resolves movies that are not loaded yet.
func NewIndex(fetcher Fetcher, vectorizer vector.Vectorizer, opts ...IndexOption) *Index {
	idx := &Index{
		fetcher:    fetcher,
		vectorizer: vectorizer,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Load replaces the loaded movie set and rebuilds every vector. Records are deduplicated
// by id; the first occurrence wins.
func (idx *Index) Load(records []models.Movie) {
	idx.rebuildMu.Lock()
	defer idx.rebuildMu.Unlock()
	idx.publish(records, true)
}

// Invalidate drops the current generation. The next query reseeds and rebuilds.
func (idx *Index) Invalidate() {
	idx.rebuildMu.Lock()
	defer idx.rebuildMu.Unlock()
	idx.current.Store(nil)
	idx.logger.Debug("similarity index invalidated")
}

// Generation returns the generation of the current snapshot, or 0 when nothing is loaded.
func (idx *Index) Generation() uint64 {
	if s := idx.current.Load(); s != nil {
		return s.generation
	}
	return 0
}

// Size returns the number of loaded movies.
func (idx *Index) Size() int {
	if s := idx.current.Load(); s != nil {
		return len(s.movies)
	}
	return 0
}

// Movie returns the loaded record for id, fetching and inserting it when absent.
// Inserting a movie triggers a full rebuild.
func (idx *Index) Movie(ctx context.Context, id int) (*models.Movie, error) {
	snap, err := idx.ensureMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	i, _ := snap.lookup(id)
	m := snap.movies[i]
	m.Genres = append([]string(nil), m.Genres...)
	return &m, nil
}

// Contains reports whether id is in the current snapshot. It never fetches.
func (idx *Index) Contains(id int) bool {
	s := idx.current.Load()
	if s == nil {
		return false
	}
	_, ok := s.lookup(id)
	return ok
}

// SimilarTo returns up to k movies most similar to movieID by cosine similarity, in
// descending score order with ties kept in load order. The seed itself is never returned.
// A movie that cannot be resolved yields an empty result.
func (idx *Index) SimilarTo(ctx context.Context, movieID, k int) []models.ScoredCandidate {
	if k <= 0 {
		k = DefaultK
	}
	snap, err := idx.ensureMovie(ctx, movieID)
	if err != nil {
		idx.logger.Debug("similarity seed unavailable", zap.Int("movie_id", movieID), zap.Error(err))
		return nil
	}
	seedPos, _ := snap.lookup(movieID)
	seed := snap.vectors[seedPos]

	scored := make([]models.ScoredCandidate, 0, len(snap.movies))
	for i, v := range snap.vectors {
		if i == seedPos {
			continue
		}
		score, err := vector.Cosine(seed, v)
		if err != nil {
			idx.logger.Error("similarity cosine failed", zap.Int("movie_id", snap.movies[i].ID), zap.Error(err))
			continue
		}
		scored = append(scored, models.ScoredCandidate{MovieID: snap.movies[i].ID, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// SimilarIDs is SimilarTo without scores.
func (idx *Index) SimilarIDs(ctx context.Context, movieID, k int) []int {
	scored := idx.SimilarTo(ctx, movieID, k)
	ids := make([]int, len(scored))
	for i, c := range scored {
		ids[i] = c.MovieID
	}
	return ids
}

// ensureMovie returns a snapshot that contains id, seeding the index and fetching the
// movie as needed. An unseeded snapshot retries the seed before every lookup.
func (idx *Index) ensureMovie(ctx context.Context, id int) (*snapshot, error) {
	s := idx.current.Load()
	if s == nil || !s.seeded {
		idx.ensureSeeded(ctx)
		s = idx.current.Load()
	}
	if s != nil {
		if _, ok := s.lookup(id); ok {
			return s, nil
		}
	}

	if idx.fetcher == nil {
		return nil, models.ErrNotFound
	}
	m, err := idx.fetcher.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.ID != id {
		return nil, fmt.Errorf("movie %d: %w", id, models.ErrNotFound)
	}

	idx.rebuildMu.Lock()
	defer idx.rebuildMu.Unlock()
	cur := idx.current.Load()
	if cur != nil {
		if _, ok := cur.lookup(id); ok {
			return cur, nil
		}
	}
	records, seeded := idx.seedLocked(ctx, cur)
	records = append(records, *m)
	return idx.publish(records, seeded), nil
}

func (idx *Index) ensureSeeded(ctx context.Context) {
	if idx.seed == nil {
		return
	}
	idx.rebuildMu.Lock()
	defer idx.rebuildMu.Unlock()
	cur := idx.current.Load()
	if cur != nil && cur.seeded {
		return
	}
	records, seeded := idx.seedLocked(ctx, cur)
	if !seeded {
		return
	}
	idx.publish(records, true)
}

// seedLocked returns the records a rebuild should start from: the seed catalog followed
// by the movies already in cur when cur is unseeded, or cur's movies as they are.
// The bool reports whether the result includes a seed catalog. Caller must hold rebuildMu.
func (idx *Index) seedLocked(ctx context.Context, cur *snapshot) ([]models.Movie, bool) {
	var existing []models.Movie
	if cur != nil {
		existing = cur.movies
		if cur.seeded {
			return append(make([]models.Movie, 0, len(existing)+1), existing...), true
		}
	}
	if idx.seed == nil {
		return append(make([]models.Movie, 0, len(existing)+1), existing...), true
	}
	seedMovies := idx.seed(ctx)
	if len(seedMovies) == 0 {
		idx.logger.Warn("similarity seed returned no movies", zap.Int("loaded", len(existing)))
		return append(make([]models.Movie, 0, len(existing)+1), existing...), false
	}
	records := make([]models.Movie, 0, len(seedMovies)+len(existing)+1)
	records = append(records, seedMovies...)
	records = append(records, existing...)
	return records, true
}

// publish builds and stores a new snapshot. Caller must hold rebuildMu.
func (idx *Index) publish(records []models.Movie, seeded bool) *snapshot {
	gen := idx.generation.Add(1)
	snap := &snapshot{
		generation: gen,
		seeded:     seeded,
		movies:     make([]models.Movie, 0, len(records)),
		pos:        make(map[int]int, len(records)),
	}
	for _, m := range records {
		if _, dup := snap.pos[m.ID]; dup {
			continue
		}
		snap.pos[m.ID] = len(snap.movies)
		snap.movies = append(snap.movies, m)
	}
	texts := make([]string, len(snap.movies))
	for i := range snap.movies {
		texts[i] = FeatureText(&snap.movies[i])
	}
	snap.vectors = idx.vectorizer.Vectorize(texts, gen)
	idx.current.Store(snap)

	idx.logger.Debug("similarity index rebuilt", zap.Uint64("generation", gen), zap.Int("movies", len(snap.movies)))
	if idx.onRebuild != nil {
		idx.onRebuild(gen, len(snap.movies))
	}
	return snap
}
