// Package recommend provides the hybrid recommendation engine that merges content
// similarity and collaborative co-occurrence.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/config"
	"github.com/hyperjump/reelmatch/internal/metrics"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/tmdb"
)

// Result sources.
const (
	SourceHybrid   = "hybrid"
	SourceTrending = "trending"
)

// ContentIndex returns the movies most similar to a seed.
type ContentIndex interface {
	SimilarIDs(ctx context.Context, movieID, k int) []int
}

// CollaborativeSource returns co-occurrence candidates for a user.
type CollaborativeSource interface {
	CoOccurring(ctx context.Context, userID int64) ([]int, error)
}

// InteractionStore is the subset of storage the ranker reads.
type InteractionStore interface {
	CountInteractions(ctx context.Context, userID int64, kind models.InteractionKind) (int, error)
	LatestInteraction(ctx context.Context, userID int64) (*models.Interaction, error)
}

// Catalog supplies listing pages such as trending.
type Catalog interface {
	FetchCatalog(ctx context.Context, cat tmdb.Category, page int) []models.Movie
}

// Ranking is the outcome of one hybrid ranking pass.
type Ranking struct {
	Candidates   []models.ScoredCandidate
	Weights      config.Weights
	SeedMovieID  int
	ContentCount int
	CollabCount  int
	ViewCount    int
}

// Result is what callers serve: ranked ids or the trending fallback.
type Result struct {
	RequestID  string                   `json:"request_id"`
	Source     string                   `json:"source"`
	MovieIDs   []int                    `json:"movie_ids"`
	Candidates []models.ScoredCandidate `json:"candidates,omitempty"`
	Weights    *config.Weights          `json:"weights,omitempty"`
}

// Engine runs hybrid ranking.
type Engine struct {
	content ContentIndex
	collab  CollaborativeSource
	store   InteractionStore
	catalog Catalog
	tuning  atomic.Pointer[config.RecommendConfig]
	logger  *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a recommendation engine with the given dependencies.
func NewEngine(
	content ContentIndex,
	collab CollaborativeSource,
	store InteractionStore,
	catalog Catalog,
	cfg config.RecommendConfig,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		content: content,
		collab:  collab,
		store:   store,
		catalog: catalog,
		logger:  zap.NewNop(),
	}
	e.SetTuning(cfg)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetTuning swaps the ranker tunables. Safe to call while requests are in flight.
func (e *Engine) SetTuning(cfg config.RecommendConfig) {
	config.ApplyRecommendDefaults(&cfg)
	e.tuning.Store(&cfg)
}

// Tuning returns the current tunables.
func (e *Engine) Tuning() config.RecommendConfig {
	return *e.tuning.Load()
}

// Recommend returns up to the configured result limit of movie ids for req.
// An empty result means the caller should fall back to trending.
func (e *Engine) Recommend(ctx context.Context, req *models.RecommendationRequest) ([]int, error) {
	r, err := e.Rank(ctx, req)
	if err != nil {
		return nil, err
	}
	return IDs(r.Candidates), nil
}

// Rank computes content and collaborative candidates and fuses them.
// With an explicit seed, content candidates are the seed's neighbours. Without one, the
// user's most recent interaction is the seed; a user with no interactions gets no
// content candidates.
func (e *Engine) Rank(ctx context.Context, req *models.RecommendationRequest) (*Ranking, error) {
	start := time.Now()
	defer func() { metrics.RecommendationDuration.Observe(time.Since(start).Seconds()) }()
	tuning := e.Tuning()

	seed := 0
	hasSeed := false
	if req.HasSeed() {
		seed, hasSeed = *req.SeedMovieID, true
	} else {
		latest, err := e.store.LatestInteraction(ctx, req.UserID)
		switch {
		case err == nil:
			seed, hasSeed = latest.MovieID, true
		case errors.Is(err, models.ErrNotFound):
		default:
			return nil, fmt.Errorf("latest interaction: %w", err)
		}
	}

	var (
		contentIDs []int
		collabIDs  []int
		viewCount  int
		errChan    = make(chan error, 2)
		wg         sync.WaitGroup
	)

	if hasSeed {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contentIDs = e.content.SimilarIDs(ctx, seed, tuning.SimilarK)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ids, err := e.collab.CoOccurring(ctx, req.UserID)
		if err != nil {
			errChan <- fmt.Errorf("collaborative candidates: %w", err)
			return
		}
		collabIDs = ids
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err := e.store.CountInteractions(ctx, req.UserID, models.KindViewed)
		if err != nil {
			errChan <- fmt.Errorf("count views: %w", err)
			return
		}
		viewCount = n
	}()

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	weights := SelectWeights(viewCount, tuning)
	fused := Fuse(contentIDs, collabIDs, weights)
	if len(fused) > tuning.ResultLimit {
		fused = fused[:tuning.ResultLimit]
	}

	e.logger.Debug("recommend ranked",
		zap.String("request_id", req.RequestID),
		zap.Int64("user_id", req.UserID),
		zap.Int("seed_movie_id", seed),
		zap.Int("content", len(contentIDs)),
		zap.Int("collaborative", len(collabIDs)),
		zap.Int("views", viewCount),
		zap.Float64("content_weight", weights.Content),
		zap.Float64("collaborative_weight", weights.Collaborative),
		zap.Int("results", len(fused)),
	)

	return &Ranking{
		Candidates:   fused,
		Weights:      weights,
		SeedMovieID:  seed,
		ContentCount: len(contentIDs),
		CollabCount:  len(collabIDs),
		ViewCount:    viewCount,
	}, nil
}

// Trending returns the ids of the current trending listing.
func (e *Engine) Trending(ctx context.Context) []int {
	movies := e.catalog.FetchCatalog(ctx, tmdb.CategoryTrending, 1)
	limit := e.Tuning().ResultLimit
	ids := make([]int, 0, min(len(movies), limit))
	for _, m := range movies {
		if len(ids) == limit {
			break
		}
		ids = append(ids, m.ID)
	}
	return ids
}

// Suggest serves a recommendation request end to end. Users with no seed and no
// interactions get trending without ranking; an empty ranking also falls back to trending.
func (e *Engine) Suggest(ctx context.Context, req *models.RecommendationRequest) (*Result, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	if !req.HasSeed() {
		_, err := e.store.LatestInteraction(ctx, req.UserID)
		if errors.Is(err, models.ErrNotFound) {
			return e.trendingResult(ctx, req, "cold start"), nil
		}
		if err != nil {
			return nil, fmt.Errorf("latest interaction: %w", err)
		}
	}

	ranking, err := e.Rank(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(ranking.Candidates) == 0 {
		return e.trendingResult(ctx, req, "empty ranking"), nil
	}

	metrics.RecommendationsServed.WithLabelValues(SourceHybrid).Inc()
	w := ranking.Weights
	return &Result{
		RequestID:  req.RequestID,
		Source:     SourceHybrid,
		MovieIDs:   IDs(ranking.Candidates),
		Candidates: ranking.Candidates,
		Weights:    &w,
	}, nil
}

func (e *Engine) trendingResult(ctx context.Context, req *models.RecommendationRequest, reason string) *Result {
	e.logger.Debug("recommend falling back to trending",
		zap.String("request_id", req.RequestID), zap.Int64("user_id", req.UserID), zap.String("reason", reason))
	metrics.RecommendationsServed.WithLabelValues(SourceTrending).Inc()
	return &Result{
		RequestID: req.RequestID,
		Source:    SourceTrending,
		MovieIDs:  e.Trending(ctx),
	}
}
