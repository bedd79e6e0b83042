// Package activity records favorites and watch history. Writes for one user are
// serialized; writes for different users run concurrently.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/metrics"
	"github.com/hyperjump/reelmatch/internal/models"
)

// ViewWindow is the minimum spacing between two recorded views of the same movie.
const ViewWindow = time.Hour

// Store is the persistence the recorder writes through.
type Store interface {
	IsFavorite(ctx context.Context, userID int64, movieID int) (bool, error)
	ToggleFavorite(ctx context.Context, userID int64, fav *models.Favorite) (bool, error)
	ListFavorites(ctx context.Context, userID int64) ([]*models.Favorite, error)
	RecordView(ctx context.Context, userID int64, entry *models.HistoryEntry, window time.Duration) (bool, error)
	ListHistory(ctx context.Context, userID int64) ([]*models.HistoryEntry, error)
	RemoveFromHistory(ctx context.Context, userID int64, movieID int) (int64, error)
	ClearHistory(ctx context.Context, userID int64) (int64, error)
}

// MovieFetcher resolves the movie snapshot stored alongside an interaction.
type MovieFetcher interface {
	FetchByID(ctx context.Context, id int) (*models.Movie, error)
}

// Recorder records user interactions.
type Recorder struct {
	store   Store
	movies  MovieFetcher
	window  time.Duration
	now     func() time.Time
	logger  *zap.Logger
	userMus sync.Map
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithClock replaces time.Now for view timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithViewWindow overrides ViewWindow.
func WithViewWindow(d time.Duration) Option {
	return func(r *Recorder) { r.window = d }
}

// NewRecorder creates a recorder over store, fetching snapshots from movies.
func NewRecorder(store Store, movies MovieFetcher, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		movies: movies,
		window: ViewWindow,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// acquireUserLock locks the per-user mutex.
func (r *Recorder) acquireUserLock(userID int64) *sync.Mutex {
	muInterface, _ := r.userMus.LoadOrStore(userID, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		mu = &sync.Mutex{}
		r.userMus.Store(userID, mu)
	}
	mu.Lock()
	return mu
}

// ToggleFavorite removes the favorite when present; otherwise fetches the movie and
// adds it. Returns true when the favorite was added. An unknown movie yields
// models.ErrNotFound.
func (r *Recorder) ToggleFavorite(ctx context.Context, userID int64, movieID int) (bool, error) {
	mu := r.acquireUserLock(userID)
	defer mu.Unlock()

	fav := &models.Favorite{MovieID: movieID}
	exists, err := r.store.IsFavorite(ctx, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	if !exists {
		m, err := r.movies.FetchByID(ctx, movieID)
		if err != nil {
			return false, fmt.Errorf("fetch movie %d: %w", movieID, err)
		}
		fav.MovieSnapshot(m)
		fav.AddedAt = r.now()
	}

	added, err := r.store.ToggleFavorite(ctx, userID, fav)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	result := "removed"
	if added {
		result = "added"
	}
	metrics.InteractionsRecorded.WithLabelValues(string(models.KindFavorited), result).Inc()
	r.logger.Debug("favorite toggled",
		zap.Int64("user_id", userID), zap.Int("movie_id", movieID), zap.Bool("added", added))
	return added, nil
}

// AddView records a view of movieID now. A view within the window of the previous
// view of the same movie is dropped; the return value reports whether a row was written.
func (r *Recorder) AddView(ctx context.Context, userID int64, movieID int) (bool, error) {
	return r.AddViewAt(ctx, userID, movieID, r.now())
}

// AddViewAt records a view with an explicit timestamp.
func (r *Recorder) AddViewAt(ctx context.Context, userID int64, movieID int, at time.Time) (bool, error) {
	m, err := r.movies.FetchByID(ctx, movieID)
	if err != nil {
		return false, fmt.Errorf("fetch movie %d: %w", movieID, err)
	}
	entry := &models.HistoryEntry{ViewedAt: at}
	entry.MovieSnapshot(m)

	mu := r.acquireUserLock(userID)
	defer mu.Unlock()

	recorded, err := r.store.RecordView(ctx, userID, entry, r.window)
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	result := "deduplicated"
	if recorded {
		result = "recorded"
	}
	metrics.InteractionsRecorded.WithLabelValues(string(models.KindViewed), result).Inc()
	r.logger.Debug("view recorded",
		zap.Int64("user_id", userID), zap.Int("movie_id", movieID), zap.Bool("recorded", recorded))
	return recorded, nil
}

// Favorites returns the user's favorites, newest first.
func (r *Recorder) Favorites(ctx context.Context, userID int64) ([]*models.Favorite, error) {
	return r.store.ListFavorites(ctx, userID)
}

// History returns the user's watch history, newest first.
func (r *Recorder) History(ctx context.Context, userID int64) ([]*models.HistoryEntry, error) {
	return r.store.ListHistory(ctx, userID)
}

// RemoveFromHistory deletes every view of movieID. Returns models.ErrNotFound when
// nothing was removed.
func (r *Recorder) RemoveFromHistory(ctx context.Context, userID int64, movieID int) error {
	mu := r.acquireUserLock(userID)
	defer mu.Unlock()

	n, err := r.store.RemoveFromHistory(ctx, userID, movieID)
	if err != nil {
		return fmt.Errorf("remove from history: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("movie %d in history: %w", movieID, models.ErrNotFound)
	}
	return nil
}

// ClearHistory deletes the whole history and returns the number of removed rows.
func (r *Recorder) ClearHistory(ctx context.Context, userID int64) (int64, error) {
	mu := r.acquireUserLock(userID)
	defer mu.Unlock()

	n, err := r.store.ClearHistory(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return n, nil
}
