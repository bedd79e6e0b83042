// Package server provides the HTTP API for reelmatch.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/auth"
	"github.com/hyperjump/reelmatch/internal/config"
	"github.com/hyperjump/reelmatch/internal/keyword"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/recommend"
	"github.com/hyperjump/reelmatch/internal/storage"
	"github.com/hyperjump/reelmatch/internal/tmdb"
)

var validate = validator.New()

// MovieGateway is the metadata API surface the handlers use.
type MovieGateway interface {
	FetchCatalog(ctx context.Context, cat tmdb.Category, page int) []models.Movie
	FetchGenre(ctx context.Context, name string, page int) ([]models.Movie, error)
	Search(ctx context.Context, query string, page int) []models.Movie
	Resolve(ctx context.Context, ids []int) []models.Movie
	Details(ctx context.Context, id int) (json.RawMessage, error)
	Videos(ctx context.Context, id int) (json.RawMessage, error)
	WatchProviders(ctx context.Context, id int) (json.RawMessage, error)
}

// Recommender serves recommendation requests.
type Recommender interface {
	Suggest(ctx context.Context, req *models.RecommendationRequest) (*recommend.Result, error)
	Trending(ctx context.Context) []int
}

// Recorder records favorites and watch history.
type Recorder interface {
	ToggleFavorite(ctx context.Context, userID int64, movieID int) (bool, error)
	AddView(ctx context.Context, userID int64, movieID int) (bool, error)
	Favorites(ctx context.Context, userID int64) ([]*models.Favorite, error)
	History(ctx context.Context, userID int64) ([]*models.HistoryEntry, error)
	RemoveFromHistory(ctx context.Context, userID int64, movieID int) error
	ClearHistory(ctx context.Context, userID int64) (int64, error)
}

// IndexStats reports the similarity index state.
type IndexStats interface {
	Generation() uint64
	Size() int
}

// Corrector suggests a corrected search query.
type Corrector interface {
	Correct(query string) (string, bool)
}

// MovieIndexer adds movies to the local search index.
type MovieIndexer interface {
	IndexMovies(ctx context.Context, movies ...models.Movie) error
}

// Deps are the server's collaborators. Keyword, Speller and Indexer may be nil.
type Deps struct {
	Storage   storage.Storage
	Gateway   MovieGateway
	Recommend Recommender
	Activity  Recorder
	Index     IndexStats
	Keyword   keyword.MovieIndex
	Speller   Corrector
	Indexer   MovieIndexer
	JWT       *auth.JWTManager
}

// Server is the HTTP server for the reelmatch API.
type Server struct {
	Deps
	config *config.Config
	authMW *auth.Middleware
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(deps Deps, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{Deps: deps, config: cfg, logger: logger}
	s.authMW = auth.NewMiddleware(deps.JWT, deps.Storage, s.respondError, logger)
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.config.Server.RateLimitRequests, s.config.Server.RateLimitWindow))
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.With(s.authMW.RequireUser).Get("/me", s.handleMe)
	})

	r.Get("/api/trending", s.handleTrending)
	r.Route("/api/movies", func(r chi.Router) {
		for _, name := range []string{"popular", "top_rated", "trending", "now_playing", "new_releases"} {
			r.Get("/"+name, s.handleCategory(name))
		}
		r.Get("/genre/{name}", s.handleGenre)
		r.Get("/search", s.handleSearch)

		r.Group(func(r chi.Router) {
			r.Use(s.authMW.RequireUser)
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/{id}", s.handleDetails)
			r.Get("/{id}/videos", s.handleVideos)
			r.Get("/{id}/watch/providers", s.handleWatchProviders)
		})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(s.authMW.RequireUser)
		r.Get("/favorites", s.handleFavorites)
		r.Post("/favorites/toggle", s.handleToggleFavorite)
		r.Get("/history", s.handleHistory)
		r.Post("/history/add", s.handleAddHistory)
		r.Delete("/history/{movieId}", s.handleRemoveHistory)
		r.Delete("/history", s.handleClearHistory)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
