package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/auth"
	"github.com/hyperjump/reelmatch/internal/keyword"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/tmdb"
)

const localSearchLimit = 20

var localSearchOptions = &keyword.SearchOptions{TitleBoost: 3, FuzzyEnabled: true, Fuzziness: 1}

func (s *Server) handleCategory(name string) http.HandlerFunc {
	cat, err := tmdb.ParseCategory(name)
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		page := pageParam(r)
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"page":    page,
			"results": s.Gateway.FetchCatalog(r.Context(), cat, page),
		})
	}
}

func (s *Server) handleGenre(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	page := pageParam(r)
	movies, err := s.Gateway.FetchGenre(r.Context(), name, page)
	if err != nil {
		if errors.Is(err, tmdb.ErrUnknownGenre) {
			s.respondError(w, http.StatusNotFound, "unknown genre")
			return
		}
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"genre":   name,
		"page":    page,
		"results": movies,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	ctx := r.Context()
	resp := map[string]interface{}{"query": query}

	movies := s.Gateway.Search(ctx, query, pageParam(r))
	if len(movies) > 0 {
		if s.Indexer != nil {
			if err := s.Indexer.IndexMovies(ctx, movies...); err != nil {
				s.logger.Warn("search: index upstream results failed", zap.Error(err))
			}
		}
		resp["source"] = "tmdb"
		resp["results"] = movies
		s.respondJSON(w, http.StatusOK, resp)
		return
	}

	resp["source"] = "local"
	resp["results"] = s.localSearch(ctx, query)
	if s.Speller != nil {
		if corrected, ok := s.Speller.Correct(query); ok {
			resp["suggestion"] = corrected
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// localSearch queries the keyword index and resolves hits to movies.
func (s *Server) localSearch(ctx context.Context, query string) []models.Movie {
	if s.Keyword == nil {
		return []models.Movie{}
	}
	hits, err := s.Keyword.Search(ctx, query, localSearchLimit, localSearchOptions)
	if err != nil {
		s.logger.Warn("local search failed", zap.String("query", query), zap.Error(err))
		return []models.Movie{}
	}
	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = h.MovieID
	}
	return s.Gateway.Resolve(ctx, ids)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	req := &models.RecommendationRequest{
		UserID:    user.ID,
		RequestID: middleware.GetReqID(r.Context()),
	}
	if raw := r.URL.Query().Get("movie_id"); raw != "" {
		id, err := parseMovieID(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.SeedMovieID = &id
	}

	result, err := s.Recommend.Suggest(r.Context(), req)
	if err != nil {
		s.logger.Error("recommendations failed",
			zap.String("request_id", req.RequestID), zap.Int64("user_id", user.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to compute recommendations")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"request_id": result.RequestID,
		"source":     result.Source,
		"weights":    result.Weights,
		"results":    s.Gateway.Resolve(r.Context(), result.MovieIDs),
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	ids := s.Recommend.Trending(r.Context())
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": s.Gateway.Resolve(r.Context(), ids),
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	s.passthrough(w, r, s.Gateway.Details)
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	s.passthrough(w, r, s.Gateway.Videos)
}

func (s *Server) handleWatchProviders(w http.ResponseWriter, r *http.Request) {
	s.passthrough(w, r, s.Gateway.WatchProviders)
}

// passthrough relays a raw upstream document for the {id} URL parameter.
func (s *Server) passthrough(w http.ResponseWriter, r *http.Request, fetch func(context.Context, int) (json.RawMessage, error)) {
	id, err := parseMovieID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := fetch(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "movie not found")
		return
	case err != nil:
		s.logger.Warn("metadata passthrough failed", zap.Int("movie_id", id), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "metadata service unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Movie-ID", strconv.Itoa(id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
