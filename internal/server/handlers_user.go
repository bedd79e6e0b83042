package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/auth"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/tmdb"
)

type movieRequest struct {
	MovieID int `json:"movieId" validate:"required,gt=0"`
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	favs, err := s.Activity.Favorites(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list favorites failed", zap.Int64("user_id", user.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if favs == nil {
		favs = []*models.Favorite{}
	}
	s.respondJSON(w, http.StatusOK, favs)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req movieRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	added, err := s.Activity.ToggleFavorite(r.Context(), user.ID, req.MovieID)
	if err != nil {
		s.respondActivityError(w, "toggle favorite", user.ID, req.MovieID, err)
		return
	}
	msg := "Removed from favorites"
	if added {
		msg = "Added to favorites"
	}
	s.respondMessage(w, http.StatusOK, msg, map[string]interface{}{"favorited": added})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	hist, err := s.Activity.History(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("list history failed", zap.Int64("user_id", user.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hist == nil {
		hist = []*models.HistoryEntry{}
	}
	s.respondJSON(w, http.StatusOK, hist)
}

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req movieRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	recorded, err := s.Activity.AddView(r.Context(), user.ID, req.MovieID)
	if err != nil {
		s.respondActivityError(w, "add history", user.ID, req.MovieID, err)
		return
	}
	msg := "Already in watch history"
	if recorded {
		msg = "Added to watch history"
	}
	s.respondMessage(w, http.StatusOK, msg, map[string]interface{}{"recorded": recorded})
}

func (s *Server) handleRemoveHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	movieID, err := parseMovieID(chi.URLParam(r, "movieId"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Activity.RemoveFromHistory(r.Context(), user.ID, movieID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "movie not in watch history")
			return
		}
		s.respondActivityError(w, "remove history", user.ID, movieID, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Removed from watch history", nil)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	n, err := s.Activity.ClearHistory(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("clear history failed", zap.Int64("user_id", user.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, http.StatusOK, "Watch history cleared", map[string]interface{}{"removed": n})
}

// respondActivityError maps recorder errors: unknown movies are 404, anything else
// from the metadata gateway is 502, storage failures are 500.
func (s *Server) respondActivityError(w http.ResponseWriter, op string, userID int64, movieID int, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "movie not found")
	case errors.Is(err, tmdb.ErrUnavailable):
		s.respondError(w, http.StatusBadGateway, "metadata service unavailable")
	default:
		s.logger.Error(op+" failed", zap.Int64("user_id", userID), zap.Int("movie_id", movieID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
