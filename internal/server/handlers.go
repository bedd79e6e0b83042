package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := s.Storage.CountUsers(ctx)
	if err != nil {
		s.logger.Error("status: count users failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	interactions, err := s.Storage.CountAllInteractions(ctx)
	if err != nil {
		s.logger.Error("status: count interactions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"users":        users,
		"interactions": interactions,
	}
	if s.Index != nil {
		resp["similarity_index"] = map[string]interface{}{
			"generation": s.Index.Generation(),
			"movies":     s.Index.Size(),
		}
	}
	if s.Keyword != nil {
		if n, err := s.Keyword.DocCount(); err == nil {
			resp["keyword_index_movies"] = n
		}
	}
	if b, ok := s.Gateway.(interface{ BreakerState() string }); ok {
		resp["tmdb_circuit"] = b.BreakerState()
	}

	configInfo := map[string]interface{}{
		"database_path":    s.config.Storage.DatabasePath,
		"bleve_index_path": s.config.Storage.BleveIndexPath,
		"trending_window":  s.config.TMDB.TrendingWindow,
	}
	footprint, err := storage.DiskFootprint(map[string]string{
		"database":    s.config.Storage.DatabasePath,
		"bleve_index": s.config.Storage.BleveIndexPath,
	})
	if err == nil {
		resp["disk_usage_bytes"] = footprint.Total
		resp["disk_usage"] = footprint.Paths
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}
