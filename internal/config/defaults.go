package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Server.RateLimitRequests == 0 {
		cfg.Server.RateLimitRequests = 20
	}
	if cfg.Server.RateLimitWindow == 0 {
		cfg.Server.RateLimitWindow = time.Minute
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/reelmatch/data/db/reelmatch.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/reelmatch/data/indices/bleve"
	}
	if cfg.TMDB.BaseURL == "" {
		cfg.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.TMDB.Timeout == 0 {
		cfg.TMDB.Timeout = 10 * time.Second
	}
	if cfg.TMDB.Retries == 0 {
		cfg.TMDB.Retries = 2
	}
	if cfg.TMDB.RetryDelay == 0 {
		cfg.TMDB.RetryDelay = 500 * time.Millisecond
	}
	if cfg.TMDB.RequestsPerSecond == 0 {
		cfg.TMDB.RequestsPerSecond = 20
	}
	if cfg.TMDB.TrendingWindow == "" {
		cfg.TMDB.TrendingWindow = "week"
	}
	if cfg.TMDB.CacheSize == 0 {
		cfg.TMDB.CacheSize = 2000
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = 12
	}
	ApplyRecommendDefaults(&cfg.Recommend)
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 400 * time.Millisecond
	}
}

// ApplyRecommendDefaults fills unset ranker tunables.
func ApplyRecommendDefaults(r *RecommendConfig) {
	if r.SimilarK == 0 {
		r.SimilarK = 10
	}
	if r.CollabLimit == 0 {
		r.CollabLimit = 10
	}
	if r.ResultLimit == 0 {
		r.ResultLimit = 20
	}
	if r.HistoryThreshold == 0 {
		r.HistoryThreshold = 10
	}
	if r.SparseWeights == (Weights{}) {
		r.SparseWeights = Weights{Content: 0.7, Collaborative: 0.3}
	}
	if r.EstablishedWeights == (Weights{}) {
		r.EstablishedWeights = Weights{Content: 0.4, Collaborative: 0.6}
	}
}

// DefaultRecommendConfig returns the ranker tunables with every default applied.
func DefaultRecommendConfig() RecommendConfig {
	var r RecommendConfig
	ApplyRecommendDefaults(&r)
	return r
}
