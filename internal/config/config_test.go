package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
tmdb:
  retry_delay: 250ms
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.TMDB.RetryDelay != 250*time.Millisecond {
		t.Errorf("retry_delay = %v, want 250ms", cfg.TMDB.RetryDelay)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/db/reelmatch.db"
  bleve_index_path: "./data/indices/bleve"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "reelmatch.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantBleve := filepath.Join(dir, "data", "indices", "bleve")
	if cfg.Storage.BleveIndexPath != wantBleve {
		t.Errorf("bleve_index_path = %s, want %s", cfg.Storage.BleveIndexPath, wantBleve)
	}
}

func TestLoad_envOverrides(t *testing.T) {
	t.Setenv(EnvTMDBAPIKey, "env-key")
	t.Setenv(EnvJWTSecret, "env-secret")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
tmdb:
  api_key: "file-key"
auth:
  jwt_secret: "file-secret"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Errorf("api_key = %q, want env-key", cfg.TMDB.APIKey)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("jwt_secret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("default cors origins: got %v", cfg.Server.CORSOrigins)
	}
	if cfg.TMDB.Retries != 2 || cfg.TMDB.RetryDelay != 500*time.Millisecond {
		t.Errorf("default retry policy: got %d / %v", cfg.TMDB.Retries, cfg.TMDB.RetryDelay)
	}
	if cfg.TMDB.TrendingWindow != "week" {
		t.Errorf("default trending window: got %s", cfg.TMDB.TrendingWindow)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("default token ttl: got %v", cfg.Auth.TokenTTL)
	}
	r := cfg.Recommend
	if r.SimilarK != 10 || r.CollabLimit != 10 || r.ResultLimit != 20 || r.HistoryThreshold != 10 {
		t.Errorf("recommend limits: got %+v", r)
	}
	if r.SparseWeights != (Weights{Content: 0.7, Collaborative: 0.3}) {
		t.Errorf("sparse weights: got %+v", r.SparseWeights)
	}
	if r.EstablishedWeights != (Weights{Content: 0.4, Collaborative: 0.6}) {
		t.Errorf("established weights: got %+v", r.EstablishedWeights)
	}
}

func TestApplyDefaults_keepsExplicitWeights(t *testing.T) {
	cfg := &Config{Recommend: RecommendConfig{SparseWeights: Weights{Content: 1, Collaborative: 0}}}
	ApplyDefaults(cfg)
	if cfg.Recommend.SparseWeights.Content != 1 || cfg.Recommend.SparseWeights.Collaborative != 0 {
		t.Errorf("explicit sparse weights overwritten: %+v", cfg.Recommend.SparseWeights)
	}
}

func TestWatchConfig_EnabledOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.EnabledOrDefault(); !got {
			t.Errorf("EnabledOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Enabled: &f}
		if got := w.EnabledOrDefault(); got {
			t.Errorf("EnabledOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
		TMDB:    TMDBConfig{RetryDelay: 750 * time.Millisecond},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.TMDB.RetryDelay != 750*time.Millisecond {
		t.Errorf("loaded retry_delay: got %v", loaded.TMDB.RetryDelay)
	}
}
