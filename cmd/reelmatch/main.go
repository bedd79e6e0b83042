// Package main is the reelmatch CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/activity"
	"github.com/hyperjump/reelmatch/internal/auth"
	"github.com/hyperjump/reelmatch/internal/cli"
	"github.com/hyperjump/reelmatch/internal/collab"
	"github.com/hyperjump/reelmatch/internal/config"
	"github.com/hyperjump/reelmatch/internal/indexer"
	"github.com/hyperjump/reelmatch/internal/keyword"
	"github.com/hyperjump/reelmatch/internal/metrics"
	"github.com/hyperjump/reelmatch/internal/models"
	"github.com/hyperjump/reelmatch/internal/recommend"
	"github.com/hyperjump/reelmatch/internal/server"
	"github.com/hyperjump/reelmatch/internal/similarity"
	"github.com/hyperjump/reelmatch/internal/storage"
	"github.com/hyperjump/reelmatch/internal/tmdb"
	"github.com/hyperjump/reelmatch/internal/vector"
	"github.com/hyperjump/reelmatch/internal/watcher"
	"github.com/hyperjump/reelmatch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/reelmatch/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded (for watching).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "recommend":
		runRecommend()
	case "trending":
		runTrending()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("reelmatch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, creates the logger and initializes components for a subcommand.
func setup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, resolved, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	jwtManager, err := auth.NewJWTManager(cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to initialize auth", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch.EnabledOrDefault() {
		w := watcher.NewWatcher(resolvedConfigPath,
			func(path string) { reloadConfig(path, components, logger) },
			watcher.WithLogger(logger),
			watcher.WithDebounce(cfg.Watch.Debounce),
		)
		if err := w.Start(ctx); err != nil {
			logger.Warn("config watcher disabled", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	go func() {
		n, err := components.Indexer.Refresh(ctx, components.Similarity)
		if err != nil {
			logger.Warn("catalog warm-up failed; index will seed on first request", zap.Error(err))
			return
		}
		logger.Info("catalog loaded", zap.Int("movies", n))
	}()

	srv := server.NewServer(server.Deps{
		Storage:   components.Storage,
		Gateway:   components.Gateway,
		Recommend: components.Engine,
		Activity:  components.Activity,
		Index:     components.Similarity,
		Keyword:   components.KeywordIndex,
		Speller:   components.Speller,
		Indexer:   components.Indexer,
		JWT:       jwtManager,
	}, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// reloadConfig re-reads the config file and applies the recommendation tunables.
// Other sections need a restart.
func reloadConfig(path string, components *Components, logger *zap.Logger) {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Warn("config reload failed; keeping current settings", zap.String("path", path), zap.Error(err))
		return
	}
	components.ApplyTuning(cfg.Recommend)
	logger.Info("recommendation settings reloaded",
		zap.Int("similar_k", cfg.Recommend.SimilarK),
		zap.Int("collab_limit", cfg.Recommend.CollabLimit),
		zap.Int("history_threshold", cfg.Recommend.HistoryThreshold),
	)
}

// argsReorder moves flags before positional arguments so that
// "recommend 42 --movie 13" parses the same as "recommend --movie 13 42".
func argsReorder(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
			if !strings.Contains(a, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positional = append(positional, a)
	}
	if len(flags) == 0 {
		return args
	}
	return append(flags, positional...)
}

func parseFormat(raw string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	movieID := fs.Int("movie", 0, "seed movie id (default: the user's latest interaction)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: reelmatch recommend [flags] <user-id>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	format := parseFormat(*outputFormat)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	userID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || userID <= 0 {
		fmt.Fprintf(os.Stderr, "Invalid user id %q\n", fs.Arg(0))
		os.Exit(1)
	}

	_, _, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	req := &models.RecommendationRequest{UserID: userID}
	if *movieID > 0 {
		req.SeedMovieID = movieID
	}
	ctx := context.Background()
	result, err := components.Engine.Suggest(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommendation failed: %v\n", err)
		os.Exit(1)
	}
	list := &cli.MovieList{
		RequestID: result.RequestID,
		Source:    result.Source,
		Movies:    components.Gateway.Resolve(ctx, result.MovieIDs),
	}
	if err := cli.WriteMovies(os.Stdout, list, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runTrending() {
	fs := flag.NewFlagSet("trending", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	_, _, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	list := &cli.MovieList{
		Source: recommend.SourceTrending,
		Movies: components.Gateway.FetchCatalog(ctx, tmdb.CategoryTrending, 1),
	}
	if err := cli.WriteMovies(os.Stdout, list, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	DatabasePath   string `json:"database_path,omitempty"`
	BleveIndexPath string `json:"bleve_index_path,omitempty"`
	TrendingWindow string `json:"trending_window,omitempty"`
}

// statusResponse is the shape of GET /api/status.
type statusResponse struct {
	Users              int64                 `json:"users"`
	Interactions       int64                 `json:"interactions"`
	KeywordIndexMovies *uint64               `json:"keyword_index_movies,omitempty"`
	TMDBCircuit        string                `json:"tmdb_circuit,omitempty"`
	DiskUsageBytes     *int64                `json:"disk_usage_bytes,omitempty"`
	Config             *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:5000", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var status *statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	} else {
		cfg, _, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		res, err := collectStatus(context.Background(), cfg, components)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	}

	if format == cli.OutputJSON {
		if err := cli.WriteJSON(os.Stdout, status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, status)
}

// collectStatus reads status directly from storage and the local indices.
func collectStatus(ctx context.Context, cfg *config.Config, c *Components) (*statusResponse, error) {
	users, err := c.Storage.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	interactions, err := c.Storage.CountAllInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}
	status := &statusResponse{
		Users:        users,
		Interactions: interactions,
		TMDBCircuit:  c.Gateway.BreakerState(),
		Config: &statusConfigResponse{
			DatabasePath:   cfg.Storage.DatabasePath,
			BleveIndexPath: cfg.Storage.BleveIndexPath,
			TrendingWindow: cfg.TMDB.TrendingWindow,
		},
	}
	if n, err := c.KeywordIndex.DocCount(); err == nil {
		status.KeywordIndexMovies = &n
	}
	footprint, err := storage.DiskFootprint(map[string]string{
		"database":    cfg.Storage.DatabasePath,
		"bleve_index": cfg.Storage.BleveIndexPath,
	})
	if err == nil {
		status.DiskUsageBytes = &footprint.Total
	}
	return status, nil
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "users:                %d\n", status.Users)
	fmt.Fprintf(w, "interactions:         %d   # views + favorites\n", status.Interactions)
	if status.KeywordIndexMovies != nil {
		fmt.Fprintf(w, "keyword_index_movies: %d\n", *status.KeywordIndexMovies)
	}
	if status.TMDBCircuit != "" {
		fmt.Fprintf(w, "tmdb_circuit:         %s\n", status.TMDBCircuit)
	}
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:     %d   # database + keyword index on disk\n", *status.DiskUsageBytes)
	}
	if status.Config != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		if status.Config.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:        %s\n", status.Config.DatabasePath)
		}
		if status.Config.BleveIndexPath != "" {
			fmt.Fprintf(w, "bleve_index_path:     %s\n", status.Config.BleveIndexPath)
		}
		if status.Config.TrendingWindow != "" {
			fmt.Fprintf(w, "trending_window:      %s\n", status.Config.TrendingWindow)
		}
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage      *storage.SQLiteStorage
	Gateway      *tmdb.Client
	KeywordIndex *keyword.BleveIndex
	Speller      *keyword.SpellChecker
	Indexer      *indexer.Indexer
	Similarity   *similarity.Index
	Collab       *collab.Signal
	Engine       *recommend.Engine
	Activity     *activity.Recorder
}

// ApplyTuning swaps the recommendation tunables on the running engine and collaborative signal.
func (c *Components) ApplyTuning(r config.RecommendConfig) {
	config.ApplyRecommendDefaults(&r)
	c.Engine.SetTuning(r)
	c.Collab.SetLimit(r.CollabLimit)
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := ensureParentDir(cfg.Storage.BleveIndexPath); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to prepare keyword index directory: %w", err)
	}
	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	tfidf, err := vector.NewDefaultTFIDF()
	if err != nil {
		_ = store.Close()
		_ = keywordIndex.Close()
		return nil, fmt.Errorf("failed to initialize vectorizer: %w", err)
	}

	gateway := tmdb.NewClient(cfg.TMDB, tmdb.WithLogger(logger))
	if cfg.TMDB.APIKey == "" {
		logger.Warn("tmdb api key is not set; metadata requests will fail")
	}

	speller := keyword.NewSpellChecker(keywordIndex)
	idx := indexer.NewIndexer(gateway, keywordIndex,
		indexer.WithLogger(logger),
		indexer.WithSpellChecker(speller),
	)
	simIndex := similarity.NewIndex(gateway, tfidf,
		similarity.WithLogger(logger),
		similarity.WithSeed(idx.Seed),
		similarity.WithRebuildHook(metrics.RecordSimilarityRebuild),
	)
	signal := collab.NewSignal(store, cfg.Recommend.CollabLimit)
	engine := recommend.NewEngine(simIndex, signal, store, gateway, cfg.Recommend, recommend.WithLogger(logger))
	recorder := activity.NewRecorder(store, gateway, activity.WithLogger(logger))

	return &Components{
		Storage:      store,
		Gateway:      gateway,
		KeywordIndex: keywordIndex,
		Speller:      speller,
		Indexer:      idx,
		Similarity:   simIndex,
		Collab:       signal,
		Engine:       engine,
		Activity:     recorder,
	}, nil
}

// ensureParentDir creates the directory that will hold path.
func ensureParentDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func printUsage() {
	fmt.Println(`reelmatch - Movie discovery and recommendation backend

Usage:
  reelmatch server [flags]                 Start the HTTP API server
  reelmatch recommend [flags] <user-id>    Print recommendations for a user
  reelmatch trending [flags]               Print trending movies
  reelmatch status [flags]                 Show storage, index and upstream status
  reelmatch version                        Show version
  reelmatch help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/reelmatch/config.yaml)
  --debug            Enable debug logging

Recommend Flags:
  --config string    Config file path
  --movie int        Seed movie id (default: the user's most recent view or favorite)
  --output string    Output format: text or json (default: text)

Trending Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:5000). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Environment:
  TMDB_API_KEY            Overrides tmdb.api_key
  REELMATCH_JWT_SECRET    Overrides auth.jwt_secret

Examples:
  reelmatch server
  reelmatch recommend 42
  reelmatch recommend 42 --movie 603 --output json
  reelmatch trending
  reelmatch status --server ""`)
}
