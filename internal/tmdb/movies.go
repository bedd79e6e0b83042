package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/metrics"
	"github.com/hyperjump/reelmatch/internal/models"
)

// Category is a TMDb movie listing.
type Category string

const (
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "top_rated"
	CategoryTrending   Category = "trending"
	CategoryNowPlaying Category = "now_playing"
)

// ErrUnknownGenre is returned for genre names missing from the genre table.
var ErrUnknownGenre = errors.New("unknown genre")

// ParseCategory validates a listing name. "new_releases" is an alias for now_playing.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryPopular, CategoryTopRated, CategoryTrending, CategoryNowPlaying:
		return Category(s), nil
	case "new_releases":
		return CategoryNowPlaying, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c *Client) categoryPath(cat Category) (string, error) {
	switch cat {
	case CategoryPopular, CategoryTopRated, CategoryNowPlaying:
		return "movie/" + string(cat), nil
	case CategoryTrending:
		return "trending/movie/" + c.trendingWindow, nil
	}
	return "", fmt.Errorf("unknown category %q", cat)
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// movieResult is a movie as returned by listing and detail endpoints. Listings carry
// genre_ids; details carry genres.
type movieResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	GenreIDs    []int   `json:"genre_ids"`
	Genres      []genre `json:"genres"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type pageResponse struct {
	Page         int           `json:"page"`
	Results      []movieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

func (r *movieResult) normalize() models.Movie {
	m := models.Movie{
		ID:          r.ID,
		Title:       r.Title,
		Overview:    r.Overview,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
	}
	if len(r.Genres) > 0 {
		m.Genres = make([]string, 0, len(r.Genres))
		for _, g := range r.Genres {
			if g.Name != "" {
				m.Genres = append(m.Genres, g.Name)
			} else if name, ok := GenreName(g.ID); ok {
				m.Genres = append(m.Genres, name)
			}
		}
	} else {
		m.Genres = GenreLabels(r.GenreIDs)
	}
	return m
}

func hasResults(body []byte) bool {
	var probe struct {
		Results []json.RawMessage `json:"results"`
	}
	return json.Unmarshal(body, &probe) == nil && len(probe.Results) > 0
}

func pageParams(page int) url.Values {
	params := url.Values{}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	return params
}

// FetchByID returns the normalized movie. Results are cached. A missing movie yields
// models.ErrNotFound; exhausted retries yield ErrUnavailable.
func (c *Client) FetchByID(ctx context.Context, id int) (*models.Movie, error) {
	if m, ok := c.cache.Get(id); ok {
		metrics.MovieCacheHits.Inc()
		return m, nil
	}
	metrics.MovieCacheMisses.Inc()

	body, err := c.getWithRetry(ctx, "movie/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}
	res, err := decode[movieResult](body)
	if err != nil {
		return nil, err
	}
	if res.ID == 0 {
		return nil, fmt.Errorf("movie %d: %w", id, models.ErrNotFound)
	}
	m := res.normalize()
	c.cache.Set(&m)
	return &m, nil
}

// FetchCatalog returns one page of a listing. Empty listings are retried; any failure
// yields an empty slice.
func (c *Client) FetchCatalog(ctx context.Context, cat Category, page int) []models.Movie {
	path, err := c.categoryPath(cat)
	if err != nil {
		c.logger.Error("tmdb catalog", zap.Error(err))
		return []models.Movie{}
	}
	return c.fetchList(ctx, path, pageParams(page), true)
}

// FetchGenre returns one page of movies discovered by genre name.
func (c *Client) FetchGenre(ctx context.Context, name string, page int) ([]models.Movie, error) {
	id, ok := GenreID(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenre, name)
	}
	params := pageParams(page)
	params.Set("with_genres", strconv.Itoa(id))
	return c.fetchList(ctx, "discover/movie", params, true), nil
}

// Search returns movies whose title matches query. No results is a valid answer and
// is not retried.
func (c *Client) Search(ctx context.Context, query string, page int) []models.Movie {
	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")
	return c.fetchList(ctx, "search/movie", params, false)
}

func (c *Client) fetchList(ctx context.Context, path string, params url.Values, retryEmpty bool) []models.Movie {
	var accept func([]byte) bool
	if retryEmpty {
		accept = hasResults
	}
	body, err := c.getWithRetry(ctx, path, params, accept)
	if err != nil {
		c.logger.Warn("tmdb listing unavailable", zap.String("path", path), zap.Error(err))
		return []models.Movie{}
	}
	if body == nil {
		return []models.Movie{}
	}
	page, err := decode[pageResponse](body)
	if err != nil {
		c.logger.Warn("tmdb listing undecodable", zap.String("path", path), zap.Error(err))
		return []models.Movie{}
	}
	out := make([]models.Movie, 0, len(page.Results))
	for i := range page.Results {
		m := page.Results[i].normalize()
		if m.ID == 0 {
			continue
		}
		c.cache.Set(&m)
		out = append(out, m)
	}
	return out
}

// Resolve fetches the movies for ids concurrently, preserving order and skipping
// ids that cannot be resolved.
func (c *Client) Resolve(ctx context.Context, ids []int) []models.Movie {
	results := make([]*models.Movie, len(ids))
	sem := make(chan struct{}, 8)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			m, err := c.FetchByID(ctx, id)
			if err != nil {
				c.logger.Debug("tmdb resolve skipped movie", zap.Int("movie_id", id), zap.Error(err))
				return
			}
			results[i] = m
		}(i, id)
	}
	wg.Wait()

	out := make([]models.Movie, 0, len(ids))
	for _, m := range results {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}

// Details returns the raw movie document with credits appended.
func (c *Client) Details(ctx context.Context, id int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")
	return c.raw(ctx, "movie/"+strconv.Itoa(id), params)
}

// Videos returns the raw video listing for a movie.
func (c *Client) Videos(ctx context.Context, id int) (json.RawMessage, error) {
	return c.raw(ctx, "movie/"+strconv.Itoa(id)+"/videos", nil)
}

// WatchProviders returns the raw streaming provider listing for a movie.
func (c *Client) WatchProviders(ctx context.Context, id int) (json.RawMessage, error) {
	return c.raw(ctx, "movie/"+strconv.Itoa(id)+"/watch/providers", nil)
}

func (c *Client) raw(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	body, err := c.getWithRetry(ctx, path, params, json.Valid)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: invalid JSON from %s", ErrUnavailable, path)
	}
	return json.RawMessage(body), nil
}
