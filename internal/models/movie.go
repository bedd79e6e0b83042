// Package models defines core data structures for movies, users, interactions, and recommendations.
package models

import "strings"

// Movie is a normalized metadata record for a single film.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Genres      []string `json:"genres"`
	PosterPath  string   `json:"poster_path,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	VoteAverage float64  `json:"vote_average"`
}

// GenreLabel returns the genres joined with spaces.
func (m *Movie) GenreLabel() string {
	return strings.Join(m.Genres, " ")
}

// ScoredCandidate is a movie id with its combined recommendation score.
type ScoredCandidate struct {
	MovieID int     `json:"movie_id"`
	Score   float64 `json:"score"`
}

// RecommendationRequest asks for recommendations for a user, optionally
// anchored on a seed movie.
type RecommendationRequest struct {
	UserID      int64  `json:"user_id"`
	SeedMovieID *int   `json:"seed_movie_id,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// HasSeed reports whether the request carries an explicit seed movie.
func (r *RecommendationRequest) HasSeed() bool {
	return r.SeedMovieID != nil
}
