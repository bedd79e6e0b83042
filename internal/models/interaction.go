package models

import (
	"fmt"
	"time"
)

// InteractionKind distinguishes the two recorded user signals.
type InteractionKind string

const (
	KindViewed    InteractionKind = "viewed"
	KindFavorited InteractionKind = "favorited"
)

// ParseInteractionKind validates a kind string.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch InteractionKind(s) {
	case KindViewed, KindFavorited:
		return InteractionKind(s), nil
	}
	return "", fmt.Errorf("unknown interaction kind %q", s)
}

// Interaction is a single user signal on a movie.
type Interaction struct {
	UserID    int64           `json:"user_id" db:"user_id"`
	MovieID   int             `json:"movie_id" db:"movie_id"`
	Kind      InteractionKind `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
}

// MovieUser pairs a movie with a user who interacted with it. Co-occurrence
// queries return one pair per interaction row.
type MovieUser struct {
	MovieID int   `db:"movie_id"`
	UserID  int64 `db:"user_id"`
}

// Favorite is a stored favorite with the movie snapshot taken when it was added.
type Favorite struct {
	ID          int64     `json:"id" db:"id"`
	MovieID     int       `json:"movieId" db:"movie_id"`
	Title       string    `json:"title" db:"movie_title"`
	PosterPath  string    `json:"posterPath" db:"poster_path"`
	ReleaseDate string    `json:"releaseDate" db:"release_date"`
	VoteAverage float64   `json:"voteAverage" db:"vote_average"`
	AddedAt     time.Time `json:"addedAt" db:"added_at"`
}

// HistoryEntry is a recorded view with the movie snapshot taken when it was watched.
type HistoryEntry struct {
	ID          int64     `json:"id" db:"id"`
	MovieID     int       `json:"movieId" db:"movie_id"`
	Title       string    `json:"title" db:"movie_title"`
	PosterPath  string    `json:"posterPath" db:"poster_path"`
	ReleaseDate string    `json:"releaseDate" db:"release_date"`
	VoteAverage float64   `json:"voteAverage" db:"vote_average"`
	ViewedAt    time.Time `json:"viewedAt" db:"viewed_at"`
}

// MovieSnapshot copies the listing fields of a movie onto a favorite.
func (f *Favorite) MovieSnapshot(m *Movie) {
	f.MovieID = m.ID
	f.Title = m.Title
	f.PosterPath = m.PosterPath
	f.ReleaseDate = m.ReleaseDate
	f.VoteAverage = m.VoteAverage
}

// MovieSnapshot copies the listing fields of a movie onto a history entry.
func (h *HistoryEntry) MovieSnapshot(m *Movie) {
	h.MovieID = m.ID
	h.Title = m.Title
	h.PosterPath = m.PosterPath
	h.ReleaseDate = m.ReleaseDate
	h.VoteAverage = m.VoteAverage
}
