// Package storage defines the persistence interface for users, favorites, and watch history.
package storage

import (
	"context"
	"time"

	"github.com/hyperjump/reelmatch/internal/models"
)

// Storage defines account and interaction persistence operations.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Favorites
	IsFavorite(ctx context.Context, userID int64, movieID int) (bool, error)
	ToggleFavorite(ctx context.Context, userID int64, fav *models.Favorite) (added bool, err error)
	ListFavorites(ctx context.Context, userID int64) ([]*models.Favorite, error)

	// Watch history
	RecordView(ctx context.Context, userID int64, entry *models.HistoryEntry, window time.Duration) (recorded bool, err error)
	ListHistory(ctx context.Context, userID int64) ([]*models.HistoryEntry, error)
	RemoveFromHistory(ctx context.Context, userID int64, movieID int) (int64, error)
	ClearHistory(ctx context.Context, userID int64) (int64, error)

	// Interaction queries used by the recommender
	ListInteractions(ctx context.Context, userID int64, kind models.InteractionKind) ([]models.Interaction, error)
	LatestInteraction(ctx context.Context, userID int64) (*models.Interaction, error)
	CountInteractions(ctx context.Context, userID int64, kind models.InteractionKind) (int, error)
	UsersWhoInteracted(ctx context.Context, movieIDs []int) (map[int64]struct{}, error)
	InteractionsForUsers(ctx context.Context, userIDs []int64) ([]models.MovieUser, error)

	// Stats
	CountUsers(ctx context.Context) (int64, error)
	CountAllInteractions(ctx context.Context) (int64, error)

	Close() error
}
