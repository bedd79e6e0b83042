// Package collab derives "users who watched this also watched" candidates from
// interaction co-occurrence.
package collab

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/hyperjump/reelmatch/internal/models"
)

// DefaultLimit is the number of candidates returned when no limit is configured.
const DefaultLimit = 10

// Store is the subset of interaction storage the collaborative signal reads.
type Store interface {
	ListInteractions(ctx context.Context, userID int64, kind models.InteractionKind) ([]models.Interaction, error)
	UsersWhoInteracted(ctx context.Context, movieIDs []int) (map[int64]struct{}, error)
	InteractionsForUsers(ctx context.Context, userIDs []int64) ([]models.MovieUser, error)
}

// Signal computes co-occurrence candidates.
type Signal struct {
	store Store
	limit atomic.Int64
}

// NewSignal returns a Signal returning at most limit candidates.
func NewSignal(store Store, limit int) *Signal {
	s := &Signal{store: store}
	s.SetLimit(limit)
	return s
}

// SetLimit changes the maximum number of candidates returned.
func (s *Signal) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.limit.Store(int64(limit))
}

// CoOccurring returns movies that users sharing at least one movie with userID have
// viewed or favorited, excluding movies userID already interacted with. Every neighbour
// interaction row adds one to its movie's tally, so a movie both viewed and favorited by
// one neighbour counts twice. Results are ordered by tally descending, then id ascending.
func (s *Signal) CoOccurring(ctx context.Context, userID int64) ([]int, error) {
	seen := make(map[int]struct{})
	var mine []int
	for _, kind := range []models.InteractionKind{models.KindViewed, models.KindFavorited} {
		items, err := s.store.ListInteractions(ctx, userID, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s interactions: %w", kind, err)
		}
		for _, in := range items {
			if _, ok := seen[in.MovieID]; !ok {
				seen[in.MovieID] = struct{}{}
				mine = append(mine, in.MovieID)
			}
		}
	}
	if len(mine) == 0 {
		return []int{}, nil
	}

	users, err := s.store.UsersWhoInteracted(ctx, mine)
	if err != nil {
		return nil, fmt.Errorf("find neighbours: %w", err)
	}
	delete(users, userID)
	if len(users) == 0 {
		return []int{}, nil
	}
	neighbours := make([]int64, 0, len(users))
	for id := range users {
		neighbours = append(neighbours, id)
	}
	sort.Slice(neighbours, func(i, j int) bool { return neighbours[i] < neighbours[j] })

	rows, err := s.store.InteractionsForUsers(ctx, neighbours)
	if err != nil {
		return nil, fmt.Errorf("neighbour interactions: %w", err)
	}
	return Tally(rows, seen, int(s.limit.Load())), nil
}

// Tally counts rows per movie, skipping excluded movies, and returns up to limit ids by
// count descending then id ascending.
func Tally(rows []models.MovieUser, exclude map[int]struct{}, limit int) []int {
	counts := make(map[int]int)
	for _, r := range rows {
		if _, skip := exclude[r.MovieID]; skip {
			continue
		}
		counts[r.MovieID]++
	}
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
