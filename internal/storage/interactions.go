package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/reelmatch/internal/models"
)

// maxInArgs bounds the number of ids bound into a single IN (...) list.
const maxInArgs = 400

// IsFavorite reports whether the user has favorited the movie.
func (s *SQLiteStorage) IsFavorite(ctx context.Context, userID int64, movieID int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ToggleFavorite removes the favorite when it exists and inserts fav otherwise.
// The check and the write run in one transaction. Returns true when the favorite was added.
func (s *SQLiteStorage) ToggleFavorite(ctx context.Context, userID int64, fav *models.Favorite) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, fav.MovieID,
	).Scan(&existing)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, existing); err != nil {
			return false, err
		}
		return false, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	if fav.AddedAt.IsZero() {
		fav.AddedAt = time.Now()
	}
	fav.AddedAt = fav.AddedAt.UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO favorites (user_id, movie_id, movie_title, poster_path, release_date, vote_average, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, fav.MovieID, fav.Title, fav.PosterPath, fav.ReleaseDate, fav.VoteAverage, fav.AddedAt,
	)
	if err != nil {
		return false, mapError(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		fav.ID = id
	}
	return true, tx.Commit()
}

// ListFavorites returns the user's favorites, newest first.
func (s *SQLiteStorage) ListFavorites(ctx context.Context, userID int64) ([]*models.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, movie_id, movie_title, poster_path, release_date, vote_average, added_at
		 FROM favorites WHERE user_id = ? ORDER BY added_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favs := make([]*models.Favorite, 0)
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.MovieID, &f.Title, &f.PosterPath, &f.ReleaseDate, &f.VoteAverage, &f.AddedAt); err != nil {
			return nil, err
		}
		favs = append(favs, &f)
	}
	return favs, rows.Err()
}

// RecordView appends a view unless the most recent earlier view of the same movie by the
// same user happened less than window before entry.ViewedAt. The check and the insert run in
// one transaction. Returns true when the view was stored.
func (s *SQLiteStorage) RecordView(ctx context.Context, userID int64, entry *models.HistoryEntry, window time.Duration) (bool, error) {
	if entry.ViewedAt.IsZero() {
		entry.ViewedAt = time.Now()
	}
	at := entry.ViewedAt.UTC()
	entry.ViewedAt = at

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var last time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT viewed_at FROM watch_history
		 WHERE user_id = ? AND movie_id = ? AND viewed_at <= ?
		 ORDER BY viewed_at DESC, id DESC LIMIT 1`,
		userID, entry.MovieID, at,
	).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, err
	default:
		if at.Sub(last) < window {
			return false, nil
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO watch_history (user_id, movie_id, movie_title, poster_path, release_date, vote_average, viewed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, entry.MovieID, entry.Title, entry.PosterPath, entry.ReleaseDate, entry.VoteAverage, at,
	)
	if err != nil {
		return false, mapError(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return true, tx.Commit()
}

// ListHistory returns the user's views, newest first.
func (s *SQLiteStorage) ListHistory(ctx context.Context, userID int64) ([]*models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, movie_id, movie_title, poster_path, release_date, vote_average, viewed_at
		 FROM watch_history WHERE user_id = ? ORDER BY viewed_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.HistoryEntry, 0)
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.ID, &h.MovieID, &h.Title, &h.PosterPath, &h.ReleaseDate, &h.VoteAverage, &h.ViewedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}

// RemoveFromHistory deletes every view of the movie by the user and returns the number removed.
func (s *SQLiteStorage) RemoveFromHistory(ctx context.Context, userID int64, movieID int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watch_history WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearHistory deletes all of the user's views and returns the number removed.
func (s *SQLiteStorage) ClearHistory(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watch_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListInteractions returns the user's interactions of one kind, most recent first.
// Viewed interactions include repeated views of the same movie.
func (s *SQLiteStorage) ListInteractions(ctx context.Context, userID int64, kind models.InteractionKind) ([]models.Interaction, error) {
	var query string
	switch kind {
	case models.KindViewed:
		query = `SELECT movie_id, viewed_at FROM watch_history WHERE user_id = ? ORDER BY viewed_at DESC, id DESC`
	case models.KindFavorited:
		query = `SELECT movie_id, added_at FROM favorites WHERE user_id = ? ORDER BY added_at DESC, id DESC`
	default:
		return nil, fmt.Errorf("unknown interaction kind %q", kind)
	}
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Interaction
	for rows.Next() {
		in := models.Interaction{UserID: userID, Kind: kind}
		if err := rows.Scan(&in.MovieID, &in.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// LatestInteraction returns the user's most recent view or favorite.
// Returns models.ErrNotFound when the user has no interactions.
func (s *SQLiteStorage) LatestInteraction(ctx context.Context, userID int64) (*models.Interaction, error) {
	var latest *models.Interaction
	for _, q := range []struct {
		kind  models.InteractionKind
		query string
	}{
		{models.KindViewed, `SELECT movie_id, viewed_at FROM watch_history WHERE user_id = ? ORDER BY viewed_at DESC, id DESC LIMIT 1`},
		{models.KindFavorited, `SELECT movie_id, added_at FROM favorites WHERE user_id = ? ORDER BY added_at DESC, id DESC LIMIT 1`},
	} {
		in := models.Interaction{UserID: userID, Kind: q.kind}
		err := s.db.QueryRowContext(ctx, q.query, userID).Scan(&in.MovieID, &in.Timestamp)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if latest == nil || in.Timestamp.After(latest.Timestamp) {
			latest = &in
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}

// CountInteractions returns how many interactions of one kind the user has.
func (s *SQLiteStorage) CountInteractions(ctx context.Context, userID int64, kind models.InteractionKind) (int, error) {
	var query string
	switch kind {
	case models.KindViewed:
		query = `SELECT COUNT(*) FROM watch_history WHERE user_id = ?`
	case models.KindFavorited:
		query = `SELECT COUNT(*) FROM favorites WHERE user_id = ?`
	default:
		return 0, fmt.Errorf("unknown interaction kind %q", kind)
	}
	var count int
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

// CountAllInteractions returns the total number of stored views and favorites.
func (s *SQLiteStorage) CountAllInteractions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM watch_history) + (SELECT COUNT(*) FROM favorites)`,
	).Scan(&count)
	return count, err
}

// UsersWhoInteracted returns the set of users who viewed or favorited any of movieIDs.
func (s *SQLiteStorage) UsersWhoInteracted(ctx context.Context, movieIDs []int) (map[int64]struct{}, error) {
	users := make(map[int64]struct{})
	for start := 0; start < len(movieIDs); start += maxInArgs {
		end := min(start+maxInArgs, len(movieIDs))
		ids := toArgs(movieIDs[start:end])
		ph := placeholders(len(ids))
		query := `SELECT user_id FROM watch_history WHERE movie_id IN (` + ph + `)
			UNION
			SELECT user_id FROM favorites WHERE movie_id IN (` + ph + `)`
		rows, err := s.db.QueryContext(ctx, query, append(ids, ids...)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			users[id] = struct{}{}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return users, nil
}

// InteractionsForUsers returns one (movie, user) pair per view row and per favorite row of
// userIDs. Rows are not deduplicated: a movie both viewed and favorited by a user appears twice.
func (s *SQLiteStorage) InteractionsForUsers(ctx context.Context, userIDs []int64) ([]models.MovieUser, error) {
	var out []models.MovieUser
	for start := 0; start < len(userIDs); start += maxInArgs {
		end := min(start+maxInArgs, len(userIDs))
		ids := toArgs(userIDs[start:end])
		ph := placeholders(len(ids))
		query := `SELECT movie_id, user_id FROM watch_history WHERE user_id IN (` + ph + `)
			UNION ALL
			SELECT movie_id, user_id FROM favorites WHERE user_id IN (` + ph + `)`
		rows, err := s.db.QueryContext(ctx, query, append(ids, ids...)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var mu models.MovieUser
			if err := rows.Scan(&mu.MovieID, &mu.UserID); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, mu)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs[T int | int64](ids []T) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
