package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/reelmatch/internal/models"
)

func TestSQLiteStorage_RecordView_queryErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := newWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT viewed_at FROM watch_history").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	recorded, err := store.RecordView(context.Background(), 1, &models.HistoryEntry{MovieID: 5, Title: "x"}, time.Hour)
	assert.Error(t, err)
	assert.False(t, recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_RecordView_duplicateSkipsInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := newWithDB(db)

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT viewed_at FROM watch_history").
		WillReturnRows(sqlmock.NewRows([]string{"viewed_at"}).AddRow(at.Add(-30 * time.Minute)))
	mock.ExpectRollback()

	recorded, err := store.RecordView(context.Background(), 1, &models.HistoryEntry{MovieID: 5, ViewedAt: at}, time.Hour)
	assert.NoError(t, err)
	assert.False(t, recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_ToggleFavorite_deleteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := newWithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM favorites").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("DELETE FROM favorites").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	_, err = store.ToggleFavorite(context.Background(), 1, &models.Favorite{MovieID: 5})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_CountInteractions_unknownKind(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = newWithDB(db).CountInteractions(context.Background(), 1, models.InteractionKind("rated"))
	assert.Error(t, err)
}

func TestSQLiteStorage_UsersWhoInteracted_queryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM watch_history").WillReturnError(errors.New("boom"))
	_, err = newWithDB(db).UsersWhoInteracted(context.Background(), []int{1, 2})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
