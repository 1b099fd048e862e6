package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"echoo/internal/domain"
)

func TestImageRepository_Create(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)
	mirrorURL := "https://mirror/a.jpg"
	now := time.Now()

	t.Run("plain insert commits without touching users", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO images`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(100), now, now))
		mock.ExpectCommit()

		repo := NewImageRepository(db)
		img := &domain.Image{Name: "a.jpg", UserID: &userID}
		require.NoError(t, repo.Create(ctx, img, false))
		require.Equal(t, int64(100), img.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("selfie insert updates the user in the same transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO images`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(100), now, now))
		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewImageRepository(db)
		img := &domain.Image{Name: "selfie.jpg", UserID: &userID, FilecoinURL: &mirrorURL}
		require.NoError(t, repo.Create(ctx, img, true))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("selfie update failure rolls back the image insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO images`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(100), now, now))
		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewImageRepository(db)
		img := &domain.Image{Name: "selfie.jpg", UserID: &userID}
		require.ErrorIs(t, repo.Create(ctx, img, true), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO images`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewImageRepository(db)
		require.Error(t, repo.Create(ctx, &domain.Image{Name: "a.jpg"}, false))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestImageRepository_ListByFotoOwlImageIDs(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	cols := []string{
		"id", "name", "user_id", "fotoowl_image_id", "fotoowl_url", "filecoin_url", "filecoin_cid",
		"size", "width", "height", "description", "image_encoding", "event_id", "created_at", "updated_at",
	}
	mock.ExpectQuery(`FROM images`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(100), "a.jpg", int64(7), int64(10), "https://provider/a.jpg", "https://mirror/a.jpg", nil,
				nil, nil, nil, nil, nil, nil, now, now))

	repo := NewImageRepository(db)
	images, err := repo.ListByFotoOwlImageIDs(ctx, []int64{10, 11})
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.NotNil(t, images[0].FotoOwlImageID)
	require.Equal(t, int64(10), *images[0].FotoOwlImageID)
	require.Equal(t, "https://mirror/a.jpg", *images[0].ImageURL())
	require.NoError(t, mock.ExpectationsWereMet())
}
