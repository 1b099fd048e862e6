package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"echoo/internal/domain"
)

func userRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "selfie_url", "selfie_cid", "selfie_width", "selfie_height",
		"instagram_url", "twitter_url", "linkedin_url", "description", "interests", "created_at", "updated_at",
	}).AddRow(int64(7), "alice", nil, "hash", "https://cdn/selfie.jpg", nil, nil, nil,
		nil, nil, nil, nil, nil, now, now)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "hash", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
			},
		},
		{
			name: "duplicate username maps to conflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			u := domain.NewUser("alice", "hash", now, now)
			err = repo.Create(ctx, u)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
				require.Equal(t, int64(7), u.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username`).
		WithArgs("alice").
		WillReturnRows(userRows(t))

	repo := NewUserRepository(db)
	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotNil(t, u.SelfieURL)
	require.Nil(t, u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	desc := "hello"
	insta := "https://instagram.com/alice"

	t.Run("only patched columns appear in SET", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE users SET updated_at = NOW\(\), instagram_url = \$1, description = \$2`).
			WithArgs(insta, desc, int64(7)).
			WillReturnRows(userRows(t))

		repo := NewUserRepository(db)
		u, err := repo.UpdateProfile(ctx, 7, &domain.UserPatch{InstagramURL: &insta, Description: &desc})
		require.NoError(t, err)
		require.Equal(t, "alice", u.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch reads the current row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
			WithArgs(int64(7)).
			WillReturnRows(userRows(t))

		repo := NewUserRepository(db)
		_, err = repo.UpdateProfile(ctx, 7, &domain.UserPatch{})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user maps to not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE users SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.UpdateProfile(ctx, 99, &domain.UserPatch{Description: &desc})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_SetSelfie(t *testing.T) {
	ctx := context.Background()
	url := "https://cdn/selfie.jpg"
	cid := "bafy123"
	w, h := 640, 480

	t.Run("updates the selfie columns", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE users`).
			WithArgs(url, cid, int64(640), int64(480), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		err = repo.SetSelfie(ctx, 7, &domain.SelfieRef{URL: &url, CID: &cid, Width: &w, Height: &h})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected maps to not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewUserRepository(db)
		err = repo.SetSelfie(ctx, 99, &domain.SelfieRef{URL: &url})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
