package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"echoo/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, password_hash, selfie_url, selfie_cid, selfie_width, selfie_height,
	instagram_url, twitter_url, linkedin_url, description, interests, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var email, selfieURL, selfieCID, instagramURL, twitterURL, linkedinURL, description, interests sql.NullString
	var selfieWidth, selfieHeight sql.NullInt64
	err := row.Scan(
		&u.ID, &u.Username, &email, &u.PasswordHash, &selfieURL, &selfieCID, &selfieWidth, &selfieHeight,
		&instagramURL, &twitterURL, &linkedinURL, &description, &interests, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Email = nullString(email)
	u.SelfieURL = nullString(selfieURL)
	u.SelfieCID = nullString(selfieCID)
	u.SelfieWidth = nullInt(selfieWidth)
	u.SelfieHeight = nullInt(selfieHeight)
	u.InstagramURL = nullString(instagramURL)
	u.TwitterURL = nullString(twitterURL)
	u.LinkedinURL = nullString(linkedinURL)
	u.Description = nullString(description)
	u.Interests = nullString(interests)
	return u, nil
}

func nullString(s sql.NullString) *string {
	if s.Valid {
		return &s.String
	}
	return nil
}

func nullInt(n sql.NullInt64) *int {
	if n.Valid {
		v := int(n.Int64)
		return &v
	}
	return nil
}

func nullInt64(n sql.NullInt64) *int64 {
	if n.Valid {
		return &n.Int64
	}
	return nil
}

func nullFloat(f sql.NullFloat64) *float64 {
	if f.Valid {
		return &f.Float64
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Email != nil {
		addSet("email", *patch.Email)
	}
	if patch.InstagramURL != nil {
		addSet("instagram_url", *patch.InstagramURL)
	}
	if patch.TwitterURL != nil {
		addSet("twitter_url", *patch.TwitterURL)
	}
	if patch.LinkedinURL != nil {
		addSet("linkedin_url", *patch.LinkedinURL)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Interests != nil {
		addSet("interests", *patch.Interests)
	}
	if n == 1 {
		// Nothing to update; return the current row.
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE id = $%d
		RETURNING `+userColumns+`
	`, strings.Join(setClauses, ", "), n)
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) SetSelfie(ctx context.Context, id int64, ref *domain.SelfieRef) error {
	query := `
		UPDATE users
		SET selfie_url = $1, selfie_cid = $2, selfie_width = $3, selfie_height = $4, updated_at = NOW()
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query, ref.URL, ref.CID, ref.Width, ref.Height, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
