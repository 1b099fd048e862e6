package postgres

import (
	"context"
	"database/sql"

	"echoo/internal/domain"
)

type instaPostRepository struct {
	DB *sql.DB
}

func NewInstaPostRepository(db *sql.DB) domain.InstaPostRepository {
	return &instaPostRepository{DB: db}
}

func (r *instaPostRepository) ExistingCodes(ctx context.Context, userID int64) (map[string]struct{}, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT code FROM user_insta_posts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[code] = struct{}{}
	}
	return codes, rows.Err()
}

func (r *instaPostRepository) InsertAll(ctx context.Context, posts []*domain.InstaPost) error {
	if len(posts) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO user_insta_posts (user_id, code, caption, instagram_created_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`
	for _, p := range posts {
		if err := tx.QueryRowContext(ctx, query, p.UserID, p.Code, p.Caption, p.InstagramCreatedAt).Scan(&p.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
