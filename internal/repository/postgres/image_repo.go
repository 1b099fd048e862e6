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

type imageRepository struct {
	DB *sql.DB
}

func NewImageRepository(db *sql.DB) domain.ImageRepository {
	return &imageRepository{DB: db}
}

const imageColumns = `id, name, user_id, fotoowl_image_id, fotoowl_url, filecoin_url, filecoin_cid,
	size, width, height, description, image_encoding, event_id, created_at, updated_at`

func scanImage(row rowScanner) (*domain.Image, error) {
	img := &domain.Image{}
	var userID, fotoowlImageID, size, eventID sql.NullInt64
	var fotoowlURL, filecoinURL, filecoinCID, description, imageEncoding sql.NullString
	var width, height sql.NullInt64
	err := row.Scan(
		&img.ID, &img.Name, &userID, &fotoowlImageID, &fotoowlURL, &filecoinURL, &filecoinCID,
		&size, &width, &height, &description, &imageEncoding, &eventID, &img.CreatedAt, &img.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	img.UserID = nullInt64(userID)
	img.FotoOwlImageID = nullInt64(fotoowlImageID)
	img.FotoOwlURL = nullString(fotoowlURL)
	img.FilecoinURL = nullString(filecoinURL)
	img.FilecoinCID = nullString(filecoinCID)
	img.Size = nullInt64(size)
	img.Width = nullInt(width)
	img.Height = nullInt(height)
	img.Description = nullString(description)
	img.ImageEncoding = nullString(imageEncoding)
	img.EventID = nullInt64(eventID)
	return img, nil
}

// setSelfieTx mirrors the image's mirror reference onto the owning user row.
func setSelfieTx(ctx context.Context, tx *sql.Tx, img *domain.Image) error {
	query := `
		UPDATE users
		SET selfie_url = $1, selfie_cid = $2, selfie_width = $3, selfie_height = $4, updated_at = NOW()
		WHERE id = $5
	`
	result, err := tx.ExecContext(ctx, query, img.FilecoinURL, img.FilecoinCID, img.Width, img.Height, *img.UserID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *imageRepository) Create(ctx context.Context, img *domain.Image, setSelfie bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO images (name, user_id, fotoowl_image_id, fotoowl_url, filecoin_url, filecoin_cid,
			size, width, height, description, image_encoding, event_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query,
		img.Name, img.UserID, img.FotoOwlImageID, img.FotoOwlURL, img.FilecoinURL, img.FilecoinCID,
		img.Size, img.Width, img.Height, img.Description, img.ImageEncoding, img.EventID,
	).Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return err
	}

	if setSelfie && img.UserID != nil {
		if err := setSelfieTx(ctx, tx, img); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *imageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`
	img, err := scanImage(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return img, nil
}

func (r *imageRepository) Update(ctx context.Context, id int64, patch *domain.ImagePatch, setSelfie bool) (*domain.Image, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Name != nil {
		addSet("name", *patch.Name)
	}
	if patch.UserID != nil {
		addSet("user_id", *patch.UserID)
	}
	if patch.FotoOwlImageID != nil {
		addSet("fotoowl_image_id", *patch.FotoOwlImageID)
	}
	if patch.FotoOwlURL != nil {
		addSet("fotoowl_url", *patch.FotoOwlURL)
	}
	if patch.FilecoinURL != nil {
		addSet("filecoin_url", *patch.FilecoinURL)
	}
	if patch.FilecoinCID != nil {
		addSet("filecoin_cid", *patch.FilecoinCID)
	}
	if patch.Size != nil {
		addSet("size", *patch.Size)
	}
	if patch.Width != nil {
		addSet("width", *patch.Width)
	}
	if patch.Height != nil {
		addSet("height", *patch.Height)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.ImageEncoding != nil {
		addSet("image_encoding", *patch.ImageEncoding)
	}
	if patch.EventID != nil {
		addSet("event_id", *patch.EventID)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE images SET %s
		WHERE id = $%d
		RETURNING `+imageColumns+`
	`, strings.Join(setClauses, ", "), n)
	img, err := scanImage(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if setSelfie && img.UserID != nil {
		if err := setSelfieTx(ctx, tx, img); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *imageRepository) ListByUserID(ctx context.Context, userID int64, filter domain.ImageListFilter) ([]*domain.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE user_id = $1`
	args := []interface{}{userID}
	n := 2
	if filter.EventID != nil {
		query += fmt.Sprintf(" AND event_id = $%d", n)
		args = append(args, *filter.EventID)
		n++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, *filter.Limit)
		n++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]*domain.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *imageRepository) ListByFotoOwlImageIDs(ctx context.Context, fotoowlImageIDs []int64) ([]*domain.Image, error) {
	if len(fotoowlImageIDs) == 0 {
		return []*domain.Image{}, nil
	}
	query := `SELECT ` + imageColumns + ` FROM images WHERE fotoowl_image_id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(fotoowlImageIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]*domain.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
