package postgres

import (
	"context"
	"database/sql"
	"errors"

	"echoo/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, name, description, cover_image_url, cover_image_width, cover_image_height,
	location, category, event_date, fotoowl_event_id, fotoowl_event_key, created_at, updated_at`

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var description, coverURL, location, category, fotoowlKey sql.NullString
	var coverWidth, coverHeight sql.NullInt64
	var fotoowlEventID sql.NullInt64
	var eventDate sql.NullTime
	err := row.Scan(
		&e.ID, &e.Name, &description, &coverURL, &coverWidth, &coverHeight,
		&location, &category, &eventDate, &fotoowlEventID, &fotoowlKey, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Description = nullString(description)
	e.CoverImageURL = nullString(coverURL)
	e.CoverImageWidth = nullInt(coverWidth)
	e.CoverImageHeight = nullInt(coverHeight)
	e.Location = nullString(location)
	e.Category = nullString(category)
	e.FotoOwlEventID = nullInt64(fotoowlEventID)
	e.FotoOwlEventKey = nullString(fotoowlKey)
	if eventDate.Valid {
		e.EventDate = &eventDate.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, cover_image_url, cover_image_width, cover_image_height,
			location, category, event_date, fotoowl_event_id, fotoowl_event_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.CoverImageURL, e.CoverImageWidth, e.CoverImageHeight,
		e.Location, e.Category, e.EventDate, e.FotoOwlEventID, e.FotoOwlEventKey, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByFotoOwlEventID(ctx context.Context, fotoowlEventID int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE fotoowl_event_id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, fotoowlEventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY event_date DESC NULLS LAST
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
