package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"echoo/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var redirectURL sql.NullString
	err := row.Scan(&reg.ID, &reg.FotoOwlEventID, &reg.RequestID, &reg.RequestKey, &reg.UserID, &redirectURL, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	reg.RedirectURL = nullString(redirectURL)
	return reg, nil
}

// Create inserts the registration. The table carries a unique constraint on
// (user_id, fotoowl_event_id); a violation maps to domain.ErrConflict so a
// race between two concurrent registration attempts yields exactly one row.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO event_request_mapping (fotoowl_event_id, request_id, request_key, user_id, redirect_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		reg.FotoOwlEventID, reg.RequestID, reg.RequestKey, reg.UserID, reg.RedirectURL,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByUserAndEvent(ctx context.Context, userID, fotoowlEventID int64) (*domain.Registration, error) {
	query := `
		SELECT id, fotoowl_event_id, request_id, request_key, user_id, redirect_url, created_at
		FROM event_request_mapping
		WHERE user_id = $1 AND fotoowl_event_id = $2
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, userID, fotoowlEventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.Registration, error) {
	query := `
		SELECT id, fotoowl_event_id, request_id, request_key, user_id, redirect_url, created_at
		FROM event_request_mapping
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// ListRegisteredEvents left-joins registrations against events on the
// fotoowl event id; the event may be nil when no local row mirrors it.
func (r *registrationRepository) ListRegisteredEvents(ctx context.Context, userID int64) ([]*domain.RegisteredEvent, error) {
	query := `
		SELECT m.id, m.fotoowl_event_id, m.request_id, m.request_key, m.user_id, m.redirect_url, m.created_at,
			e.id, e.name, e.description, e.cover_image_url, e.event_date, e.fotoowl_event_key
		FROM event_request_mapping m
		LEFT JOIN events e ON e.fotoowl_event_id = m.fotoowl_event_id
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.RegisteredEvent, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		var redirectURL sql.NullString
		var eventID sql.NullInt64
		var eventName, eventDescription, coverURL, fotoowlKey sql.NullString
		var eventDate sql.NullTime
		err := rows.Scan(
			&reg.ID, &reg.FotoOwlEventID, &reg.RequestID, &reg.RequestKey, &reg.UserID, &redirectURL, &reg.CreatedAt,
			&eventID, &eventName, &eventDescription, &coverURL, &eventDate, &fotoowlKey,
		)
		if err != nil {
			return nil, err
		}
		reg.RedirectURL = nullString(redirectURL)

		item := &domain.RegisteredEvent{Registration: reg}
		if eventID.Valid {
			ev := &domain.Event{
				ID:              eventID.Int64,
				Name:            eventName.String,
				Description:     nullString(eventDescription),
				CoverImageURL:   nullString(coverURL),
				FotoOwlEventID:  &reg.FotoOwlEventID,
				FotoOwlEventKey: nullString(fotoowlKey),
			}
			if eventDate.Valid {
				ev.EventDate = &eventDate.Time
			}
			item.Event = ev
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *registrationRepository) DeleteByEventID(ctx context.Context, fotoowlEventID int64) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM event_request_mapping WHERE fotoowl_event_id = $1`, fotoowlEventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
