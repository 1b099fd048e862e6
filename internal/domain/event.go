package domain

import (
	"context"
	"time"
)

// Event represents a photo event. FotoOwlEventID identifies the event at the
// match provider; FotoOwlEventKey is the opaque key required to submit or
// query the provider for that event. Immutable once created except for
// descriptive fields.
// swagger:model Event
type Event struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      *string    `json:"description,omitempty"`
	CoverImageURL    *string    `json:"cover_image_url,omitempty"`
	CoverImageWidth  *int       `json:"cover_image_width,omitempty"`
	CoverImageHeight *int       `json:"cover_image_height,omitempty"`
	Location         *string    `json:"location,omitempty"`
	Category         *string    `json:"category,omitempty"`
	EventDate        *time.Time `json:"event_date,omitempty"`
	FotoOwlEventID   *int64     `json:"fotoowl_event_id,omitempty"`
	FotoOwlEventKey  *string    `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByFotoOwlEventID(ctx context.Context, fotoowlEventID int64) (*Event, error)
	List(ctx context.Context, limit, offset int) ([]*Event, error)
}

// EventService defines event management and public listing.
type EventService interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context, limit, offset int) ([]*Event, error)
}
