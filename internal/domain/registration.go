package domain

import (
	"context"
	"time"
)

// Registration ties one (user, fotoowl event) pair to the correlation
// identifiers returned by the match provider when the user's selfie was
// submitted. A user may register for a given event at most once; the
// registrations table carries a unique constraint on
// (user_id, fotoowl_event_id) and the repository maps its violation to
// ErrConflict. Never updated after creation.
// swagger:model Registration
type Registration struct {
	ID             int64     `json:"id"`
	FotoOwlEventID int64     `json:"fotoowl_event_id"`
	RequestID      int64     `json:"request_id"`
	RequestKey     string    `json:"request_key"`
	UserID         int64     `json:"user_id"`
	RedirectURL    *string   `json:"redirect_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RegisteredEvent is a registration enriched with the event row, when one
// exists locally for the same fotoowl event id.
type RegisteredEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// MatchRequest is the result of submitting a selfie to the match provider.
type MatchRequest struct {
	RequestID   int64
	RequestKey  string
	RedirectURL *string
}

// ProviderImage is one image entry from the provider's match list.
type ProviderImage struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	ImgURL string  `json:"img_url"`
	Width  *int    `json:"width"`
	Height *int    `json:"height"`
	Size   *int64  `json:"size"`
}

// MatchProvider is the external face-matching service. Both calls may fail
// with transport errors (ErrUnavailable) or a malformed/non-ok envelope
// (ErrInvalidInput); the provider is treated as untrusted.
type MatchProvider interface {
	// CreateRequest uploads the selfie at filePath for the given event and
	// returns the provider's correlation identifiers.
	CreateRequest(ctx context.Context, eventID int64, eventKey, filePath string) (*MatchRequest, error)
	// ImageList returns the matched images for a registration, in provider
	// order. page is zero-based; pageSize -1 requests all images (the
	// provider's convention, passed through verbatim).
	ImageList(ctx context.Context, eventID int64, page, pageSize int, eventKey string, requestID int64, requestKey string) ([]ProviderImage, error)
}

// SelfieFetcher downloads a stored selfie to a transient local file.
// The returned cleanup must be called on every exit path.
type SelfieFetcher interface {
	Fetch(ctx context.Context, url string) (path string, cleanup func(), err error)
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByUserAndEvent(ctx context.Context, userID, fotoowlEventID int64) (*Registration, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Registration, error)
	ListRegisteredEvents(ctx context.Context, userID int64) ([]*RegisteredEvent, error)
	DeleteByEventID(ctx context.Context, fotoowlEventID int64) (int64, error)
}

// RegistrationService orchestrates event registration against the match
// provider and reconciles its match lists with locally-mirrored images.
type RegistrationService interface {
	// Register submits the user's selfie to the match provider for the event
	// and persists the returned correlation identifiers.
	// Fails with ErrConflict when already registered, ErrPreconditionFailed
	// when the user has no selfie, ErrNotFound when no event with a provider
	// key exists for fotoowlEventID.
	Register(ctx context.Context, userID, fotoowlEventID int64) (*Registration, error)
	// ListMatchedImages fetches the provider's match list for the user's
	// registration and merges it against local image records, preserving
	// provider order and synthesizing placeholder entries for images not yet
	// mirrored locally.
	ListMatchedImages(ctx context.Context, userID, fotoowlEventID int64, page, pageSize int) ([]*MatchedImage, error)
	GetRegistration(ctx context.Context, userID, fotoowlEventID int64) (*Registration, error)
	ListMyRegistrations(ctx context.Context, userID int64) ([]*Registration, error)
	ListMyRegisteredEvents(ctx context.Context, userID int64) ([]*RegisteredEvent, error)
}
