package domain

import (
	"context"
	"time"
)

// Image is a locally-mirrored photo. FotoOwlImageID ties it to the match
// provider's copy; FilecoinURL/FilecoinCID reference the content-addressed
// mirror once mirroring has completed.
// swagger:model Image
type Image struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	UserID        *int64    `json:"user_id,omitempty"`
	FotoOwlImageID *int64   `json:"fotoowl_image_id,omitempty"`
	FotoOwlURL    *string   `json:"fotoowl_url,omitempty"`
	FilecoinURL   *string   `json:"filecoin_url,omitempty"`
	FilecoinCID   *string   `json:"filecoin_cid,omitempty"`
	Size          *int64    `json:"size,omitempty"`
	Width         *int      `json:"width,omitempty"`
	Height        *int      `json:"height,omitempty"`
	Description   *string   `json:"description,omitempty"`
	ImageEncoding *string   `json:"image_encoding,omitempty"`
	EventID       *int64    `json:"event_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ImageURL resolves the derived, non-persisted image URL: the mirror URL when
// present, otherwise the provider URL. Never stored.
func (i *Image) ImageURL() *string {
	if i.FilecoinURL != nil && *i.FilecoinURL != "" {
		return i.FilecoinURL
	}
	return i.FotoOwlURL
}

// ImagePatch is a partial image update. Only non-nil fields are applied.
type ImagePatch struct {
	Name          *string `json:"name"`
	UserID        *int64  `json:"user_id"`
	FotoOwlImageID *int64 `json:"fotoowl_image_id"`
	FotoOwlURL    *string `json:"fotoowl_url"`
	FilecoinURL   *string `json:"filecoin_url"`
	FilecoinCID   *string `json:"cid"`
	Size          *int64  `json:"size"`
	Width         *int    `json:"width"`
	Height        *int    `json:"height"`
	Description   *string `json:"description"`
	ImageEncoding *string `json:"image_encoding"`
	EventID       *int64  `json:"event_id"`
}

// MatchedImage is one entry in a reconciled match list. For images mirrored
// locally, ID is the local image id and the local metadata is used. For
// matches not yet mirrored, ID is nil and the provider's raw data fills in.
// swagger:model MatchedImage
type MatchedImage struct {
	ID            *int64     `json:"id"`
	Name          string     `json:"name"`
	UserID        *int64     `json:"user_id,omitempty"`
	FotoOwlImageID *int64    `json:"fotoowl_image_id,omitempty"`
	FotoOwlURL    *string    `json:"fotoowl_url,omitempty"`
	FilecoinURL   *string    `json:"filecoin_url,omitempty"`
	FilecoinCID   *string    `json:"filecoin_cid,omitempty"`
	Size          *int64     `json:"size,omitempty"`
	Width         *int       `json:"width,omitempty"`
	Height        *int       `json:"height,omitempty"`
	Description   *string    `json:"description,omitempty"`
	ImageEncoding *string    `json:"image_encoding,omitempty"`
	EventID       *int64     `json:"event_id,omitempty"`
	ImageURL      *string    `json:"image_url"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// ToMatched converts a stored image into the response shape with the derived
// image_url populated.
func (i *Image) ToMatched() *MatchedImage {
	id := i.ID
	createdAt := i.CreatedAt
	updatedAt := i.UpdatedAt
	return &MatchedImage{
		ID:             &id,
		Name:           i.Name,
		UserID:         i.UserID,
		FotoOwlImageID: i.FotoOwlImageID,
		FotoOwlURL:     i.FotoOwlURL,
		FilecoinURL:    i.FilecoinURL,
		FilecoinCID:    i.FilecoinCID,
		Size:           i.Size,
		Width:          i.Width,
		Height:         i.Height,
		Description:    i.Description,
		ImageEncoding:  i.ImageEncoding,
		EventID:        i.EventID,
		ImageURL:       i.ImageURL(),
		CreatedAt:      &createdAt,
		UpdatedAt:      &updatedAt,
	}
}

// ImageListFilter narrows a user's image listing.
type ImageListFilter struct {
	EventID *int64
	Limit   *int
	Offset  int
}

// ImageRepository defines the interface for image storage. When setSelfie is
// true and the image carries a user id, Create and Update also write the
// owner's selfie reference, committing image and user rows in one
// transaction.
type ImageRepository interface {
	Create(ctx context.Context, image *Image, setSelfie bool) error
	GetByID(ctx context.Context, id int64) (*Image, error)
	Update(ctx context.Context, id int64, patch *ImagePatch, setSelfie bool) (*Image, error)
	ListByUserID(ctx context.Context, userID int64, filter ImageListFilter) ([]*Image, error)
	ListByFotoOwlImageIDs(ctx context.Context, fotoowlImageIDs []int64) ([]*Image, error)
}

// ImageService defines image ingestion and listing.
type ImageService interface {
	// Create stores an image; when isSelfie is true and the image carries a
	// user id, the user's selfie reference is updated in the same transaction.
	Create(ctx context.Context, image *Image, isSelfie bool) (*Image, error)
	Update(ctx context.Context, id int64, patch *ImagePatch, isSelfie bool) (*Image, error)
	GetByID(ctx context.Context, id int64) (*Image, error)
	ListForUser(ctx context.Context, userID int64, filter ImageListFilter) ([]*MatchedImage, error)
}
