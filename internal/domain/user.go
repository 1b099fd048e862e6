package domain

import (
	"context"
	"time"
)

// User represents a registered user with optional profile attributes and an
// optional selfie reference. The selfie fields are set only by image
// ingestion when an incoming image is flagged as a selfie.
// swagger:model User
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	SelfieURL    *string   `json:"selfie_url,omitempty"`
	SelfieCID    *string   `json:"selfie_cid,omitempty"`
	SelfieWidth  *int      `json:"selfie_width,omitempty"`
	SelfieHeight *int      `json:"selfie_height,omitempty"`
	InstagramURL *string   `json:"instagram_url,omitempty"`
	TwitterURL   *string   `json:"twitter_url,omitempty"`
	LinkedinURL  *string   `json:"linkedin_url,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Interests    *string   `json:"interests,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given credentials. ID is set by the
// repository on create.
func NewUser(username, passwordHash string, createdAt, updatedAt time.Time) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// UserPatch is a partial profile update. Only non-nil fields are applied,
// field by field; absent fields are left untouched.
type UserPatch struct {
	Email        *string `json:"email"`
	InstagramURL *string `json:"instagram_url"`
	TwitterURL   *string `json:"twitter_url"`
	LinkedinURL  *string `json:"linkedin_url"`
	Description  *string `json:"description"`
	Interests    *string `json:"interests"`
}

// SelfieRef is the selfie reference stored on a user after selfie ingestion.
type SelfieRef struct {
	URL    *string
	CID    *string
	Width  *int
	Height *int
}

// PasswordHasher handles hashing and verification of user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, username string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID int64, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, patch *UserPatch) (*User, error)
	SetSelfie(ctx context.Context, id int64, ref *SelfieRef) error
}

// UserService defines registration, login and profile operations.
type UserService interface {
	Register(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, patch *UserPatch) (*User, error)
}
