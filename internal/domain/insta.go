package domain

import (
	"context"
	"time"
)

// InstaPost is a stored social-media post for a user. Posts are fetched
// best-effort after a profile update sets an instagram URL; a fetch failure
// never fails the profile update itself.
type InstaPost struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Code               string    `json:"code"`
	Caption            *string   `json:"caption,omitempty"`
	InstagramCreatedAt *int64    `json:"instagram_created_at,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// PostFetcher fetches recent posts for a social profile URL.
type PostFetcher interface {
	FetchPosts(ctx context.Context, profileURL string, amount int) ([]*InstaPost, error)
}

// InstaPostRepository defines storage operations for instagram posts.
type InstaPostRepository interface {
	// ExistingCodes returns the post codes already stored for the user.
	ExistingCodes(ctx context.Context, userID int64) (map[string]struct{}, error)
	InsertAll(ctx context.Context, posts []*InstaPost) error
}
