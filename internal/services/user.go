package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"echoo/internal/domain"
)

const instaFetchAmount = 10

type userService struct {
	userRepo    domain.UserRepository
	instaRepo   domain.InstaPostRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
	postFetcher domain.PostFetcher
	logger      *slog.Logger
}

// NewUserService creates a UserService. postFetcher may be nil, in which case
// profile updates skip the social-posts enrichment entirely.
func NewUserService(
	userRepo domain.UserRepository,
	instaRepo domain.InstaPostRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	postFetcher domain.PostFetcher,
	logger *slog.Logger,
) domain.UserService {
	return &userService{
		userRepo:    userRepo,
		instaRepo:   instaRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
		postFetcher: postFetcher,
		logger:      logger,
	}
}

func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now()
	user := domain.NewUser(username, hash, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: username already registered", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Username, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the patch field by field. When the patch sets a
// non-empty instagram URL, recent posts are fetched and stored best-effort:
// a fetch or store failure is logged and never fails the profile update.
func (s *userService) UpdateProfile(ctx context.Context, userID int64, patch *domain.UserPatch) (*domain.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if patch.InstagramURL != nil && *patch.InstagramURL != "" {
		if err := s.fetchAndSavePosts(ctx, userID, *patch.InstagramURL); err != nil {
			s.logger.Warn("failed to fetch instagram posts after profile update", "user_id", userID, "err", err)
		}
	}
	return user, nil
}

func (s *userService) fetchAndSavePosts(ctx context.Context, userID int64, instagramURL string) error {
	if s.postFetcher == nil || s.instaRepo == nil {
		return nil
	}
	posts, err := s.postFetcher.FetchPosts(ctx, instagramURL, instaFetchAmount)
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	existing, err := s.instaRepo.ExistingCodes(ctx, userID)
	if err != nil {
		return fmt.Errorf("load existing post codes: %w", err)
	}
	newPosts := make([]*domain.InstaPost, 0, len(posts))
	for _, p := range posts {
		if _, ok := existing[p.Code]; ok {
			continue
		}
		existing[p.Code] = struct{}{}
		p.UserID = userID
		newPosts = append(newPosts, p)
	}
	if err := s.instaRepo.InsertAll(ctx, newPosts); err != nil {
		return fmt.Errorf("store posts: %w", err)
	}
	s.logger.Info("stored instagram posts", "user_id", userID, "new", len(newPosts), "skipped", len(posts)-len(newPosts))
	return nil
}
