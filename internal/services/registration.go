package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"echoo/internal/domain"
)

type registrationService struct {
	userRepo  domain.UserRepository
	eventRepo domain.EventRepository
	regRepo   domain.RegistrationRepository
	imageRepo domain.ImageRepository
	provider  domain.MatchProvider
	selfies   domain.SelfieFetcher
	logger    *slog.Logger
}

// NewRegistrationService creates a RegistrationService with the given
// repositories, match provider client and selfie fetcher.
func NewRegistrationService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	imageRepo domain.ImageRepository,
	provider domain.MatchProvider,
	selfies domain.SelfieFetcher,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
		regRepo:   regRepo,
		imageRepo: imageRepo,
		provider:  provider,
		selfies:   selfies,
		logger:    logger,
	}
}

func (s *registrationService) Register(ctx context.Context, userID, fotoowlEventID int64) (*domain.Registration, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Pre-check gives a clean Conflict without burning a provider call; the
	// storage unique constraint still closes the race on insert.
	if _, err := s.regRepo.GetByUserAndEvent(ctx, userID, fotoowlEventID); err == nil {
		return nil, fmt.Errorf("%w: user already registered for event %d", domain.ErrConflict, fotoowlEventID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	if user.SelfieURL == nil || *user.SelfieURL == "" {
		return nil, fmt.Errorf("%w: user must have a selfie uploaded before registering for events", domain.ErrPreconditionFailed)
	}

	event, err := s.eventRepo.GetByFotoOwlEventID(ctx, fotoowlEventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: event not found for event_id %d", domain.ErrNotFound, fotoowlEventID)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.FotoOwlEventKey == nil || *event.FotoOwlEventKey == "" {
		return nil, fmt.Errorf("%w: missing event key for event_id %d", domain.ErrNotFound, fotoowlEventID)
	}

	selfiePath, cleanup, err := s.selfies.Fetch(ctx, *user.SelfieURL)
	if err != nil {
		return nil, fmt.Errorf("%w: download selfie: %v", domain.ErrInvalidInput, err)
	}
	defer cleanup()

	match, err := s.provider.CreateRequest(ctx, fotoowlEventID, *event.FotoOwlEventKey, selfiePath)
	if err != nil {
		return nil, fmt.Errorf("create match request: %w", err)
	}

	reg := &domain.Registration{
		FotoOwlEventID: fotoowlEventID,
		RequestID:      match.RequestID,
		RequestKey:     match.RequestKey,
		UserID:         userID,
		RedirectURL:    match.RedirectURL,
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: user already registered for event %d", domain.ErrConflict, fotoowlEventID)
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) ListMatchedImages(ctx context.Context, userID, fotoowlEventID int64, page, pageSize int) ([]*domain.MatchedImage, error) {
	reg, err := s.regRepo.GetByUserAndEvent(ctx, userID, fotoowlEventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user is not registered for event %d; register first", domain.ErrNotFound, fotoowlEventID)
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	event, err := s.eventRepo.GetByFotoOwlEventID(ctx, fotoowlEventID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil || event.FotoOwlEventKey == nil || *event.FotoOwlEventKey == "" {
		return nil, fmt.Errorf("%w: event key not found for event %d", domain.ErrInvalidInput, fotoowlEventID)
	}

	providerImages, err := s.provider.ImageList(ctx, fotoowlEventID, page, pageSize, *event.FotoOwlEventKey, reg.RequestID, reg.RequestKey)
	if err != nil {
		return nil, fmt.Errorf("fetch match list: %w", err)
	}
	if len(providerImages) == 0 {
		return []*domain.MatchedImage{}, nil
	}

	ids := make([]int64, len(providerImages))
	for i, img := range providerImages {
		ids[i] = img.ID
	}
	local, err := s.imageRepo.ListByFotoOwlImageIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load local images: %w", err)
	}
	localByID := make(map[int64]*domain.Image, len(local))
	for _, img := range local {
		if img.FotoOwlImageID != nil {
			localByID[*img.FotoOwlImageID] = img
		}
	}

	// Provider order is authoritative; no secondary sort. Local records win
	// over raw provider data, placeholders fill in for unmirrored matches.
	result := make([]*domain.MatchedImage, 0, len(providerImages))
	for _, pimg := range providerImages {
		if img, ok := localByID[pimg.ID]; ok {
			result = append(result, img.ToMatched())
			continue
		}
		result = append(result, synthesizeMatch(pimg, userID, fotoowlEventID))
	}
	return result, nil
}

// synthesizeMatch builds a placeholder entry for a match the mirroring job
// has not picked up yet: no local id, the provider URL serving as image_url.
func synthesizeMatch(pimg domain.ProviderImage, userID, fotoowlEventID int64) *domain.MatchedImage {
	fotoowlID := pimg.ID
	fotoowlURL := pimg.ImgURL
	description := fmt.Sprintf("Matched image from event %d", fotoowlEventID)
	return &domain.MatchedImage{
		ID:             nil,
		Name:           pimg.Name,
		UserID:         &userID,
		FotoOwlImageID: &fotoowlID,
		FotoOwlURL:     &fotoowlURL,
		Size:           pimg.Size,
		Width:          pimg.Width,
		Height:         pimg.Height,
		Description:    &description,
		EventID:        &fotoowlEventID,
		ImageURL:       &fotoowlURL,
	}
}

func (s *registrationService) GetRegistration(ctx context.Context, userID, fotoowlEventID int64) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByUserAndEvent(ctx, userID, fotoowlEventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no registration found for event %d", domain.ErrNotFound, fotoowlEventID)
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID int64) ([]*domain.Registration, error) {
	regs, err := s.regRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (s *registrationService) ListMyRegisteredEvents(ctx context.Context, userID int64) ([]*domain.RegisteredEvent, error) {
	items, err := s.regRepo.ListRegisteredEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	if items == nil {
		items = []*domain.RegisteredEvent{}
	}
	return items, nil
}
