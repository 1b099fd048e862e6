package services

import (
	"context"
	"errors"
	"fmt"

	"echoo/internal/domain"
)

type imageService struct {
	imageRepo domain.ImageRepository
}

// NewImageService creates an ImageService over the given repository.
func NewImageService(imageRepo domain.ImageRepository) domain.ImageService {
	return &imageService{imageRepo: imageRepo}
}

func (s *imageService) Create(ctx context.Context, image *domain.Image, isSelfie bool) (*domain.Image, error) {
	if image.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := s.imageRepo.Create(ctx, image, isSelfie); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found for selfie update", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("create image: %w", err)
	}
	return image, nil
}

func (s *imageService) Update(ctx context.Context, id int64, patch *domain.ImagePatch, isSelfie bool) (*domain.Image, error) {
	image, err := s.imageRepo.Update(ctx, id, patch, isSelfie)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update image: %w", err)
	}
	return image, nil
}

func (s *imageService) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	image, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get image: %w", err)
	}
	return image, nil
}

func (s *imageService) ListForUser(ctx context.Context, userID int64, filter domain.ImageListFilter) ([]*domain.MatchedImage, error) {
	images, err := s.imageRepo.ListByUserID(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	result := make([]*domain.MatchedImage, 0, len(images))
	for _, img := range images {
		result = append(result, img.ToMatched())
	}
	return result, nil
}
