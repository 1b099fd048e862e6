package services

import (
	"context"
	"fmt"
	"log/slog"

	"echoo/internal/domain"
)

type mappingService struct {
	mappingRepo domain.RegionMappingRepository
	logger      *slog.Logger
}

// NewMappingService creates a MappingService over the given repository.
func NewMappingService(mappingRepo domain.RegionMappingRepository, logger *slog.Logger) domain.MappingService {
	return &mappingService{mappingRepo: mappingRepo, logger: logger}
}

// BulkInsert ingests region mappings with duplicate skipping. Duplicates are
// detected against stored rows via one bulk membership query and against
// earlier entries of the same batch; the surviving rows are written in
// chunks inside a single transaction, so a failing chunk rolls back the
// entire call.
func (s *mappingService) BulkInsert(ctx context.Context, mappings []*domain.RegionMapping) (*domain.BulkInsertResult, error) {
	result := &domain.BulkInsertResult{
		Received:    len(mappings),
		SkippedKeys: []domain.MappingKey{},
	}
	if len(mappings) == 0 {
		return result, nil
	}

	keys := make([]domain.MappingKey, len(mappings))
	for i, m := range mappings {
		keys[i] = m.Key()
	}
	existing, err := s.mappingRepo.ExistingKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("check existing mapping keys: %w", err)
	}

	seen := make(map[domain.MappingKey]struct{}, len(mappings))
	newMappings := make([]*domain.RegionMapping, 0, len(mappings))
	for _, m := range mappings {
		key := m.Key()
		_, dupStored := existing[key]
		_, dupBatch := seen[key]
		if dupStored || dupBatch {
			result.Skipped++
			result.SkippedKeys = append(result.SkippedKeys, key)
			s.logger.Info("skipping duplicate region mapping",
				"event_id", key.EventID, "index_num", key.IndexNum, "request_id", key.RequestID)
			continue
		}
		seen[key] = struct{}{}
		newMappings = append(newMappings, m)
	}

	if err := s.mappingRepo.InsertBatch(ctx, newMappings); err != nil {
		return nil, fmt.Errorf("insert mapping batch: %w", err)
	}
	result.Inserted = len(newMappings)

	s.logger.Info("bulk mapping insert completed",
		"received", result.Received, "inserted", result.Inserted, "skipped", result.Skipped)
	return result, nil
}

func (s *mappingService) ListByEventID(ctx context.Context, fotoowlEventID int64) ([]*domain.RegionMapping, error) {
	mappings, err := s.mappingRepo.ListByEventID(ctx, fotoowlEventID)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	if mappings == nil {
		mappings = []*domain.RegionMapping{}
	}
	return mappings, nil
}

func (s *mappingService) GetByID(ctx context.Context, id int64) (*domain.RegionMapping, error) {
	m, err := s.mappingRepo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	return m, nil
}

func (s *mappingService) DeleteByEventID(ctx context.Context, fotoowlEventID int64) (int64, error) {
	deleted, err := s.mappingRepo.DeleteByEventID(ctx, fotoowlEventID)
	if err != nil {
		return 0, fmt.Errorf("delete mappings: %w", err)
	}
	return deleted, nil
}
