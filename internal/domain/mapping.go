package domain

import (
	"context"
	"time"
)

// RegionMapping is per-image, per-event crop/region metadata delivered by the
// provider-side pipeline. Rows are unique per (event_id, index_num,
// request_id); ingestion pre-checks that key in bulk and skips duplicates.
// Created only via bulk ingestion, never updated.
// swagger:model RegionMapping
type RegionMapping struct {
	ID          int64     `json:"id"`
	RequestID   int64     `json:"fotoowl_request_id"`
	EventID     int64     `json:"fotoowl_event_id"`
	ImageID     int64     `json:"fotoowl_image_id"`
	IndexNum    int       `json:"fotoowl_index_num"`
	X1          *float64  `json:"fotoowl_x1,omitempty"`
	X2          *float64  `json:"fotoowl_x2,omitempty"`
	Y1          *float64  `json:"fotoowl_y1,omitempty"`
	Y2          *float64  `json:"fotoowl_y2,omitempty"`
	AspectRatio *float64  `json:"fotoowl_aria_ratio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MappingKey is the composite uniqueness key for region mappings.
type MappingKey struct {
	EventID   int64 `json:"event_id"`
	IndexNum  int   `json:"index_num"`
	RequestID int64 `json:"request_id"`
}

// Key returns the mapping's composite uniqueness key.
func (m *RegionMapping) Key() MappingKey {
	return MappingKey{EventID: m.EventID, IndexNum: m.IndexNum, RequestID: m.RequestID}
}

// BulkInsertResult reports exact counts for a bulk ingestion call so callers
// can detect partial duplicate overlap without re-querying.
// Received = Inserted + Skipped always holds.
// swagger:model BulkInsertResult
type BulkInsertResult struct {
	Received    int          `json:"total_received"`
	Inserted    int          `json:"total_inserted"`
	Skipped     int          `json:"total_skipped"`
	SkippedKeys []MappingKey `json:"skipped_keys"`
}

// RegionMappingRepository defines storage operations for region mappings.
type RegionMappingRepository interface {
	// ExistingKeys returns the subset of keys already present, resolved in a
	// single bulk membership query.
	ExistingKeys(ctx context.Context, keys []MappingKey) (map[MappingKey]struct{}, error)
	// InsertBatch writes mappings in fixed-size chunks inside one
	// transaction; any chunk failure rolls back the entire batch.
	InsertBatch(ctx context.Context, mappings []*RegionMapping) error
	ListByEventID(ctx context.Context, fotoowlEventID int64) ([]*RegionMapping, error)
	GetByID(ctx context.Context, id int64) (*RegionMapping, error)
	DeleteByEventID(ctx context.Context, fotoowlEventID int64) (int64, error)
}

// MappingService defines bulk ingestion and administrative reads of region
// mappings.
type MappingService interface {
	BulkInsert(ctx context.Context, mappings []*RegionMapping) (*BulkInsertResult, error)
	ListByEventID(ctx context.Context, fotoowlEventID int64) ([]*RegionMapping, error)
	GetByID(ctx context.Context, id int64) (*RegionMapping, error)
	DeleteByEventID(ctx context.Context, fotoowlEventID int64) (int64, error)
}
