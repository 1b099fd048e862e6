package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"echoo/internal/domain"
)

// mappingChunkSize bounds single-statement size and lock duration for bulk
// region-mapping inserts.
const mappingChunkSize = 500

type regionMappingRepository struct {
	DB *sql.DB
}

func NewRegionMappingRepository(db *sql.DB) domain.RegionMappingRepository {
	return &regionMappingRepository{DB: db}
}

const mappingColumns = `id, fotoowl_request_id, fotoowl_event_id, fotoowl_image_id, fotoowl_index_num,
	fotoowl_x1, fotoowl_x2, fotoowl_y1, fotoowl_y2, fotoowl_aria_ratio, created_at, updated_at`

func scanMapping(row rowScanner) (*domain.RegionMapping, error) {
	m := &domain.RegionMapping{}
	var x1, x2, y1, y2, ratio sql.NullFloat64
	err := row.Scan(
		&m.ID, &m.RequestID, &m.EventID, &m.ImageID, &m.IndexNum,
		&x1, &x2, &y1, &y2, &ratio, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.X1 = nullFloat(x1)
	m.X2 = nullFloat(x2)
	m.Y1 = nullFloat(y1)
	m.Y2 = nullFloat(y2)
	m.AspectRatio = nullFloat(ratio)
	return m, nil
}

// ExistingKeys resolves which (event_id, index_num, request_id) keys are
// already stored, in one query regardless of batch size.
func (r *regionMappingRepository) ExistingKeys(ctx context.Context, keys []domain.MappingKey) (map[domain.MappingKey]struct{}, error) {
	existing := make(map[domain.MappingKey]struct{})
	if len(keys) == 0 {
		return existing, nil
	}

	values := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)*3)
	for i, key := range keys {
		values = append(values, fmt.Sprintf("($%d::bigint, $%d::int, $%d::bigint)", i*3+1, i*3+2, i*3+3))
		args = append(args, key.EventID, key.IndexNum, key.RequestID)
	}
	query := fmt.Sprintf(`
		SELECT fotoowl_event_id, fotoowl_index_num, fotoowl_request_id
		FROM fotoowl_request_mapping
		WHERE (fotoowl_event_id, fotoowl_index_num, fotoowl_request_id) IN (VALUES %s)
	`, strings.Join(values, ","))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key domain.MappingKey
		if err := rows.Scan(&key.EventID, &key.IndexNum, &key.RequestID); err != nil {
			return nil, err
		}
		existing[key] = struct{}{}
	}
	return existing, rows.Err()
}

// InsertBatch writes the mappings in chunks of mappingChunkSize rows inside a
// single transaction: all-or-nothing across the whole batch, not per-chunk.
func (r *regionMappingRepository) InsertBatch(ctx context.Context, mappings []*domain.RegionMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for start := 0; start < len(mappings); start += mappingChunkSize {
		end := start + mappingChunkSize
		if end > len(mappings) {
			end = len(mappings)
		}
		chunk := mappings[start:end]

		values := make([]string, 0, len(chunk))
		args := make([]interface{}, 0, len(chunk)*9)
		for i, m := range chunk {
			base := i * 9
			values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, NOW(), NOW())",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
			args = append(args, m.RequestID, m.EventID, m.ImageID, m.IndexNum, m.X1, m.X2, m.Y1, m.Y2, m.AspectRatio)
		}
		query := fmt.Sprintf(`
			INSERT INTO fotoowl_request_mapping
				(fotoowl_request_id, fotoowl_event_id, fotoowl_image_id, fotoowl_index_num,
				 fotoowl_x1, fotoowl_x2, fotoowl_y1, fotoowl_y2, fotoowl_aria_ratio,
				 created_at, updated_at)
			VALUES %s
		`, strings.Join(values, ","))

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *regionMappingRepository) ListByEventID(ctx context.Context, fotoowlEventID int64) ([]*domain.RegionMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM fotoowl_request_mapping
		WHERE fotoowl_event_id = $1
		ORDER BY fotoowl_index_num ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, fotoowlEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := make([]*domain.RegionMapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *regionMappingRepository) GetByID(ctx context.Context, id int64) (*domain.RegionMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM fotoowl_request_mapping WHERE id = $1`
	m, err := scanMapping(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *regionMappingRepository) DeleteByEventID(ctx context.Context, fotoowlEventID int64) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM fotoowl_request_mapping WHERE fotoowl_event_id = $1`, fotoowlEventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
