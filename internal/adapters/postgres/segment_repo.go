package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/pkg/geospatial"
)

// SegmentRepo implements ports.SegmentRepository.
type SegmentRepo struct {
	db *DB
}

func NewSegmentRepo(db *DB) *SegmentRepo { return &SegmentRepo{db: db} }

func (r *SegmentRepo) Insert(ctx context.Context, segment *domain.Segment) error {
	points, err := json.Marshal(segment.Points)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}
	surfaces, err := json.Marshal(segment.Attrs.Surfaces)
	if err != nil {
		return fmt.Errorf("encode surfaces: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO segments (id, track_id, name, points,
		                      bounds_north, bounds_south, bounds_east, bounds_west,
		                      difficulty, surfaces, tire_dry, tire_wet, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, segment.ID, segment.TrackID, segment.Name, points,
		segment.Bounds.North, segment.Bounds.South, segment.Bounds.East, segment.Bounds.West,
		segment.Attrs.DifficultyLevel, surfaces,
		segment.Attrs.TireDry.String(), segment.Attrs.TireWet.String(), segment.CreatedAt)
	return err
}

func (r *SegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, track_id, name, points,
		       bounds_north, bounds_south, bounds_east, bounds_west,
		       difficulty, surfaces, tire_dry, tire_wet, created_at
		FROM segments WHERE id = $1
	`, id)
	seg, err := scanSegment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return seg, nil
}

// FindNearby returns segments whose bounding box intersects a box of the
// given radius around a point. Box intersection over four indexed float
// columns is a deliberate approximation; it overselects near the corners,
// which is fine for a discovery listing.
func (r *SegmentRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Segment, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, track_id, name, points,
		       bounds_north, bounds_south, bounds_east, bounds_west,
		       difficulty, surfaces, tire_dry, tire_wet, created_at
		FROM segments
		WHERE bounds_south <= $1 AND bounds_north >= $2
		  AND bounds_west <= $3 AND bounds_east >= $4
		ORDER BY created_at DESC
		LIMIT $5
	`, maxLat, minLat, maxLon, minLon, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []domain.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}
	return segments, rows.Err()
}

func scanSegment(row pgx.Row) (*domain.Segment, error) {
	var (
		seg              domain.Segment
		points, surfaces []byte
		tireDry, tireWet string
	)
	err := row.Scan(&seg.ID, &seg.TrackID, &seg.Name, &points,
		&seg.Bounds.North, &seg.Bounds.South, &seg.Bounds.East, &seg.Bounds.West,
		&seg.Attrs.DifficultyLevel, &surfaces, &tireDry, &tireWet, &seg.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(points, &seg.Points); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	if err := json.Unmarshal(surfaces, &seg.Attrs.Surfaces); err != nil {
		return nil, fmt.Errorf("decode surfaces: %w", err)
	}
	if seg.Attrs.TireDry, err = domain.ParseTireRank(tireDry); err != nil {
		return nil, fmt.Errorf("decode tire_dry: %w", err)
	}
	if seg.Attrs.TireWet, err = domain.ParseTireRank(tireWet); err != nil {
		return nil, fmt.Errorf("decode tire_wet: %w", err)
	}
	return &seg, nil
}
