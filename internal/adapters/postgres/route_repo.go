package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// RouteRepo implements ports.RouteRepository. The composed geometry is stored
// denormalized on the route row; the route_segments table keeps the ordered
// traversal list so the source of a route stays inspectable.
type RouteRepo struct {
	db *DB
}

func NewRouteRepo(db *DB) *RouteRepo { return &RouteRepo{db: db} }

func (r *RouteRepo) Insert(ctx context.Context, route *domain.Route) error {
	points, err := json.Marshal(route.Composite.Points)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}
	surfaces, err := json.Marshal(route.Attrs.Surfaces)
	if err != nil {
		return fmt.Errorf("encode surfaces: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO routes (id, name, points,
		                    bounds_north, bounds_south, bounds_east, bounds_west,
		                    barycenter_lat, barycenter_lon,
		                    difficulty, surfaces, tire_dry, tire_wet, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, route.ID, route.Name, points,
		route.Composite.Bounds.North, route.Composite.Bounds.South,
		route.Composite.Bounds.East, route.Composite.Bounds.West,
		route.Composite.Barycenter.Latitude, route.Composite.Barycenter.Longitude,
		route.Attrs.DifficultyLevel, surfaces,
		route.Attrs.TireDry.String(), route.Attrs.TireWet.String(), route.CreatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, ref := range route.Segments {
		batch.Queue(`
			INSERT INTO route_segments (route_id, position, segment_id, reversed)
			VALUES ($1, $2, $3, $4)
		`, route.ID, i, ref.SegmentID, ref.Reversed)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for range route.Segments {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("batch exec: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *RouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	var (
		rt               domain.Route
		points, surfaces []byte
		tireDry, tireWet string
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, points,
		       bounds_north, bounds_south, bounds_east, bounds_west,
		       barycenter_lat, barycenter_lon,
		       difficulty, surfaces, tire_dry, tire_wet, created_at
		FROM routes WHERE id = $1
	`, id).Scan(&rt.ID, &rt.Name, &points,
		&rt.Composite.Bounds.North, &rt.Composite.Bounds.South,
		&rt.Composite.Bounds.East, &rt.Composite.Bounds.West,
		&rt.Composite.Barycenter.Latitude, &rt.Composite.Barycenter.Longitude,
		&rt.Attrs.DifficultyLevel, &surfaces, &tireDry, &tireWet, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(points, &rt.Composite.Points); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	if err := json.Unmarshal(surfaces, &rt.Attrs.Surfaces); err != nil {
		return nil, fmt.Errorf("decode surfaces: %w", err)
	}
	if rt.Attrs.TireDry, err = domain.ParseTireRank(tireDry); err != nil {
		return nil, fmt.Errorf("decode tire_dry: %w", err)
	}
	if rt.Attrs.TireWet, err = domain.ParseTireRank(tireWet); err != nil {
		return nil, fmt.Errorf("decode tire_wet: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT segment_id, reversed FROM route_segments
		WHERE route_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref domain.RouteSegmentRef
		if err := rows.Scan(&ref.SegmentID, &ref.Reversed); err != nil {
			return nil, err
		}
		rt.Segments = append(rt.Segments, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rt, nil
}

// List returns routes newest first, without geometry.
func (r *RouteRepo) List(ctx context.Context, limit, offset int) ([]domain.Route, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       bounds_north, bounds_south, bounds_east, bounds_west,
		       barycenter_lat, barycenter_lon,
		       difficulty, surfaces, tire_dry, tire_wet, created_at
		FROM routes ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var (
			rt               domain.Route
			surfaces         []byte
			tireDry, tireWet string
		)
		if err := rows.Scan(&rt.ID, &rt.Name,
			&rt.Composite.Bounds.North, &rt.Composite.Bounds.South,
			&rt.Composite.Bounds.East, &rt.Composite.Bounds.West,
			&rt.Composite.Barycenter.Latitude, &rt.Composite.Barycenter.Longitude,
			&rt.Attrs.DifficultyLevel, &surfaces, &tireDry, &tireWet, &rt.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(surfaces, &rt.Attrs.Surfaces); err != nil {
			return nil, fmt.Errorf("decode surfaces: %w", err)
		}
		if rt.Attrs.TireDry, err = domain.ParseTireRank(tireDry); err != nil {
			return nil, fmt.Errorf("decode tire_dry: %w", err)
		}
		if rt.Attrs.TireWet, err = domain.ParseTireRank(tireWet); err != nil {
			return nil, fmt.Errorf("decode tire_wet: %w", err)
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}
