package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// TrackRepo implements ports.TrackRepository.
type TrackRepo struct {
	db *DB
}

func NewTrackRepo(db *DB) *TrackRepo { return &TrackRepo{db: db} }

func (r *TrackRepo) Insert(ctx context.Context, track *domain.Track) error {
	points, err := json.Marshal(track.Points)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO tracks (id, name, points, total_points, total_distance_km,
		                    total_elevation_gain, total_elevation_loss,
		                    bounds_north, bounds_south, bounds_east, bounds_west,
		                    elevation_min_m, elevation_max_m, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, track.ID, track.Name, points,
		track.Stats.TotalPoints, track.Stats.TotalDistanceKm,
		track.Stats.TotalElevationGain, track.Stats.TotalElevationLoss,
		track.Bounds.North, track.Bounds.South, track.Bounds.East, track.Bounds.West,
		track.Elevation.MinM, track.Elevation.MaxM, track.CreatedAt)
	return err
}

func (r *TrackRepo) GetByID(ctx context.Context, id string) (*domain.Track, error) {
	var (
		t      domain.Track
		points []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, points, total_points, total_distance_km,
		       total_elevation_gain, total_elevation_loss,
		       bounds_north, bounds_south, bounds_east, bounds_west,
		       elevation_min_m, elevation_max_m, created_at
		FROM tracks WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &points,
		&t.Stats.TotalPoints, &t.Stats.TotalDistanceKm,
		&t.Stats.TotalElevationGain, &t.Stats.TotalElevationLoss,
		&t.Bounds.North, &t.Bounds.South, &t.Bounds.East, &t.Bounds.West,
		&t.Elevation.MinM, &t.Elevation.MaxM, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(points, &t.Points); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	return &t, nil
}

// List returns tracks newest first, without geometry. Callers wanting points
// fetch the track by ID.
func (r *TrackRepo) List(ctx context.Context, limit, offset int) ([]domain.Track, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, total_points, total_distance_km,
		       total_elevation_gain, total_elevation_loss,
		       bounds_north, bounds_south, bounds_east, bounds_west,
		       elevation_min_m, elevation_max_m, created_at
		FROM tracks ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []domain.Track
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(&t.ID, &t.Name,
			&t.Stats.TotalPoints, &t.Stats.TotalDistanceKm,
			&t.Stats.TotalElevationGain, &t.Stats.TotalElevationLoss,
			&t.Bounds.North, &t.Bounds.South, &t.Bounds.East, &t.Bounds.West,
			&t.Elevation.MinM, &t.Elevation.MaxM, &t.CreatedAt); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (r *TrackRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM tracks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
