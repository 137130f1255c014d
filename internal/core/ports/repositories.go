package ports

import (
	"context"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// TrackRepository persists extracted tracks.
type TrackRepository interface {
	Insert(ctx context.Context, track *domain.Track) error
	GetByID(ctx context.Context, id string) (*domain.Track, error)
	List(ctx context.Context, limit, offset int) ([]domain.Track, error)
	// Delete removes a track and, by cascade, its segments.
	Delete(ctx context.Context, id string) error
}

// SegmentRepository persists cut segments.
type SegmentRepository interface {
	Insert(ctx context.Context, segment *domain.Segment) error
	GetByID(ctx context.Context, id string) (*domain.Segment, error)
	// FindNearby returns segments whose bounds intersect a radius around a point.
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Segment, error)
}

// RouteRepository persists composed routes.
type RouteRepository interface {
	Insert(ctx context.Context, route *domain.Route) error
	GetByID(ctx context.Context, id string) (*domain.Route, error)
	List(ctx context.Context, limit, offset int) ([]domain.Route, error)
}
