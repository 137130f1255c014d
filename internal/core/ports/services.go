package ports

import (
	"context"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// TrackParser decodes a serialized recording (GPX) into an ordered point
// sequence plus the name the file carries, if any. Points missing
// coordinates are filtered by the parser; the core does not re-validate.
type TrackParser interface {
	Parse(data []byte) (points []domain.GeoPoint, name string, err error)
}

// ObjectStore keeps raw uploaded recordings (local filesystem or bucket).
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// IDGenerator supplies opaque globally-unique identifiers. The core neither
// validates nor interprets them.
type IDGenerator interface {
	NewID() string
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishTrackIngested(ctx context.Context, track *domain.Track) error
	PublishSegmentCut(ctx context.Context, segment *domain.Segment) error
	PublishRouteComposed(ctx context.Context, route *domain.Route) error
}
