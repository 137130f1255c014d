package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/ports"
)

// RouteService composes routes from segments or waypoint paths.
type RouteService struct {
	routes   ports.RouteRepository
	segments ports.SegmentRepository
	ids      ports.IDGenerator
	events   ports.EventPublisher
	defaults WaypointRouteDefaults
}

// NewRouteService creates a new RouteService.
func NewRouteService(
	routes ports.RouteRepository,
	segments ports.SegmentRepository,
	ids ports.IDGenerator,
	events ports.EventPublisher,
) *RouteService {
	return &RouteService{
		routes:   routes,
		segments: segments,
		ids:      ids,
		events:   events,
		defaults: DefaultWaypointAttributes,
	}
}

// ComposeFromSegments stitches the referenced segments, each optionally
// reversed, into one route in list order. A segment that fails to load is
// skipped, not fatal — composition is best-effort across partial storage
// failures and fails domain.ErrNoGeometry only when every reference is
// unusable. Attributes aggregate over the segments actually composed.
func (s *RouteService) ComposeFromSegments(ctx context.Context, name string, refs []domain.RouteSegmentRef) (*domain.Route, error) {
	var (
		traversals []SegmentTraversal
		attrs      []domain.SegmentAttributes
		composed   []domain.RouteSegmentRef
	)

	for _, ref := range refs {
		segment, err := s.segments.GetByID(ctx, ref.SegmentID)
		if err != nil {
			continue
		}
		traversals = append(traversals, SegmentTraversal{
			Points:   segment.Points,
			Reversed: ref.Reversed,
		})
		attrs = append(attrs, segment.Attrs)
		composed = append(composed, ref)
	}

	composite, err := ComposeSegments(traversals)
	if err != nil {
		return nil, err
	}

	routeAttrs, err := AggregateAttributes(attrs)
	if err != nil {
		return nil, err
	}

	route := &domain.Route{
		ID:        s.ids.NewID(),
		Name:      name,
		Segments:  composed,
		Composite: composite,
		Attrs:     routeAttrs,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.routes.Insert(ctx, route); err != nil {
		return nil, fmt.Errorf("insert route: %w", err)
	}

	if s.events != nil {
		_ = s.events.PublishRouteComposed(ctx, route)
	}

	return route, nil
}

// ComposeFromWaypoints builds a route from a client-interpolated sample
// path and applies the waypoint default attribute policy, since there is no
// per-segment terrain data to aggregate from.
func (s *RouteService) ComposeFromWaypoints(ctx context.Context, name string, samples []domain.Waypoint) (*domain.Route, error) {
	composite, err := ComposeWaypoints(samples, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	route := &domain.Route{
		ID:        s.ids.NewID(),
		Name:      name,
		Composite: composite,
		Attrs:     s.defaults.RouteAttributes(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.routes.Insert(ctx, route); err != nil {
		return nil, fmt.Errorf("insert route: %w", err)
	}

	if s.events != nil {
		_ = s.events.PublishRouteComposed(ctx, route)
	}

	return route, nil
}

// GetByID returns a route.
func (s *RouteService) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	return s.routes.GetByID(ctx, id)
}

// List returns routes, newest first.
func (s *RouteService) List(ctx context.Context, limit, offset int) ([]domain.Route, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.routes.List(ctx, limit, offset)
}
