package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/ports"
)

// SegmentService carves segments out of tracks and looks them up.
type SegmentService struct {
	segments ports.SegmentRepository
	tracks   ports.TrackRepository
	cache    ports.CacheService
	ids      ports.IDGenerator
	events   ports.EventPublisher
}

// NewSegmentService creates a new SegmentService.
func NewSegmentService(
	segments ports.SegmentRepository,
	tracks ports.TrackRepository,
	cache ports.CacheService,
	ids ports.IDGenerator,
	events ports.EventPublisher,
) *SegmentService {
	return &SegmentService{
		segments: segments,
		tracks:   tracks,
		cache:    cache,
		ids:      ids,
		events:   events,
	}
}

// Cut extracts [startIndex, endIndex] of a track into a named segment with
// rider-assigned terrain attributes, and persists it. Range violations come
// back as domain.ErrInvertedRange / domain.ErrIndexOutOfBounds.
func (s *SegmentService) Cut(
	ctx context.Context,
	trackID string,
	startIndex, endIndex int,
	name string,
	attrs domain.SegmentAttributes,
) (*domain.Segment, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("load track %s: %w", trackID, err)
	}

	segment, err := CutSegment(CutRequest{
		Points:     track.Points,
		StartIndex: startIndex,
		EndIndex:   endIndex,
		Name:       name,
	}, s.ids)
	if err != nil {
		return nil, err
	}

	segment.TrackID = track.ID
	segment.Attrs = attrs
	segment.CreatedAt = time.Now().UTC()

	if err := s.segments.Insert(ctx, segment); err != nil {
		return nil, fmt.Errorf("insert segment: %w", err)
	}

	if s.events != nil {
		_ = s.events.PublishSegmentCut(ctx, segment)
	}

	return segment, nil
}

// GetByID returns a segment, read-through cached.
func (s *SegmentService) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	cacheKey := "segments:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var segment domain.Segment
			if err := json.Unmarshal(data, &segment); err == nil {
				return &segment, nil
			}
		}
	}

	segment, err := s.segments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(segment); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return segment, nil
}

// FindNearby returns segments intersecting a radius around a point.
func (s *SegmentService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Segment, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("segments:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var segments []domain.Segment
			if err := json.Unmarshal(data, &segments); err == nil {
				return segments, nil
			}
		}
	}

	segments, err := s.segments.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	// 5 minutes: segments change only when riders publish new ones.
	if s.cache != nil {
		if data, err := json.Marshal(segments); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return segments, nil
}
