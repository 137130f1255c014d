package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/ports"
)

// TrackService handles track ingestion and lookup.
type TrackService struct {
	tracks ports.TrackRepository
	parser ports.TrackParser
	blobs  ports.ObjectStore
	cache  ports.CacheService
	ids    ports.IDGenerator
	events ports.EventPublisher
}

// NewTrackService creates a new TrackService.
func NewTrackService(
	tracks ports.TrackRepository,
	parser ports.TrackParser,
	blobs ports.ObjectStore,
	cache ports.CacheService,
	ids ports.IDGenerator,
	events ports.EventPublisher,
) *TrackService {
	return &TrackService{
		tracks: tracks,
		parser: parser,
		blobs:  blobs,
		cache:  cache,
		ids:    ids,
		events: events,
	}
}

// BlobKey is where a track's raw upload lives in the object store.
func BlobKey(trackID string) string { return "tracks/" + trackID + ".gpx" }

// Ingest decodes a raw GPX upload, extracts statistics, stores the original
// file, and persists the track. The raw blob and the published event are
// best-effort relative to the extraction contract: a broken recording fails
// before anything is written.
func (s *TrackService) Ingest(ctx context.Context, raw []byte) (*domain.Track, error) {
	points, name, err := s.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse track: %w", err)
	}

	track, err := ExtractTrack(points, s.ids.NewID(), name)
	if err != nil {
		return nil, err
	}
	track.CreatedAt = time.Now().UTC()

	if s.blobs != nil {
		if err := s.blobs.Put(ctx, BlobKey(track.ID), raw); err != nil {
			return nil, fmt.Errorf("store original: %w", err)
		}
	}

	if err := s.tracks.Insert(ctx, track); err != nil {
		// Roll back the stored original so orphaned blobs don't accumulate.
		if s.blobs != nil {
			_ = s.blobs.Delete(ctx, BlobKey(track.ID))
		}
		return nil, fmt.Errorf("insert track: %w", err)
	}

	if s.events != nil {
		_ = s.events.PublishTrackIngested(ctx, track)
	}

	return track, nil
}

// GetByID returns a track, read-through cached.
func (s *TrackService) GetByID(ctx context.Context, id string) (*domain.Track, error) {
	cacheKey := "tracks:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var track domain.Track
			if err := json.Unmarshal(data, &track); err == nil {
				return &track, nil
			}
		}
	}

	track, err := s.tracks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(track); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return track, nil
}

// List returns tracks, newest first.
func (s *TrackService) List(ctx context.Context, limit, offset int) ([]domain.Track, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.tracks.List(ctx, limit, offset)
}

// Delete removes a track, its segments (DB cascade), its cached entry, and
// the stored original.
func (s *TrackService) Delete(ctx context.Context, id string) error {
	if err := s.tracks.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "tracks:id:"+id)
	}
	if s.blobs != nil {
		_ = s.blobs.Delete(ctx, BlobKey(id))
	}
	return nil
}
