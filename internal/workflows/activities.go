package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/ports"
	"github.com/imanolz/gravelpass/internal/core/usecases"
)

// IngestActivities holds the activity implementations for the ingest workflow.
type IngestActivities struct {
	Tracks ports.TrackRepository
	Parser ports.TrackParser
	Blobs  ports.ObjectStore
	Events ports.EventPublisher
}

// FetchBlob loads the raw recording from the object store.
func (a *IngestActivities) FetchBlob(ctx context.Context, key string) ([]byte, error) {
	data, err := a.Blobs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch blob %s: %w", key, err)
	}
	return data, nil
}

// ExtractAndPersist decodes the recording, derives statistics, and stores the
// track. An empty or undecodable recording is a non-retryable failure: the
// input will not improve on retry.
func (a *IngestActivities) ExtractAndPersist(ctx context.Context, trackID string, raw []byte) (*IngestResult, error) {
	points, name, err := a.Parser.Parse(raw)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError("decode recording", "BadRecording", err)
	}

	track, err := usecases.ExtractTrack(points, trackID, name)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTrack) {
			return nil, temporal.NewNonRetryableApplicationError("recording has no points", "EmptyTrack", err)
		}
		return nil, err
	}
	track.CreatedAt = time.Now().UTC()

	if err := a.Tracks.Insert(ctx, track); err != nil {
		return nil, fmt.Errorf("persist track %s: %w", trackID, err)
	}

	return &IngestResult{
		TrackID:     track.ID,
		TotalPoints: track.Stats.TotalPoints,
		DistanceKm:  track.Stats.TotalDistanceKm,
	}, nil
}

// AnnounceTrack publishes the ingested-track event.
func (a *IngestActivities) AnnounceTrack(ctx context.Context, trackID string) error {
	track, err := a.Tracks.GetByID(ctx, trackID)
	if err != nil {
		return fmt.Errorf("load track %s: %w", trackID, err)
	}
	return a.Events.PublishTrackIngested(ctx, track)
}

// DeleteBlob removes a stored recording (saga compensation / rollback).
func (a *IngestActivities) DeleteBlob(ctx context.Context, key string) error {
	if err := a.Blobs.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
