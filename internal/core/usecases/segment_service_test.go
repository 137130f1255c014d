package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/usecases"
)

func TestSegmentService_Cut(t *testing.T) {
	trackPoints := pts(
		[3]float64{43.30, -2.98, 40},
		[3]float64{43.28, -2.95, 120},
		[3]float64{43.31, -2.99, 80},
		[3]float64{43.29, -2.96, 95},
	)
	trackRepo := &mockTrackRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Track, error) {
			return &domain.Track{ID: id, Points: trackPoints}, nil
		},
	}
	var inserted *domain.Segment
	segRepo := &mockSegmentRepo{
		insertFn: func(ctx context.Context, segment *domain.Segment) error {
			inserted = segment
			return nil
		},
	}
	events := &mockEvents{}

	svc := usecases.NewSegmentService(segRepo, trackRepo, nil, &seqIDs{}, events)
	attrs := domain.SegmentAttributes{
		DifficultyLevel: 3,
		Surfaces:        domain.NewSurfaceSet(domain.SurfaceForestRoad),
		TireDry:         domain.TireSemiSlick,
		TireWet:         domain.TireKnobs,
	}

	segment, err := svc.Cut(context.Background(), "track-1", 1, 2, "forest climb", attrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(segment.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(segment.Points))
	}
	if segment.Points[0] != trackPoints[1] || segment.Points[1] != trackPoints[2] {
		t.Errorf("points not copied verbatim: %+v", segment.Points)
	}
	if segment.TrackID != "track-1" {
		t.Errorf("parent track not recorded: %q", segment.TrackID)
	}
	if segment.Attrs.DifficultyLevel != 3 {
		t.Errorf("attrs not carried: %+v", segment.Attrs)
	}
	if inserted == nil {
		t.Error("segment not persisted")
	}
	if events.segments != 1 {
		t.Error("segment event not published")
	}
}

func TestSegmentService_CutInvalidRange(t *testing.T) {
	trackRepo := &mockTrackRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Track, error) {
			return &domain.Track{ID: id, Points: pts([3]float64{1, 1, 0}, [3]float64{2, 2, 0})}, nil
		},
	}

	svc := usecases.NewSegmentService(&mockSegmentRepo{}, trackRepo, nil, &seqIDs{}, nil)

	_, err := svc.Cut(context.Background(), "track-1", 1, 0, "x", domain.SegmentAttributes{})
	if !errors.Is(err, domain.ErrInvertedRange) {
		t.Errorf("expected ErrInvertedRange, got %v", err)
	}

	_, err = svc.Cut(context.Background(), "track-1", 0, 2, "x", domain.SegmentAttributes{})
	if !errors.Is(err, domain.ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestSegmentService_GetByIDCaches(t *testing.T) {
	cache := newMockCache()
	calls := 0
	segRepo := &mockSegmentRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Segment, error) {
			calls++
			return &domain.Segment{ID: id, Name: "hot segment"}, nil
		},
	}

	svc := usecases.NewSegmentService(segRepo, &mockTrackRepo{}, cache, &seqIDs{}, nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.GetByID(context.Background(), "s-1"); err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("repo hit %d times, want 1", calls)
	}
}
