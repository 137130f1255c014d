package usecases_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/usecases"
)

func TestComposeSegments_ListOrder(t *testing.T) {
	a := pts([3]float64{45.0, 6.0, 0}, [3]float64{45.1, 6.1, 0})
	b := pts([3]float64{46.0, 7.0, 0}, [3]float64{46.1, 7.1, 0})

	composite, err := usecases.ComposeSegments([]usecases.SegmentTraversal{
		{Points: a}, {Points: b},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(composite.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(composite.Points))
	}
	if composite.Points[0].Latitude != 45.0 || composite.Points[3].Latitude != 46.1 {
		t.Errorf("segments reordered: %+v", composite.Points)
	}
}

func TestComposeSegments_Reversal(t *testing.T) {
	a := pts([3]float64{45.0, 6.0, 0}, [3]float64{45.1, 6.1, 0})
	b := pts([3]float64{46.0, 7.0, 0}, [3]float64{46.1, 7.1, 0})

	forward, err := usecases.ComposeSegments([]usecases.SegmentTraversal{
		{Points: a}, {Points: b},
	})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	flipped, err := usecases.ComposeSegments([]usecases.SegmentTraversal{
		{Points: a}, {Points: b, Reversed: true},
	})
	if err != nil {
		t.Fatalf("flipped: %v", err)
	}

	// The affected region is exactly reversed.
	if flipped.Points[2].Latitude != forward.Points[3].Latitude ||
		flipped.Points[3].Latitude != forward.Points[2].Latitude {
		t.Errorf("reversal not applied: forward=%+v flipped=%+v",
			forward.Points[2:], flipped.Points[2:])
	}

	// Reversal must not change bounds or barycenter.
	if flipped.Bounds != forward.Bounds {
		t.Errorf("bounds changed under reversal: %+v vs %+v", flipped.Bounds, forward.Bounds)
	}
	if math.Abs(flipped.Barycenter.Latitude-forward.Barycenter.Latitude) > 1e-12 {
		t.Errorf("barycenter changed under reversal")
	}
}

func TestComposeSegments_BarycenterIsMeanNotBoxCenter(t *testing.T) {
	// Dense cluster near (45,6) plus one far point: the mean sits near the
	// cluster while the box center sits halfway.
	cluster := pts(
		[3]float64{45.0, 6.0, 0},
		[3]float64{45.001, 6.001, 0},
		[3]float64{45.002, 6.002, 0},
		[3]float64{49.0, 10.0, 0},
	)

	composite, err := usecases.ComposeSegments([]usecases.SegmentTraversal{{Points: cluster}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boxLat, _ := composite.Bounds.Midpoint()
	if composite.Barycenter.Latitude >= boxLat {
		t.Errorf("barycenter %f should fall below box center %f for a southern cluster",
			composite.Barycenter.Latitude, boxLat)
	}
	wantLat := (45.0 + 45.001 + 45.002 + 49.0) / 4
	if math.Abs(composite.Barycenter.Latitude-wantLat) > 1e-12 {
		t.Errorf("barycenter: got %f, want %f", composite.Barycenter.Latitude, wantLat)
	}
}

func TestComposeSegments_NoGeometry(t *testing.T) {
	_, err := usecases.ComposeSegments(nil)
	if !errors.Is(err, domain.ErrNoGeometry) {
		t.Errorf("nil traversals: expected ErrNoGeometry, got %v", err)
	}

	_, err = usecases.ComposeSegments([]usecases.SegmentTraversal{{Points: nil}, {Points: nil}})
	if !errors.Is(err, domain.ErrNoGeometry) {
		t.Errorf("empty traversals: expected ErrNoGeometry, got %v", err)
	}
}

func TestComposeWaypoints_InsufficientData(t *testing.T) {
	_, err := usecases.ComposeWaypoints([]domain.Waypoint{{Latitude: 1, Longitude: 1}}, time.Now())
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestComposeWaypoints_FiltersNonFinite(t *testing.T) {
	samples := []domain.Waypoint{
		{Latitude: 1, Longitude: 1},
		{Latitude: math.NaN(), Longitude: 2},
		{Latitude: 3, Longitude: 3},
	}

	composite, err := usecases.ComposeWaypoints(samples, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(composite.Points) != 2 {
		t.Fatalf("expected 2 finite points, got %d", len(composite.Points))
	}
	if composite.Bounds.North != 3 || composite.Bounds.South != 1 {
		t.Errorf("bounds include filtered sample: %+v", composite.Bounds)
	}
	if composite.Barycenter.Latitude != 2 || composite.Barycenter.Longitude != 2 {
		t.Errorf("barycenter from filtered set wrong: %+v", composite.Barycenter)
	}
}

func TestComposeWaypoints_AllNonFinite(t *testing.T) {
	samples := []domain.Waypoint{
		{Latitude: math.NaN(), Longitude: 1},
		{Latitude: math.Inf(1), Longitude: 2},
	}
	_, err := usecases.ComposeWaypoints(samples, time.Now())
	if !errors.Is(err, domain.ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry, got %v", err)
	}
}

func TestComposeWaypoints_SyntheticTimestamps(t *testing.T) {
	epoch := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	samples := []domain.Waypoint{
		{Latitude: 1, Longitude: 1},
		{Latitude: 2, Longitude: 2},
		{Latitude: 3, Longitude: 3},
	}

	composite, err := usecases.ComposeWaypoints(samples, epoch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, p := range composite.Points {
		if p.Timestamp == nil {
			t.Fatalf("point %d missing synthetic timestamp", i)
		}
		want := epoch.Add(time.Duration(i) * usecases.WaypointTimestampStride)
		if !p.Timestamp.Equal(want) {
			t.Errorf("point %d: got %s, want %s", i, p.Timestamp, want)
		}
		if i > 0 && !p.Timestamp.After(*composite.Points[i-1].Timestamp) {
			t.Errorf("timestamps not strictly increasing at %d", i)
		}
	}
}
