package usecases

import (
	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/pkg/geospatial"
)

// ExtractTrack walks an already-parsed point sequence once and derives
// total distance, absolute elevation gain/loss, bounding box, and elevation
// extrema. Pure: the returned track owns a copy of the points and the input
// is never mutated.
//
// Bounds and extrema are seeded from the first point rather than ±Inf so a
// single-point track yields a degenerate-but-valid box. Returns
// domain.ErrEmptyTrack for a zero-point input.
func ExtractTrack(points []domain.GeoPoint, id, nameHint string) (*domain.Track, error) {
	if len(points) == 0 {
		return nil, domain.ErrEmptyTrack
	}

	name := nameHint
	if name == "" {
		name = domain.DefaultTrackName
	}

	first := points[0]
	bounds := domain.BoundsAt(first.Latitude, first.Longitude)
	elev := domain.ElevationExtrema{MinM: first.Elevation, MaxM: first.Elevation}
	stats := domain.TrackStatistics{TotalPoints: uint32(len(points))}

	for i := 1; i < len(points); i++ {
		prev, p := points[i-1], points[i]

		stats.TotalDistanceKm += geospatial.DistanceKm(
			prev.Latitude, prev.Longitude, p.Latitude, p.Longitude)

		// A diff of exactly 0 contributes to neither side.
		diff := p.Elevation - prev.Elevation
		if diff > 0 {
			stats.TotalElevationGain += diff
		} else if diff < 0 {
			stats.TotalElevationLoss += -diff
		}

		bounds.Extend(p.Latitude, p.Longitude)
		if p.Elevation < elev.MinM {
			elev.MinM = p.Elevation
		}
		if p.Elevation > elev.MaxM {
			elev.MaxM = p.Elevation
		}
	}

	owned := make([]domain.GeoPoint, len(points))
	copy(owned, points)

	return &domain.Track{
		ID:        id,
		Name:      name,
		Points:    owned,
		Stats:     stats,
		Bounds:    bounds,
		Elevation: elev,
	}, nil
}
