package usecases

import (
	"math"
	"time"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// WaypointTimestampStride is the synthetic spacing between waypoint-route
// timestamps. Waypoint paths carry no real ride timing; the stamps exist
// only so exported files have monotonic time columns.
const WaypointTimestampStride = 10 * time.Second

// SegmentTraversal is one segment's loaded point data plus its traversal
// direction inside a route.
type SegmentTraversal struct {
	Points   []domain.GeoPoint
	Reversed bool
}

// ComposeSegments concatenates the traversals' points in list order,
// iterating a reversed traversal back-to-front, and derives combined bounds
// and the barycenter (arithmetic mean position over every point, which is
// not the bounding-box center under non-uniform density). Fails
// domain.ErrNoGeometry when no coordinate was observed at all.
func ComposeSegments(traversals []SegmentTraversal) (domain.RouteComposite, error) {
	var (
		combined       []domain.GeoPoint
		bounds         domain.GeoBounds
		seen           bool
		sumLat, sumLon float64
	)

	accumulate := func(p domain.GeoPoint) {
		if !seen {
			bounds = domain.BoundsAt(p.Latitude, p.Longitude)
			seen = true
		} else {
			bounds.Extend(p.Latitude, p.Longitude)
		}
		sumLat += p.Latitude
		sumLon += p.Longitude
		combined = append(combined, p)
	}

	for _, tr := range traversals {
		if tr.Reversed {
			for i := len(tr.Points) - 1; i >= 0; i-- {
				accumulate(tr.Points[i])
			}
		} else {
			for _, p := range tr.Points {
				accumulate(p)
			}
		}
	}

	if !seen {
		return domain.RouteComposite{}, domain.ErrNoGeometry
	}

	n := float64(len(combined))
	return domain.RouteComposite{
		Points: combined,
		Bounds: bounds,
		Barycenter: domain.Position{
			Latitude:  sumLat / n,
			Longitude: sumLon / n,
		},
	}, nil
}

// ComposeWaypoints builds a composite from a client-interpolated sample
// path. Requires at least 2 samples. Samples with a non-finite latitude or
// longitude are dropped from both the output sequence and the
// bounds/barycenter accumulation; if nothing finite remains the composition
// fails domain.ErrNoGeometry rather than emitting NaN bounds. Each emitted
// point gets a synthetic timestamp, a fixed stride from the given epoch.
func ComposeWaypoints(samples []domain.Waypoint, epoch time.Time) (domain.RouteComposite, error) {
	if len(samples) < 2 {
		return domain.RouteComposite{}, domain.ErrInsufficientData
	}

	var (
		combined       []domain.GeoPoint
		bounds         domain.GeoBounds
		seen           bool
		sumLat, sumLon float64
	)

	for _, s := range samples {
		if !isFinite(s.Latitude) || !isFinite(s.Longitude) {
			continue
		}

		ts := epoch.Add(time.Duration(len(combined)) * WaypointTimestampStride)
		p := domain.GeoPoint{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Elevation: s.Elevation,
			Timestamp: &ts,
		}

		if !seen {
			bounds = domain.BoundsAt(p.Latitude, p.Longitude)
			seen = true
		} else {
			bounds.Extend(p.Latitude, p.Longitude)
		}
		sumLat += p.Latitude
		sumLon += p.Longitude
		combined = append(combined, p)
	}

	if !seen {
		return domain.RouteComposite{}, domain.ErrNoGeometry
	}

	n := float64(len(combined))
	return domain.RouteComposite{
		Points: combined,
		Bounds: bounds,
		Barycenter: domain.Position{
			Latitude:  sumLat / n,
			Longitude: sumLon / n,
		},
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
