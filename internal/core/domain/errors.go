package domain

import "errors"

// Contract and missing-data failures surfaced by the geometry core. None of
// these is transient: they are never retried and never silently clamped.
var (
	// ErrEmptyTrack: extraction attempted on a sequence with no points.
	ErrEmptyTrack = errors.New("track contains no points")

	// ErrInvertedRange: segment cut with start_index > end_index.
	ErrInvertedRange = errors.New("segment range is inverted")

	// ErrIndexOutOfBounds: segment cut with end_index beyond the track.
	ErrIndexOutOfBounds = errors.New("segment range exceeds track length")

	// ErrNoGeometry: composition yielded zero usable coordinates.
	ErrNoGeometry = errors.New("route has no usable geometry")

	// ErrInsufficientData: waypoint composition needs at least 2 samples.
	ErrInsufficientData = errors.New("waypoint route needs at least 2 samples")

	// ErrNoSegments: attribute aggregation over an empty segment list.
	ErrNoSegments = errors.New("route has no segments to aggregate")

	// ErrNotFound is returned by repositories for missing records.
	ErrNotFound = errors.New("not found")
)
