package domain

import "time"

// DefaultTrackName is used when an uploaded recording carries no name.
const DefaultTrackName = "Unnamed Track"

// Track is an extracted GPS recording: the point sequence plus derived
// statistics, bounds, and elevation extrema. Created once per extraction
// and never mutated afterward; segments and routes are new values.
type Track struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Points    []GeoPoint       `json:"points"`
	Stats     TrackStatistics  `json:"stats"`
	Bounds    GeoBounds        `json:"bounds"`
	Elevation ElevationExtrema `json:"elevation"`
	CreatedAt time.Time        `json:"created_at"`
}

// Segment is a user-selected contiguous sub-range of a single track,
// with its own bounds recomputed from the sub-range and rider-assigned
// terrain attributes.
type Segment struct {
	ID        string            `json:"id"`
	TrackID   string            `json:"track_id,omitempty"`
	Name      string            `json:"name"`
	Points    []GeoPoint        `json:"points"`
	Bounds    GeoBounds         `json:"bounds"`
	Attrs     SegmentAttributes `json:"attrs"`
	CreatedAt time.Time         `json:"created_at"`
}

// RouteSegmentRef references a segment inside a route. Reversed controls
// traversal order when concatenating; the underlying segment is untouched.
type RouteSegmentRef struct {
	SegmentID string `json:"segment_id"`
	Reversed  bool   `json:"reversed"`
}

// RouteComposite is the combined geometry of a composed route.
type RouteComposite struct {
	Points     []GeoPoint `json:"points"`
	Bounds     GeoBounds  `json:"bounds"`
	Barycenter Position   `json:"barycenter"`
}

// Route is an ordered composition of segments (or a standalone waypoint
// path) with combined geometry and aggregated attributes.
type Route struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Segments  []RouteSegmentRef `json:"segments,omitempty"`
	Composite RouteComposite    `json:"composite"`
	Attrs     RouteAttributes   `json:"attrs"`
	CreatedAt time.Time         `json:"created_at"`
}

// Waypoint is one client-interpolated route sample: latitude, longitude,
// elevation. Timestamps for waypoint routes are synthesized at compose time.
type Waypoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Elevation float64 `json:"elevation"`
}
