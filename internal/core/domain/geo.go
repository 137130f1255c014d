package domain

import "time"

// GeoPoint is a single recorded GPS sample (WGS 84).
// Immutable once constructed; derived products copy, never mutate.
type GeoPoint struct {
	Latitude  float64    `json:"lat"`
	Longitude float64    `json:"lon"`
	Elevation float64    `json:"elevation"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// GeoBounds is a geographic bounding box. Any bounds returned by the core
// satisfy North >= South and East >= West.
type GeoBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// BoundsAt seeds a bounding box from a single coordinate.
func BoundsAt(lat, lon float64) GeoBounds {
	return GeoBounds{North: lat, South: lat, East: lon, West: lon}
}

// Extend grows the bounds to include the given coordinate.
func (b *GeoBounds) Extend(lat, lon float64) {
	if lat > b.North {
		b.North = lat
	}
	if lat < b.South {
		b.South = lat
	}
	if lon > b.East {
		b.East = lon
	}
	if lon < b.West {
		b.West = lon
	}
}

// Midpoint returns the center of the bounding box.
func (b GeoBounds) Midpoint() (lat, lon float64) {
	return (b.North + b.South) / 2, (b.East + b.West) / 2
}

// Position is a bare coordinate, used where elevation and time carry no
// meaning (barycenters, map pins).
type Position struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// ElevationExtrema holds the lowest and highest elevation seen on a track.
type ElevationExtrema struct {
	MinM float64 `json:"min_m"`
	MaxM float64 `json:"max_m"`
}

// TrackStatistics summarizes a point sequence. Gain and loss are absolute
// accumulations over consecutive elevation diffs, never net deltas, so all
// fields are non-negative by construction.
type TrackStatistics struct {
	TotalPoints        uint32  `json:"total_points"`
	TotalDistanceKm    float64 `json:"total_distance_km"`
	TotalElevationGain float64 `json:"total_elevation_gain_m"`
	TotalElevationLoss float64 `json:"total_elevation_loss_m"`
}
