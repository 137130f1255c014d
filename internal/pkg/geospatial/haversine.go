package geospatial

import "math"

const earthRadiusKm = 6371.0

// DistanceKm is the haversine great-circle distance in kilometers between
// two coordinate pairs. Inputs are degrees. NaN inputs propagate to a NaN
// result; no validation is performed here so the extraction path stays a
// single branch-free pass. Stable for sub-meter and antipodal separations:
// asin(sqrt(a)) is monotonic in a for a in [0,1].
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// DistanceMeters is DistanceKm in meters, for callers that work in meters
// (radius queries, segment lengths).
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceKm(lat1, lon1, lat2, lon2) * 1000
}

// BoundingBox returns a box around a point with the given radius in meters.
// Used by repositories to pre-filter candidates before exact distance checks.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
