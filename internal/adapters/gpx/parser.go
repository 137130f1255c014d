// Package gpx decodes and encodes GPX track files for the core.
package gpx

import (
	"fmt"
	"math"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// Parser implements ports.TrackParser on top of gpxgo.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser { return &Parser{} }

// Parse decodes GPX bytes into an ordered point sequence. Track segments are
// walked in file order; when the file has no tracks, route points are used as
// a fallback. Points without finite coordinates are dropped here so the core
// never sees them. Returns the file's track name, if any, as the name hint.
func (p *Parser) Parse(data []byte) ([]domain.GeoPoint, string, error) {
	file, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode gpx: %w", err)
	}

	name := file.Name
	var points []domain.GeoPoint

	appendPoint := func(gp *gpx.GPXPoint) {
		if math.IsNaN(gp.Latitude) || math.IsNaN(gp.Longitude) {
			return
		}
		point := domain.GeoPoint{
			Latitude:  gp.Latitude,
			Longitude: gp.Longitude,
			Elevation: gp.Elevation.Value(),
		}
		if !gp.Timestamp.IsZero() {
			ts := gp.Timestamp.UTC()
			point.Timestamp = &ts
		}
		points = append(points, point)
	}

	for _, track := range file.Tracks {
		if name == "" {
			name = track.Name
		}
		for _, segment := range track.Segments {
			for i := range segment.Points {
				appendPoint(&segment.Points[i])
			}
		}
	}

	if len(points) == 0 {
		for _, route := range file.Routes {
			if name == "" {
				name = route.Name
			}
			for i := range route.Points {
				appendPoint(&route.Points[i])
			}
		}
	}

	return points, name, nil
}

// EncodeRoute re-serializes a composed route as a single-track GPX file so
// riders can load it on a head unit.
func EncodeRoute(route *domain.Route) ([]byte, error) {
	out := &gpx.GPX{
		Version: "1.1",
		Creator: "gravelpass",
		Name:    route.Name,
	}

	segment := gpx.GPXTrackSegment{}
	for _, p := range route.Composite.Points {
		gp := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				Elevation: *gpx.NewNullableFloat64(p.Elevation),
			},
		}
		if p.Timestamp != nil {
			gp.Timestamp = p.Timestamp.UTC()
		}
		segment.Points = append(segment.Points, gp)
	}

	out.Tracks = []gpx.GPXTrack{{
		Name:     route.Name,
		Segments: []gpx.GPXTrackSegment{segment},
	}}

	data, err := out.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("encode gpx: %w", err)
	}
	return data, nil
}
