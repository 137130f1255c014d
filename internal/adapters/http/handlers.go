package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/imanolz/gravelpass/internal/adapters/gpx"
	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/pkg/metrics"
)

// CatalogStats holds row counts for the ingested catalog.
type CatalogStats struct {
	Tracks     int    `json:"tracks"`
	Segments   int    `json:"segments"`
	Routes     int    `json:"routes"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// CatalogStatsHandler returns row counts from the catalog tables.
func CatalogStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM tracks),
				(SELECT count(*) FROM segments),
				(SELECT count(*) FROM routes),
				COALESCE((SELECT max(created_at)::text FROM tracks), '')
		`)
		if err := row.Scan(&stats.Tracks, &stats.Segments, &stats.Routes, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// UploadTrackHandler accepts a GPX file (multipart field "file" or raw body)
// and ingests it as a track.
func UploadTrackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := uploadBody(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if len(raw) == 0 {
			return errBadRequest(c, "request body is empty")
		}

		track, err := deps.Tracks.Ingest(c.Context(), raw)
		if err != nil {
			metrics.IngestFailures.WithLabelValues("api").Inc()
			return errDomain(c, err)
		}

		metrics.TracksIngested.WithLabelValues("api").Inc()
		metrics.TrackPointsIngested.Add(float64(track.Stats.TotalPoints))
		return c.Status(201).JSON(track)
	}
}

// uploadBody extracts the GPX payload from either a multipart form or the
// raw request body.
func uploadBody(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		// Not multipart — fall back to the raw body.
		return c.Body(), nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, fh.Size)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// GetTrackHandler returns a track, including its full point sequence.
func GetTrackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "track id is required")
		}
		track, err := deps.Tracks.GetByID(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(track)
	}
}

// ListTracksHandler lists tracks newest first, without geometry.
func ListTracksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}

		tracks, err := deps.Tracks.List(c.Context(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Count: len(tracks)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: tracks, Pagination: pg})
	}
}

// DeleteTrackHandler removes a track and, by cascade, its segments.
func DeleteTrackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "track id is required")
		}
		if err := deps.Tracks.Delete(c.Context(), id); err != nil {
			return errDomain(c, err)
		}
		return c.SendStatus(204)
	}
}

// cutRequest is the body for cutting a segment out of a track.
type cutRequest struct {
	StartIndex int                      `json:"start_index"`
	EndIndex   int                      `json:"end_index"`
	Name       string                   `json:"name"`
	Attrs      domain.SegmentAttributes `json:"attrs"`
}

// CutSegmentHandler cuts an inclusive point range out of a stored track.
func CutSegmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trackID := c.Params("id")
		if trackID == "" {
			return errBadRequest(c, "track id is required")
		}

		var req cutRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return errBadRequest(c, "name is required")
		}

		segment, err := deps.Segments.Cut(c.Context(), trackID,
			req.StartIndex, req.EndIndex, req.Name, req.Attrs)
		if err != nil {
			return errDomain(c, err)
		}

		metrics.SegmentsCut.Inc()
		return c.Status(201).JSON(segment)
	}
}

// GetSegmentHandler returns a segment by ID.
func GetSegmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "segment id is required")
		}
		segment, err := deps.Segments.GetByID(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(segment)
	}
}

// NearbySegmentsHandler returns segments around a point.
func NearbySegmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 20)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat/lon out of range")
		}
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}

		segments, err := deps.Segments.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(segments)
	}
}

// composeRequest is the body for composing a route. Exactly one of segments
// or waypoints must be set.
type composeRequest struct {
	Name      string                   `json:"name"`
	Segments  []domain.RouteSegmentRef `json:"segments,omitempty"`
	Waypoints []domain.Waypoint        `json:"waypoints,omitempty"`
}

// ComposeRouteHandler builds a route from an ordered segment list or a
// raw waypoint sequence.
func ComposeRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req composeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return errBadRequest(c, "name is required")
		}
		if len(req.Segments) > 0 && len(req.Waypoints) > 0 {
			return errBadRequest(c, "segments and waypoints are mutually exclusive")
		}
		if len(req.Segments) == 0 && len(req.Waypoints) == 0 {
			return errBadRequest(c, "segments or waypoints are required")
		}

		var (
			route *domain.Route
			mode  string
			err   error
		)
		if len(req.Segments) > 0 {
			mode = "segments"
			route, err = deps.Routes.ComposeFromSegments(c.Context(), req.Name, req.Segments)
		} else {
			mode = "waypoints"
			route, err = deps.Routes.ComposeFromWaypoints(c.Context(), req.Name, req.Waypoints)
		}
		if err != nil {
			return errDomain(c, err)
		}

		metrics.RoutesComposed.WithLabelValues(mode).Inc()
		// Refs that failed to load were skipped, not composed.
		if skipped := len(req.Segments) - len(route.Segments); skipped > 0 {
			metrics.SegmentLoadsSkipped.Add(float64(skipped))
		}
		return c.Status(201).JSON(route)
	}
}

// GetRouteHandler returns a route by ID.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "route id is required")
		}
		route, err := deps.Routes.GetByID(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(route)
	}
}

// ListRoutesHandler lists routes newest first, without geometry.
func ListRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}

		routes, err := deps.Routes.List(c.Context(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Count: len(routes)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: routes, Pagination: pg})
	}
}

// ExportRouteGPXHandler serves a route's composed geometry as a GPX download.
func ExportRouteGPXHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "route id is required")
		}
		route, err := deps.Routes.GetByID(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}

		data, err := gpx.EncodeRoute(route)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Content-Type", "application/gpx+xml")
		c.Set("Content-Disposition", `attachment; filename="`+route.ID+`.gpx"`)
		return c.Send(data)
	}
}
