package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/imanolz/gravelpass/internal/adapters/http"
	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/usecases"
)

// ---- Mock repositories ----

type mockTrackRepo struct {
	insertFn  func(ctx context.Context, t *domain.Track) error
	getByIDFn func(ctx context.Context, id string) (*domain.Track, error)
	listFn    func(ctx context.Context, limit, offset int) ([]domain.Track, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockTrackRepo) Insert(ctx context.Context, t *domain.Track) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, t)
	}
	return nil
}
func (m *mockTrackRepo) GetByID(ctx context.Context, id string) (*domain.Track, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockTrackRepo) List(ctx context.Context, limit, offset int) ([]domain.Track, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}
func (m *mockTrackRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockSegmentRepo struct {
	insertFn     func(ctx context.Context, s *domain.Segment) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Segment, error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Segment, error)
}

func (m *mockSegmentRepo) Insert(ctx context.Context, s *domain.Segment) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, s)
	}
	return nil
}
func (m *mockSegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockSegmentRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Segment, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

type mockRouteRepo struct {
	insertFn  func(ctx context.Context, r *domain.Route) error
	getByIDFn func(ctx context.Context, id string) (*domain.Route, error)
	listFn    func(ctx context.Context, limit, offset int) ([]domain.Route, error)
}

func (m *mockRouteRepo) Insert(ctx context.Context, r *domain.Route) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, r)
	}
	return nil
}
func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockRouteRepo) List(ctx context.Context, limit, offset int) ([]domain.Route, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

// ---- Mock collaborators ----

type mockParser struct {
	points []domain.GeoPoint
	name   string
	err    error
}

func (m *mockParser) Parse(data []byte) ([]domain.GeoPoint, string, error) {
	return m.points, m.name, m.err
}

type mockBlobs struct{ data map[string][]byte }

func newMockBlobs() *mockBlobs { return &mockBlobs{data: make(map[string][]byte)} }

func (m *mockBlobs) Put(ctx context.Context, key string, data []byte) error {
	m.data[key] = data
	return nil
}
func (m *mockBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	if d, ok := m.data[key]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockBlobs) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type mockCache struct{}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("miss")
}
func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return nil
}
func (m *mockCache) Delete(ctx context.Context, key string) error { return nil }

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return "id-" + string(rune('0'+s.n))
}

type mockEvents struct{}

func (m *mockEvents) PublishTrackIngested(ctx context.Context, t *domain.Track) error { return nil }
func (m *mockEvents) PublishSegmentCut(ctx context.Context, s *domain.Segment) error  { return nil }
func (m *mockEvents) PublishRouteComposed(ctx context.Context, r *domain.Route) error { return nil }

// ---- Test fixtures ----

func samplePoints() []domain.GeoPoint {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	pts := make([]domain.GeoPoint, 0, 4)
	coords := [][3]float64{
		{43.30, -2.68, 10},
		{43.31, -2.67, 20},
		{43.32, -2.66, 15},
		{43.33, -2.65, 25},
	}
	for i, c := range coords {
		ts := base.Add(time.Duration(i) * 10 * time.Second)
		pts = append(pts, domain.GeoPoint{
			Latitude: c[0], Longitude: c[1], Elevation: c[2], Timestamp: &ts,
		})
	}
	return pts
}

func sampleTrack(id string) *domain.Track {
	track, err := usecases.ExtractTrack(samplePoints(), id, "Sample")
	if err != nil {
		panic(err)
	}
	return track
}

type testEnv struct {
	app      *fiber.App
	tracks   *mockTrackRepo
	segments *mockSegmentRepo
	routes   *mockRouteRepo
	parser   *mockParser
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tracks:   &mockTrackRepo{},
		segments: &mockSegmentRepo{},
		routes:   &mockRouteRepo{},
		parser:   &mockParser{},
	}

	cache := &mockCache{}
	events := &mockEvents{}
	blobs := newMockBlobs()

	trackSvc := usecases.NewTrackService(env.tracks, env.parser, blobs, cache, &seqIDs{}, events)
	segmentSvc := usecases.NewSegmentService(env.segments, env.tracks, cache, &seqIDs{}, events)
	routeSvc := usecases.NewRouteService(env.routes, env.segments, &seqIDs{}, events)

	app := fiber.New()
	handler.SetupRoutes(app, &handler.Dependencies{
		Tracks:   trackSvc,
		Segments: segmentSvc,
		Routes:   routeSvc,
	})
	env.app = app
	return env
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out
}

// ---- Tracks ----

func TestUploadTrack(t *testing.T) {
	env := newTestEnv()
	env.parser.points = samplePoints()
	env.parser.name = "Morning Ride"

	var inserted *domain.Track
	env.tracks.insertFn = func(ctx context.Context, track *domain.Track) error {
		inserted = track
		return nil
	}

	req := httptest.NewRequest("POST", "/v1/tracks", strings.NewReader("<gpx></gpx>"))
	req.Header.Set("Content-Type", "application/gpx+xml")
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 201 {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if inserted == nil {
		t.Fatal("track was not persisted")
	}
	if inserted.Name != "Morning Ride" {
		t.Errorf("name = %q, want %q", inserted.Name, "Morning Ride")
	}
	if inserted.Stats.TotalPoints != 4 {
		t.Errorf("total points = %d, want 4", inserted.Stats.TotalPoints)
	}
}

func TestUploadTrackEmptyBody(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest("POST", "/v1/tracks", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadTrackNoPoints(t *testing.T) {
	env := newTestEnv()
	env.parser.points = nil // parser succeeded but the file had no geometry

	req := httptest.NewRequest("POST", "/v1/tracks", strings.NewReader("<gpx></gpx>"))
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetTrack(t *testing.T) {
	env := newTestEnv()
	env.tracks.getByIDFn = func(ctx context.Context, id string) (*domain.Track, error) {
		if id != "t1" {
			return nil, domain.ErrNotFound
		}
		return sampleTrack("t1"), nil
	}

	code, body := doJSON(t, env.app, "GET", "/v1/tracks/t1", nil)
	if code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}

	var track domain.Track
	if err := json.Unmarshal(body, &track); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if track.ID != "t1" {
		t.Errorf("id = %q, want t1", track.ID)
	}
	if len(track.Points) != 4 {
		t.Errorf("points = %d, want 4", len(track.Points))
	}
}

func TestGetTrackNotFound(t *testing.T) {
	env := newTestEnv()

	code, _ := doJSON(t, env.app, "GET", "/v1/tracks/nope", nil)
	if code != 404 {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestListTracks(t *testing.T) {
	env := newTestEnv()
	env.tracks.listFn = func(ctx context.Context, limit, offset int) ([]domain.Track, error) {
		return []domain.Track{*sampleTrack("t1"), *sampleTrack("t2")}, nil
	}

	code, body := doJSON(t, env.app, "GET", "/v1/tracks", nil)
	if code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}

	var out struct {
		Data       []domain.Track     `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Data) != 2 {
		t.Errorf("data = %d items, want 2", len(out.Data))
	}
	if out.Pagination.Count != 2 {
		t.Errorf("count = %d, want 2", out.Pagination.Count)
	}
}

func TestDeleteTrack(t *testing.T) {
	env := newTestEnv()
	deleted := ""
	env.tracks.deleteFn = func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}

	code, _ := doJSON(t, env.app, "DELETE", "/v1/tracks/t1", nil)
	if code != 204 {
		t.Fatalf("status = %d, want 204", code)
	}
	if deleted != "t1" {
		t.Errorf("deleted = %q, want t1", deleted)
	}
}

// ---- Segments ----

func TestCutSegment(t *testing.T) {
	env := newTestEnv()
	env.tracks.getByIDFn = func(ctx context.Context, id string) (*domain.Track, error) {
		return sampleTrack(id), nil
	}

	var inserted *domain.Segment
	env.segments.insertFn = func(ctx context.Context, seg *domain.Segment) error {
		inserted = seg
		return nil
	}

	body := map[string]interface{}{
		"start_index": 1,
		"end_index":   2,
		"name":        "Forest climb",
		"attrs": map[string]interface{}{
			"difficulty_level": 3,
			"surface_types":    []string{"gravel"},
			"tire_dry":         "semi_slick",
			"tire_wet":         "knobs",
		},
	}
	code, out := doJSON(t, env.app, "POST", "/v1/tracks/t1/segments", body)
	if code != 201 {
		t.Fatalf("status = %d, want 201: %s", code, out)
	}
	if inserted == nil {
		t.Fatal("segment was not persisted")
	}
	if len(inserted.Points) != 2 {
		t.Errorf("points = %d, want 2", len(inserted.Points))
	}
	if inserted.TrackID != "t1" {
		t.Errorf("track_id = %q, want t1", inserted.TrackID)
	}
	if inserted.Attrs.DifficultyLevel != 3 {
		t.Errorf("difficulty = %d, want 3", inserted.Attrs.DifficultyLevel)
	}
}

func TestCutSegmentInvertedRange(t *testing.T) {
	env := newTestEnv()
	env.tracks.getByIDFn = func(ctx context.Context, id string) (*domain.Track, error) {
		return sampleTrack(id), nil
	}

	body := map[string]interface{}{"start_index": 3, "end_index": 1, "name": "bad"}
	code, _ := doJSON(t, env.app, "POST", "/v1/tracks/t1/segments", body)
	if code != 400 {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestCutSegmentRangeOutOfBounds(t *testing.T) {
	env := newTestEnv()
	env.tracks.getByIDFn = func(ctx context.Context, id string) (*domain.Track, error) {
		return sampleTrack(id), nil
	}

	body := map[string]interface{}{"start_index": 0, "end_index": 99, "name": "bad"}
	code, _ := doJSON(t, env.app, "POST", "/v1/tracks/t1/segments", body)
	if code != 400 {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestNearbySegmentsRequiresCoords(t *testing.T) {
	env := newTestEnv()

	code, _ := doJSON(t, env.app, "GET", "/v1/segments/nearby?radius=500", nil)
	if code != 400 {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestNearbySegments(t *testing.T) {
	env := newTestEnv()
	env.segments.findNearbyFn = func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Segment, error) {
		return []domain.Segment{{ID: "s1", Name: "near"}}, nil
	}

	code, body := doJSON(t, env.app, "GET", "/v1/segments/nearby?lat=43.31&lon=-2.67&radius=1500", nil)
	if code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	var segs []domain.Segment
	if err := json.Unmarshal(body, &segs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(segs) != 1 || segs[0].ID != "s1" {
		t.Errorf("unexpected result: %+v", segs)
	}
}

// ---- Routes ----

func TestComposeRouteFromSegments(t *testing.T) {
	env := newTestEnv()
	track := sampleTrack("t1")
	env.segments.getByIDFn = func(ctx context.Context, id string) (*domain.Segment, error) {
		return &domain.Segment{
			ID:     id,
			Points: track.Points[:2],
			Attrs: domain.SegmentAttributes{
				DifficultyLevel: 2,
				Surfaces:        domain.NewSurfaceSet(domain.SurfaceGravel),
				TireDry:         domain.TireSemiSlick,
				TireWet:         domain.TireKnobs,
			},
		}, nil
	}

	var inserted *domain.Route
	env.routes.insertFn = func(ctx context.Context, r *domain.Route) error {
		inserted = r
		return nil
	}

	body := map[string]interface{}{
		"name": "Weekend loop",
		"segments": []map[string]interface{}{
			{"segment_id": "s1"},
			{"segment_id": "s2", "reversed": true},
		},
	}
	code, out := doJSON(t, env.app, "POST", "/v1/routes", body)
	if code != 201 {
		t.Fatalf("status = %d, want 201: %s", code, out)
	}
	if inserted == nil {
		t.Fatal("route was not persisted")
	}
	if len(inserted.Composite.Points) != 4 {
		t.Errorf("composite points = %d, want 4", len(inserted.Composite.Points))
	}
	if len(inserted.Segments) != 2 {
		t.Errorf("segment refs = %d, want 2", len(inserted.Segments))
	}
}

func TestComposeRouteAllSegmentsMissing(t *testing.T) {
	env := newTestEnv()
	// Segment loader keeps its default behavior: everything is ErrNotFound.

	body := map[string]interface{}{
		"name":     "Ghost route",
		"segments": []map[string]interface{}{{"segment_id": "s1"}},
	}
	code, _ := doJSON(t, env.app, "POST", "/v1/routes", body)
	if code != 422 {
		t.Errorf("status = %d, want 422", code)
	}
}

func TestComposeRouteFromWaypoints(t *testing.T) {
	env := newTestEnv()
	var inserted *domain.Route
	env.routes.insertFn = func(ctx context.Context, r *domain.Route) error {
		inserted = r
		return nil
	}

	body := map[string]interface{}{
		"name": "Drawn route",
		"waypoints": []map[string]float64{
			{"lat": 43.30, "lon": -2.68, "elevation": 10},
			{"lat": 43.31, "lon": -2.67, "elevation": 20},
			{"lat": 43.32, "lon": -2.66, "elevation": 15},
		},
	}
	code, out := doJSON(t, env.app, "POST", "/v1/routes", body)
	if code != 201 {
		t.Fatalf("status = %d, want 201: %s", code, out)
	}
	if inserted == nil {
		t.Fatal("route was not persisted")
	}
	if len(inserted.Composite.Points) != 3 {
		t.Errorf("composite points = %d, want 3", len(inserted.Composite.Points))
	}
	// Waypoint routes get default riding attributes.
	if inserted.Attrs.DifficultyLevel != 2 {
		t.Errorf("difficulty = %d, want 2", inserted.Attrs.DifficultyLevel)
	}
}

func TestComposeRouteTooFewWaypoints(t *testing.T) {
	env := newTestEnv()

	body := map[string]interface{}{
		"name":      "Single point",
		"waypoints": []map[string]float64{{"lat": 43.30, "lon": -2.68}},
	}
	code, _ := doJSON(t, env.app, "POST", "/v1/routes", body)
	if code != 400 {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestComposeRouteRejectsMixedBody(t *testing.T) {
	env := newTestEnv()

	body := map[string]interface{}{
		"name":      "Mixed",
		"segments":  []map[string]interface{}{{"segment_id": "s1"}},
		"waypoints": []map[string]float64{{"lat": 1, "lon": 1}, {"lat": 2, "lon": 2}},
	}
	code, _ := doJSON(t, env.app, "POST", "/v1/routes", body)
	if code != 400 {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestExportRouteGPX(t *testing.T) {
	env := newTestEnv()
	env.routes.getByIDFn = func(ctx context.Context, id string) (*domain.Route, error) {
		return &domain.Route{
			ID:   id,
			Name: "Exported",
			Composite: domain.RouteComposite{
				Points: samplePoints(),
			},
		}, nil
	}

	req := httptest.NewRequest("GET", "/v1/routes/r1/gpx", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "gpx") {
		t.Errorf("content type = %q, want gpx", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "Exported") {
		t.Error("exported GPX is missing the route name")
	}
}

// ---- GraphQL ----

func TestGraphQLTrackQuery(t *testing.T) {
	env := newTestEnv()
	env.tracks.getByIDFn = func(ctx context.Context, id string) (*domain.Track, error) {
		return sampleTrack(id), nil
	}

	body := map[string]interface{}{
		"query": `{ track(id: "t1") { id name stats { total_points } } }`,
	}
	code, out := doJSON(t, env.app, "POST", "/graphql", body)
	if code != 200 {
		t.Fatalf("status = %d, want 200: %s", code, out)
	}

	var result struct {
		Data struct {
			Track struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Stats struct {
					TotalPoints int `json:"total_points"`
				} `json:"stats"`
			} `json:"track"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if result.Data.Track.ID != "t1" {
		t.Errorf("id = %q, want t1", result.Data.Track.ID)
	}
	if result.Data.Track.Stats.TotalPoints != 4 {
		t.Errorf("total_points = %d, want 4", result.Data.Track.Stats.TotalPoints)
	}
}
