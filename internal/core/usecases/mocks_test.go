package usecases_test

import (
	"context"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// Hand-rolled port mocks shared by the service tests.

type mockTrackRepo struct {
	insertFn  func(ctx context.Context, track *domain.Track) error
	getByIDFn func(ctx context.Context, id string) (*domain.Track, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockTrackRepo) Insert(ctx context.Context, track *domain.Track) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, track)
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
	return nil, nil
}

func (m *mockTrackRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockSegmentRepo struct {
	insertFn  func(ctx context.Context, segment *domain.Segment) error
	getByIDFn func(ctx context.Context, id string) (*domain.Segment, error)
}

func (m *mockSegmentRepo) Insert(ctx context.Context, segment *domain.Segment) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, segment)
	}
	return nil
}

func (m *mockSegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSegmentRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Segment, error) {
	return nil, nil
}

type mockRouteRepo struct {
	insertFn func(ctx context.Context, route *domain.Route) error
	inserted []*domain.Route
}

func (m *mockRouteRepo) Insert(ctx context.Context, route *domain.Route) error {
	m.inserted = append(m.inserted, route)
	if m.insertFn != nil {
		return m.insertFn(ctx, route)
	}
	return nil
}

func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRouteRepo) List(ctx context.Context, limit, offset int) ([]domain.Route, error) {
	return nil, nil
}

type mockParser struct {
	points []domain.GeoPoint
	name   string
	err    error
}

func (m *mockParser) Parse(data []byte) ([]domain.GeoPoint, string, error) {
	return m.points, m.name, m.err
}

type mockBlobs struct {
	puts    map[string][]byte
	deletes []string
	putErr  error
}

func newMockBlobs() *mockBlobs { return &mockBlobs{puts: make(map[string][]byte)} }

func (m *mockBlobs) Put(ctx context.Context, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.puts[key] = data
	return nil
}

func (m *mockBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	if b, ok := m.puts[key]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockBlobs) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	delete(m.puts, key)
	return nil
}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if b, ok := m.data[key]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type mockEvents struct {
	tracks   int
	segments int
	routes   int
}

func (m *mockEvents) PublishTrackIngested(ctx context.Context, track *domain.Track) error {
	m.tracks++
	return nil
}

func (m *mockEvents) PublishSegmentCut(ctx context.Context, segment *domain.Segment) error {
	m.segments++
	return nil
}

func (m *mockEvents) PublishRouteComposed(ctx context.Context, route *domain.Route) error {
	m.routes++
	return nil
}
