package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// --- Mock PositionSource ---

type mockSource struct {
	fetchFn func(ctx context.Context) (*domain.Position, error)
}

func (m *mockSource) Fetch(ctx context.Context) (*domain.Position, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}
	return nil, errors.New("no fetchFn")
}

// --- Mock PositionRepository ---

type mockPositionRepo struct {
	mu       sync.Mutex
	inserted []domain.Position
	recentFn func(ctx context.Context, limit int) ([]domain.Position, error)
	insertFn func(ctx context.Context, pos *domain.Position) error
}

func (m *mockPositionRepo) Insert(ctx context.Context, pos *domain.Position) error {
	m.mu.Lock()
	m.inserted = append(m.inserted, *pos)
	m.mu.Unlock()
	if m.insertFn != nil {
		return m.insertFn(ctx, pos)
	}
	return nil
}

func (m *mockPositionRepo) Recent(ctx context.Context, limit int) ([]domain.Position, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPositionRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted), nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	positions []domain.Position
	segments  []domain.ArchivedSegment
}

func (m *mockPublisher) PublishPosition(ctx context.Context, pos *domain.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append(m.positions, *pos)
	return nil
}

func (m *mockPublisher) PublishSegment(ctx context.Context, seg *domain.ArchivedSegment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = append(m.segments, *seg)
	return nil
}

// --- Mock TrackerClient ---

type mockTrackerClient struct {
	positionsFn func(ctx context.Context) ([]domain.Position, error)
	latestFn    func(ctx context.Context) (*domain.Position, error)
}

func (m *mockTrackerClient) Positions(ctx context.Context) ([]domain.Position, error) {
	if m.positionsFn != nil {
		return m.positionsFn(ctx)
	}
	return nil, nil
}

func (m *mockTrackerClient) Latest(ctx context.Context) (*domain.Position, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx)
	}
	return nil, nil
}

// --- Mock SegmentArchiver ---

type mockArchiver struct {
	mu       sync.Mutex
	archived []domain.ArchivedSegment
	err      error
}

func (m *mockArchiver) Archive(ctx context.Context, seg *domain.ArchivedSegment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived = append(m.archived, *seg)
	return m.err
}

// positionSeq returns positions one minute apart along the given longitudes.
func positionSeq(lons ...float64) []domain.Position {
	out := make([]domain.Position, len(lons))
	for i, lon := range lons {
		out[i] = domain.NewPosition(1700000000+int64(i)*60, float64(i), lon)
	}
	return out
}
