package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/selene/internal/core/domain"
)

func val(v float64) *float64 { return &v }

// --- Mock DatasetSource ---

type mockSource struct {
	fetchFn func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error)

	mu    sync.Mutex
	calls []domain.Dataset
}

func (m *mockSource) Fetch(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ds)
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, ds)
	}
	return nil, nil
}

func (m *mockSource) Calls() []domain.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Dataset(nil), m.calls...)
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]int
}

var errCacheMiss = errors.New("cache miss")

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttl: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl[key] = ttlSeconds
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
	reasons   []string
	loaded    []domain.Selection
	refreshed []domain.DatasetRefreshed
}

func (m *mockPublisher) PublishSelection(ctx context.Context, ev *domain.SelectionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reasons = append(m.reasons, ev.Reason)
	return nil
}

func (m *mockPublisher) PublishDatasetLoaded(ctx context.Context, sel *domain.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = append(m.loaded, *sel)
	return nil
}

func (m *mockPublisher) PublishRefreshed(ctx context.Context, ev *domain.DatasetRefreshed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = append(m.refreshed, *ev)
	return nil
}

func (m *mockPublisher) Reasons() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reasons...)
}
