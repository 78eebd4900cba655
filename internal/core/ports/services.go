package ports

import (
	"context"

	"github.com/samirrijal/selene/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSelection(ctx context.Context, ev *domain.SelectionEvent) error
	PublishDatasetLoaded(ctx context.Context, sel *domain.Selection) error
	PublishRefreshed(ctx context.Context, ev *domain.DatasetRefreshed) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRefreshed(ctx context.Context, handler func(ctx context.Context, ev *domain.DatasetRefreshed) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
