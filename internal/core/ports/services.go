package ports

import (
	"context"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// PositionSource produces the current ISS position (upstream feed or orbit model).
type PositionSource interface {
	Fetch(ctx context.Context) (*domain.Position, error)
}

// TrackerClient reads positions from a tracker API backend.
type TrackerClient interface {
	// Positions returns the full stored history, oldest first.
	Positions(ctx context.Context) ([]domain.Position, error)
	// Latest returns the newest position, or nil if the tracker has none yet.
	Latest(ctx context.Context) (*domain.Position, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishPosition(ctx context.Context, pos *domain.Position) error
	PublishSegment(ctx context.Context, seg *domain.ArchivedSegment) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// SegmentArchiver hands closed trail segments off for archival.
type SegmentArchiver interface {
	Archive(ctx context.Context, seg *domain.ArchivedSegment) error
}
