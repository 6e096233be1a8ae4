package ports

import (
	"context"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// PositionRepository persists tracked positions.
type PositionRepository interface {
	Insert(ctx context.Context, pos *domain.Position) error
	// Recent returns up to limit of the newest positions, oldest first.
	Recent(ctx context.Context, limit int) ([]domain.Position, error)
	Count(ctx context.Context) (int, error)
}

// SegmentRepository persists archived trail segments.
type SegmentRepository interface {
	Save(ctx context.Context, seg *domain.ArchivedSegment) error
	Delete(ctx context.Context, id string) error
}
