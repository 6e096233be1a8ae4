package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// SegmentRepo implements ports.SegmentRepository.
type SegmentRepo struct {
	db *DB
}

func NewSegmentRepo(db *DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

// Save upserts an archived segment. Points are stored as JSONB.
func (r *SegmentRepo) Save(ctx context.Context, seg *domain.ArchivedSegment) error {
	var minLat, minLon, maxLat, maxLon *float64
	if b, ok := domain.BoundsOf(seg.Points); ok {
		minLat, minLon, maxLat, maxLon = &b.MinLat, &b.MinLon, &b.MaxLat, &b.MaxLon
	}

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO trail_segments (id, closed_at, point_count, min_lat, min_lon, max_lat, max_lon, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			closed_at = EXCLUDED.closed_at,
			point_count = EXCLUDED.point_count,
			min_lat = EXCLUDED.min_lat,
			min_lon = EXCLUDED.min_lon,
			max_lat = EXCLUDED.max_lat,
			max_lon = EXCLUDED.max_lon,
			points = EXCLUDED.points
	`, seg.ID, seg.ClosedAt, len(seg.Points), minLat, minLon, maxLat, maxLon, seg.Points)
	if err != nil {
		return fmt.Errorf("save segment %s: %w", seg.ID, err)
	}
	return nil
}

func (r *SegmentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM trail_segments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete segment %s: %w", id, err)
	}
	return nil
}
