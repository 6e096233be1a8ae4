package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// PositionRepo implements ports.PositionRepository.
type PositionRepo struct {
	db *DB
}

func NewPositionRepo(db *DB) *PositionRepo {
	return &PositionRepo{db: db}
}

// Insert stores a fix. Re-inserting the same timestamp is a no-op.
func (r *PositionRepo) Insert(ctx context.Context, pos *domain.Position) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO positions (timestamp, recorded_at, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (timestamp) DO NOTHING
	`, pos.Timestamp, pos.Datetime, pos.Latitude, pos.Longitude)
	if err != nil {
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// Recent returns the newest limit positions, oldest first.
func (r *PositionRepo) Recent(ctx context.Context, limit int) ([]domain.Position, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT timestamp, recorded_at, latitude, longitude FROM (
			SELECT timestamp, recorded_at, latitude, longitude
			FROM positions
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}

	positions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Position, error) {
		var p domain.Position
		err := row.Scan(&p.Timestamp, &p.Datetime, &p.Latitude, &p.Longitude)
		p.Datetime = p.Datetime.UTC()
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan positions: %w", err)
	}
	return positions, nil
}

func (r *PositionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM positions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count positions: %w", err)
	}
	return n, nil
}
