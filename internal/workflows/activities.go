package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/ports"
)

// SegmentActivities holds the activity implementations for the archive workflow.
type SegmentActivities struct {
	Segments  ports.SegmentRepository
	Publisher ports.EventPublisher
}

// SaveSegment persists the segment.
func (a *SegmentActivities) SaveSegment(ctx context.Context, seg domain.ArchivedSegment) error {
	if len(seg.Points) == 0 {
		return fmt.Errorf("segment %s has no points", seg.ID)
	}
	if err := a.Segments.Save(ctx, &seg); err != nil {
		return fmt.Errorf("save segment: %w", err)
	}
	return nil
}

// PublishSegment announces the archived segment.
func (a *SegmentActivities) PublishSegment(ctx context.Context, seg domain.ArchivedSegment) error {
	if a.Publisher == nil {
		slog.Info("segment archived (no publisher)", "segment_id", seg.ID)
		return nil
	}
	if err := a.Publisher.PublishSegment(ctx, &seg); err != nil {
		return fmt.Errorf("publish segment: %w", err)
	}
	return nil
}

// DeleteSegment removes a stored segment (saga compensation / rollback).
func (a *SegmentActivities) DeleteSegment(ctx context.Context, id string) error {
	if err := a.Segments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete segment %s: %w", id, err)
	}
	slog.Info("segment deleted (saga compensation)", "segment_id", id)
	return nil
}
