package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// Activity names registered by the archiver worker.
const (
	ActivitySaveSegment    = "SaveSegment"
	ActivityPublishSegment = "PublishSegment"
	ActivityDeleteSegment  = "DeleteSegment"
)

// SegmentArchiveInput is the input for the segment archive workflow.
type SegmentArchiveInput struct {
	Segment domain.ArchivedSegment
}

// SegmentArchiveWorkflow stores a closed trail segment and announces it.
// If the announcement fails, the stored row is deleted (saga compensation).
func SegmentArchiveWorkflow(ctx workflow.Context, input SegmentArchiveInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting segment archive workflow",
		"segmentID", input.Segment.ID,
		"points", len(input.Segment.Points),
	)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Persist
	if err := workflow.ExecuteActivity(ctx, ActivitySaveSegment, input.Segment).Get(ctx, nil); err != nil {
		return err
	}

	// Step 2: Publish
	err := workflow.ExecuteActivity(ctx, ActivityPublishSegment, input.Segment).Get(ctx, nil)
	if err != nil {
		logger.Warn("segment publish failed, compensating", "error", err)
		// Compensate: delete the stored segment
		_ = workflow.ExecuteActivity(ctx, ActivityDeleteSegment, input.Segment.ID).Get(ctx, nil)
		return err
	}

	logger.Info("Segment archived", "segmentID", input.Segment.ID)
	return nil
}
