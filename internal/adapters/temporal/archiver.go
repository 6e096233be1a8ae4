// Package temporaladapter starts workflows on a Temporal cluster.
package temporaladapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/workflows"
)

// startTimeout bounds how long the caller waits for the workflow to be accepted.
const startTimeout = 5 * time.Second

// Archiver implements ports.SegmentArchiver by starting SegmentArchiveWorkflow.
type Archiver struct {
	client    client.Client
	taskQueue string
}

func NewArchiver(c client.Client, taskQueue string) *Archiver {
	return &Archiver{client: c, taskQueue: taskQueue}
}

// Archive starts the workflow and returns without waiting for it to finish.
func (a *Archiver) Archive(ctx context.Context, seg *domain.ArchivedSegment) error {
	ctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	opts := client.StartWorkflowOptions{
		ID:        "segment-archive-" + seg.ID,
		TaskQueue: a.taskQueue,
	}
	run, err := a.client.ExecuteWorkflow(ctx, opts, workflows.SegmentArchiveWorkflow, workflows.SegmentArchiveInput{Segment: *seg})
	if err != nil {
		return fmt.Errorf("start archive workflow: %w", err)
	}
	slog.Debug("archive workflow started",
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID(),
	)
	return nil
}

// Dial connects to the Temporal frontend.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
		Logger:    newLogger(slog.Default()),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial: %w", err)
	}
	return c, nil
}
