package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/isstrack/internal/adapters/nats"
	"github.com/samirrijal/isstrack/internal/adapters/postgres"
	temporaladapter "github.com/samirrijal/isstrack/internal/adapters/temporal"
	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/ports"
	"github.com/samirrijal/isstrack/internal/pkg/config"
	"github.com/samirrijal/isstrack/internal/pkg/logging"
	"github.com/samirrijal/isstrack/internal/workflows"
)

func main() {
	cfg, err := config.Load("isstrack-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup("isstrack-archiver", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 5)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Publishing is optional; without NATS segments are only stored.
	var publisher ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, segments will not be announced", "error", err)
	} else {
		defer p.Close()
		publisher = p

		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeSegments(ctx, "segment-audit", func(ctx context.Context, seg *domain.ArchivedSegment) error {
				slog.Info("segment announced",
					"segment_id", seg.ID,
					"closed_at", seg.ClosedAt,
					"points", len(seg.Points),
				)
				return nil
			})
			if err != nil {
				slog.Warn("segment audit subscription failed", "error", err)
			}
		}
	}

	c, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.SegmentArchiveWorkflow)
	w.RegisterActivity(&workflows.SegmentActivities{
		Segments:  postgres.NewSegmentRepo(db),
		Publisher: publisher,
	})

	slog.Info("archiver worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
