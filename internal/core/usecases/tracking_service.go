package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/ports"
	"github.com/samirrijal/isstrack/internal/core/trail"
	"github.com/samirrijal/isstrack/internal/pkg/metrics"
	"github.com/samirrijal/isstrack/internal/pkg/telemetry"
)

const latestCacheKey = "iss:latest"

// TrackingOptions configures a TrackingService.
type TrackingOptions struct {
	SourceName   string
	MaxPositions int
	PollInterval time.Duration
}

// TrackingService polls a position source and keeps a bounded history.
type TrackingService struct {
	source    ports.PositionSource
	positions ports.PositionRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	opts      TrackingOptions

	mu      sync.RWMutex
	history []domain.Position
}

// NewTrackingService creates a new TrackingService. positions, cache and
// publisher may be nil.
func NewTrackingService(
	source ports.PositionSource,
	positions ports.PositionRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	opts TrackingOptions,
) *TrackingService {
	if opts.MaxPositions <= 0 {
		opts.MaxPositions = 15000
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return &TrackingService{
		source:    source,
		positions: positions,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		history:   make([]domain.Position, 0, min(opts.MaxPositions, 1024)),
	}
}

// Restore reloads the newest stored positions into memory.
func (s *TrackingService) Restore(ctx context.Context) error {
	if s.positions == nil {
		return nil
	}
	stored, err := s.positions.Recent(ctx, s.opts.MaxPositions)
	if err != nil {
		return fmt.Errorf("restore positions: %w", err)
	}

	s.mu.Lock()
	s.history = append(s.history[:0], stored...)
	n := len(s.history)
	s.mu.Unlock()

	metrics.PositionsStored.Set(float64(n))
	slog.Info("restored position history", "count", n)
	return nil
}

// Ingest records a position. Persistence, caching and publishing are best
// effort.
func (s *TrackingService) Ingest(ctx context.Context, pos *domain.Position) {
	s.mu.Lock()
	s.history = append(s.history, *pos)
	if over := len(s.history) - s.opts.MaxPositions; over > 0 {
		s.history = s.history[over:]
	}
	n := len(s.history)
	s.mu.Unlock()

	metrics.PositionsStored.Set(float64(n))
	metrics.PositionsIngested.WithLabelValues(s.opts.SourceName).Inc()

	if s.positions != nil {
		if err := s.positions.Insert(ctx, pos); err != nil {
			slog.Warn("persist position failed", "error", err)
		}
	}
	if s.cache != nil {
		if data, err := json.Marshal(pos); err == nil {
			_ = s.cache.Set(ctx, latestCacheKey, data, max(int(s.opts.PollInterval.Seconds())*5, 10))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishPosition(ctx, pos); err != nil {
			slog.Warn("publish position failed", "error", err)
		}
	}

	slog.Debug("position ingested",
		"datetime", pos.Datetime.Format(time.RFC3339),
		"lat", pos.Latitude,
		"lon", pos.Longitude,
	)
}

// Poll fetches one position from the source and ingests it.
func (s *TrackingService) Poll(ctx context.Context) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanTrackerPoll)
	defer span.End()
	span.SetAttributes(attribute.String("source", s.opts.SourceName))

	start := time.Now()
	pos, err := s.source.Fetch(ctx)
	metrics.UpstreamPollDuration.WithLabelValues(s.opts.SourceName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamPollErrors.WithLabelValues(s.opts.SourceName).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("fetch position: %w", err)
	}

	s.Ingest(ctx, pos)
	return nil
}

// Run restores history, then polls immediately and on every interval until
// ctx is cancelled.
func (s *TrackingService) Run(ctx context.Context) {
	if err := s.Restore(ctx); err != nil {
		slog.Warn("history restore failed", "error", err)
	}

	slog.Info("position tracking started",
		"source", s.opts.SourceName,
		"interval", s.opts.PollInterval.String(),
		"max_positions", s.opts.MaxPositions,
	)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		if err := s.Poll(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("position poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("position tracking stopped")
			return
		case <-ticker.C:
		}
	}
}

// Positions returns a copy of the history, oldest first. If limit > 0 only
// the newest limit positions are returned.
func (s *TrackingService) Positions(limit int) []domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.history
	if limit > 0 && len(src) > limit {
		src = src[len(src)-limit:]
	}
	out := make([]domain.Position, len(src))
	copy(out, src)
	return out
}

// Latest returns the newest position, falling back to the cache when the
// in-memory history is empty (e.g. right after a restart).
func (s *TrackingService) Latest(ctx context.Context) *domain.Position {
	s.mu.RLock()
	if n := len(s.history); n > 0 {
		p := s.history[n-1]
		s.mu.RUnlock()
		return &p
	}
	s.mu.RUnlock()

	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, latestCacheKey)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("latest").Inc()
		return nil
	}
	var p domain.Position
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	metrics.CacheHits.WithLabelValues("latest").Inc()
	return &p
}

// Status reports buffer occupancy and poll settings.
func (s *TrackingService) Status() domain.TrackerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.TrackerStatus{
		PositionsStored: len(s.history),
		MaxPositions:    s.opts.MaxPositions,
		UpdateInterval:  int(s.opts.PollInterval.Seconds()),
	}
	if n := len(s.history); n > 0 {
		t := s.history[n-1].Datetime
		st.LastUpdate = &t
	}
	return st
}

// Trail segments the stored history at antimeridian crossings, keeping at
// most maxSegments closed segments.
func (s *TrackingService) Trail(maxSegments int) *trail.Trail {
	positions := s.Positions(0)
	points := make([]domain.GeoPoint, len(positions))
	for i, p := range positions {
		points[i] = p.Point()
	}
	t := trail.New(maxSegments)
	t.Load(points)
	return t
}
