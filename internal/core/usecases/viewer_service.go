package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/ports"
	"github.com/samirrijal/isstrack/internal/core/trail"
	"github.com/samirrijal/isstrack/internal/pkg/geospatial"
	"github.com/samirrijal/isstrack/internal/pkg/metrics"
	"github.com/samirrijal/isstrack/internal/pkg/telemetry"
)

// ViewerOptions configures a ViewerService.
type ViewerOptions struct {
	PollInterval    time.Duration
	MaxPathSegments int
	RetryThreshold  int
	Center          domain.GeoPoint
	Zoom            int
	StreetTiles     string
	TerrainTiles    string
}

// Scene is everything needed to draw the map.
type Scene struct {
	View     domain.ViewState           `json:"view"`
	Bounds   *domain.Bounds             `json:"bounds,omitempty"`
	Features *geojson.FeatureCollection `json:"features"`
}

// ViewerService polls a tracker API and maintains the drawn ground track.
type ViewerService struct {
	client   ports.TrackerClient
	archiver ports.SegmentArchiver
	opts     ViewerOptions

	mu       sync.RWMutex
	trail    *trail.Trail
	latest   *domain.Position
	speed    *float64
	failures int
	conn     domain.ConnectionState
	view     domain.ViewState
}

// NewViewerService creates a new ViewerService. archiver may be nil.
func NewViewerService(client ports.TrackerClient, archiver ports.SegmentArchiver, opts ViewerOptions) *ViewerService {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.MaxPathSegments < 0 {
		opts.MaxPathSegments = trail.DefaultMaxSegments
	}
	if opts.RetryThreshold <= 0 {
		opts.RetryThreshold = 3
	}

	metrics.SetConnected(false)
	return &ViewerService{
		client:   client,
		archiver: archiver,
		opts:     opts,
		trail:    trail.New(opts.MaxPathSegments),
		conn:     domain.Disconnected,
		view: domain.ViewState{
			Center:  opts.Center,
			Zoom:    opts.Zoom,
			Layer:   domain.StreetLayer,
			TileURL: opts.StreetTiles,
		},
	}
}

// LoadHistory replaces the trail with the tracker's full history. Any
// failure marks the connection down and leaves the current trail untouched.
func (s *ViewerService) LoadHistory(ctx context.Context) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanViewerHistory)
	defer span.End()

	positions, err := s.client.Positions(ctx)
	if err != nil {
		metrics.ViewerRequests.WithLabelValues("positions", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		s.mu.Lock()
		s.setConnLocked(domain.Disconnected)
		s.mu.Unlock()
		return fmt.Errorf("load history: %w", err)
	}
	metrics.ViewerRequests.WithLabelValues("positions", "ok").Inc()
	span.SetAttributes(attribute.Int("positions", len(positions)))

	points := make([]domain.GeoPoint, len(positions))
	for i, p := range positions {
		points[i] = p.Point()
	}
	t := trail.New(s.opts.MaxPathSegments)
	t.Load(points)

	s.mu.Lock()
	s.trail = t
	s.failures = 0
	s.setConnLocked(domain.Connected)
	if n := len(positions); n > 0 {
		latest := positions[n-1]
		s.latest = &latest
		s.speed = nil
		if n > 1 {
			s.speed = groundSpeed(positions[n-2], latest)
		}
	}
	s.recordTrailLocked()
	s.mu.Unlock()

	slog.Info("history loaded",
		"positions", len(positions),
		"segments", t.SegmentCount(),
	)
	return nil
}

// Poll fetches the latest position and appends it to the trail. Failures
// flip the connection indicator once RetryThreshold consecutive polls fail.
func (s *ViewerService) Poll(ctx context.Context) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanViewerPoll)
	defer span.End()

	pos, err := s.client.Latest(ctx)
	if err != nil {
		metrics.ViewerRequests.WithLabelValues("latest", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		s.mu.Lock()
		s.failures++
		failures := s.failures
		if failures >= s.opts.RetryThreshold {
			s.setConnLocked(domain.Disconnected)
		}
		s.mu.Unlock()
		return fmt.Errorf("poll latest (failure %d/%d): %w", failures, s.opts.RetryThreshold, err)
	}
	metrics.ViewerRequests.WithLabelValues("latest", "ok").Inc()

	s.mu.Lock()
	s.failures = 0
	s.setConnLocked(domain.Connected)
	if pos == nil {
		s.mu.Unlock()
		return nil
	}

	res := s.trail.Append(pos.Point())
	if !res.Duplicate {
		if s.latest != nil {
			s.speed = groundSpeed(*s.latest, *pos)
		}
		s.latest = pos
	}
	if res.Evicted != nil {
		metrics.SegmentsEvicted.Inc()
	}
	s.recordTrailLocked()
	s.mu.Unlock()

	if res.Closed != nil {
		slog.Info("segment closed at date line",
			"points", len(res.Closed),
			"evicted", res.Evicted != nil,
		)
		s.archive(ctx, res.Closed, pos.Datetime)
	}
	return nil
}

// Run loads the history once, then polls on every interval until ctx is
// cancelled. Each tick completes before the next one is taken.
func (s *ViewerService) Run(ctx context.Context) {
	if err := s.LoadHistory(ctx); err != nil {
		slog.Warn("history load failed", "error", err)
	}

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("viewer polling stopped")
			return
		case <-ticker.C:
			if err := s.Poll(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("latest poll failed", "error", err)
			}
		}
	}
}

// ResetView recenters the map on the configured coordinate, keeping zoom.
func (s *ViewerService) ResetView() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Center = s.opts.Center
	return s.view
}

// ToggleTerrain switches between the street and terrain tile layers.
func (s *ViewerService) ToggleTerrain() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Layer == domain.TerrainLayer {
		s.view.Layer = domain.StreetLayer
		s.view.TileURL = s.opts.StreetTiles
	} else {
		s.view.Layer = domain.TerrainLayer
		s.view.TileURL = s.opts.TerrainTiles
	}
	return s.view
}

// SetZoom records the client's current zoom level.
func (s *ViewerService) SetZoom(zoom int) (domain.ViewState, error) {
	if zoom < 0 || zoom > 22 {
		return domain.ViewState{}, fmt.Errorf("%w: zoom must be between 0 and 22, got %d", domain.ErrInvalidInput, zoom)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom = zoom
	return s.view, nil
}

// Connection returns the connection indicator.
func (s *ViewerService) Connection() domain.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// Scene renders the trail, marker and view state.
func (s *ViewerService) Scene() Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := s.trail.FeatureCollection()
	if s.latest != nil {
		fc.Append(trail.MarkerFeature(*s.latest))
	}
	sc := Scene{View: s.view, Features: fc}
	if b, ok := domain.BoundsOf(s.trail.Points()); ok {
		sc.Bounds = &b
	}
	return sc
}

// Status renders the status panel.
func (s *ViewerService) Status() domain.StatusPanel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.StatusPanel{
		Connection:    s.conn,
		PositionCount: s.trail.PointCount(),
		SegmentCount:  s.trail.SegmentCount(),
		GroundSpeed:   s.speed,
	}
	if s.latest != nil {
		lat, lon, dt := s.latest.Latitude, s.latest.Longitude, s.latest.Datetime
		st.Latitude, st.Longitude, st.Datetime = &lat, &lon, &dt
	}
	return st
}

func (s *ViewerService) setConnLocked(state domain.ConnectionState) {
	if s.conn != state {
		slog.Info("connection state changed", "from", s.conn, "to", state)
	}
	s.conn = state
	metrics.SetConnected(state == domain.Connected)
}

func (s *ViewerService) recordTrailLocked() {
	metrics.TrailSegments.Set(float64(s.trail.SegmentCount()))
	metrics.TrailPoints.Set(float64(s.trail.PointCount()))
}

func (s *ViewerService) archive(ctx context.Context, seg domain.Segment, closedAt time.Time) {
	if s.archiver == nil {
		return
	}
	rec := &domain.ArchivedSegment{
		ID:       uuid.NewString(),
		ClosedAt: closedAt,
		Points:   seg,
	}
	if err := s.archiver.Archive(ctx, rec); err != nil {
		slog.Warn("segment archive failed", "segment_id", rec.ID, "error", err)
	}
}

func groundSpeed(from, to domain.Position) *float64 {
	kmh, ok := geospatial.GroundSpeedKmh(from.Latitude, from.Longitude, to.Latitude, to.Longitude, to.Timestamp-from.Timestamp)
	if !ok {
		return nil
	}
	return &kmh
}
