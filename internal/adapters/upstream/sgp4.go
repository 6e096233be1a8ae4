package upstream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/pkg/geospatial"
	"github.com/samirrijal/isstrack/internal/pkg/telemetry"
)

// SGP4 computes the position by propagating a two-line element set.
// It needs no network access.
type SGP4 struct {
	sat satellite.Satellite
	now func() time.Time
}

// NewSGP4 parses the TLE lines. Both lines are required.
func NewSGP4(line1, line2 string) (*SGP4, error) {
	if len(line1) < 69 || len(line2) < 69 {
		return nil, errors.New("sgp4: both TLE lines must be 69 characters")
	}
	return &SGP4{
		sat: satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
		now: time.Now,
	}, nil
}

// WithClock overrides the time source.
func (s *SGP4) WithClock(now func() time.Time) *SGP4 {
	s.now = now
	return s
}

// Fetch implements ports.PositionSource.
func (s *SGP4) Fetch(ctx context.Context) (*domain.Position, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanUpstreamFetch)
	defer span.End()
	span.SetAttributes(attribute.String("source", "sgp4"))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := s.now().UTC().Truncate(time.Second)
	pos, err := s.At(t)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return pos, nil
}

// At returns the sub-satellite point at t.
func (s *SGP4) At(t time.Time) (*domain.Position, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	eci, _ := satellite.Propagate(s.sat, year, int(month), day, hour, min, sec)
	if math.IsNaN(eci.X) || (eci.X == 0 && eci.Y == 0 && eci.Z == 0) {
		return nil, fmt.Errorf("sgp4: propagation failed at %s", t.Format(time.RFC3339))
	}

	gmst := satellite.ThetaG_JD(satellite.JDay(year, int(month), day, hour, min, sec))
	_, _, ll := satellite.ECIToLLA(eci, gmst)
	deg := satellite.LatLongDeg(ll)

	pos := domain.NewPosition(t.Unix(), deg.Latitude, geospatial.NormalizeLon(deg.Longitude))
	return &pos, nil
}
