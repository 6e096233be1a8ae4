// Package trail keeps a bounded, antimeridian-aware history of ground-track
// segments and assigns each one a recency-based style.
package trail

import (
	"math"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// DefaultMaxSegments is the number of closed segments kept when no limit
// is configured.
const DefaultMaxSegments = 4

// crossingThreshold is the longitude jump, in degrees, treated as a wrap
// across the date line.
const crossingThreshold = 180.0

// CrossesAntimeridian reports whether travelling from a to b jumps across
// the date line.
func CrossesAntimeridian(a, b domain.GeoPoint) bool {
	return math.Abs(b.Lon-a.Lon) > crossingThreshold
}

// Split partitions points into segments at antimeridian crossings.
// Consecutive points with identical coordinates are collapsed.
func Split(points []domain.GeoPoint) []domain.Segment {
	var (
		segments []domain.Segment
		current  domain.Segment
	)
	for _, p := range points {
		if n := len(current); n > 0 {
			last := current[n-1]
			if last == p {
				continue
			}
			if CrossesAntimeridian(last, p) {
				segments = append(segments, current)
				current = nil
			}
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// AppendResult describes what Append did with a point.
type AppendResult struct {
	// Duplicate is set when the point equalled the current tail and was dropped.
	Duplicate bool
	// Closed holds the segment frozen by a date line crossing, if any.
	Closed domain.Segment
	// Evicted holds the oldest segment dropped to stay within the limit.
	Evicted domain.Segment
}

// Trail is the set of closed segments plus the open current one.
// A Trail is not safe for concurrent use.
type Trail struct {
	max        int
	historical []domain.Segment // oldest first
	current    domain.Segment
}

// New returns an empty trail retaining at most maxSegments closed segments.
func New(maxSegments int) *Trail {
	if maxSegments < 0 {
		maxSegments = 0
	}
	return &Trail{max: maxSegments}
}

// MaxSegments returns the closed-segment limit.
func (t *Trail) MaxSegments() int { return t.max }

// Load replaces the trail with the given history. Only the most recent
// MaxSegments+1 segments survive; the last one becomes current.
func (t *Trail) Load(points []domain.GeoPoint) {
	segments := Split(points)
	if keep := t.max + 1; len(segments) > keep {
		segments = segments[len(segments)-keep:]
	}

	t.historical = nil
	t.current = nil
	if len(segments) == 0 {
		return
	}
	t.historical = segments[:len(segments)-1]
	t.current = segments[len(segments)-1]
}

// Append adds a live point to the trail.
func (t *Trail) Append(p domain.GeoPoint) AppendResult {
	var res AppendResult

	n := len(t.current)
	if n == 0 {
		t.current = domain.Segment{p}
		return res
	}

	last := t.current[n-1]
	if last == p {
		res.Duplicate = true
		return res
	}

	if CrossesAntimeridian(last, p) {
		res.Closed = t.current
		t.historical = append(t.historical, t.current)
		if len(t.historical) > t.max {
			res.Evicted = t.historical[0]
			t.historical = t.historical[1:]
		}
		t.current = domain.Segment{p}
		return res
	}

	t.current = append(t.current, p)
	return res
}

// Historical returns the closed segments, oldest first.
func (t *Trail) Historical() []domain.Segment {
	out := make([]domain.Segment, len(t.historical))
	copy(out, t.historical)
	return out
}

// Current returns a copy of the open segment.
func (t *Trail) Current() domain.Segment {
	out := make(domain.Segment, len(t.current))
	copy(out, t.current)
	return out
}

// Last returns the most recent point, if any.
func (t *Trail) Last() (domain.GeoPoint, bool) {
	if len(t.current) == 0 {
		return domain.GeoPoint{}, false
	}
	return t.current[len(t.current)-1], true
}

// SegmentCount counts closed segments plus the current one when non-empty.
func (t *Trail) SegmentCount() int {
	n := len(t.historical)
	if len(t.current) > 0 {
		n++
	}
	return n
}

// PointCount counts every point held by the trail.
func (t *Trail) PointCount() int {
	n := len(t.current)
	for _, s := range t.historical {
		n += len(s)
	}
	return n
}

// Points returns every point held by the trail, oldest first.
func (t *Trail) Points() []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, t.PointCount())
	for _, s := range t.historical {
		out = append(out, s...)
	}
	return append(out, t.current...)
}
