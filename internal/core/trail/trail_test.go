package trail_test

import (
	"testing"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/trail"
)

func pts(lons ...float64) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(lons))
	for i, lon := range lons {
		out[i] = domain.GeoPoint{Lat: float64(i), Lon: lon}
	}
	return out
}

func TestCrossesAntimeridian(t *testing.T) {
	cases := []struct {
		a, b float64
		want bool
	}{
		{170, -170, true},
		{-179, 179, true},
		{10, 20, false},
		{-90, 90, false},  // exactly 180 is not a crossing
		{-90, 90.5, true}, // just over
	}
	for _, c := range cases {
		got := trail.CrossesAntimeridian(domain.GeoPoint{Lon: c.a}, domain.GeoPoint{Lon: c.b})
		if got != c.want {
			t.Errorf("CrossesAntimeridian(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestSplit_Crossing(t *testing.T) {
	segs := trail.Split(pts(170, -170))
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0][0].Lon != 170 || segs[1][0].Lon != -170 {
		t.Errorf("unexpected split: %+v", segs)
	}
}

func TestSplit_NoCrossing(t *testing.T) {
	segs := trail.Split(pts(0, 10, 20, 30, 40, 50))
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if len(segs[0]) != 6 {
		t.Errorf("expected 6 points, got %d", len(segs[0]))
	}
}

func TestSplit_Empty(t *testing.T) {
	if segs := trail.Split(nil); len(segs) != 0 {
		t.Fatalf("expected no segments, got %d", len(segs))
	}
}

func TestSplit_DropsConsecutiveDuplicates(t *testing.T) {
	p := domain.GeoPoint{Lat: 1, Lon: 2}
	q := domain.GeoPoint{Lat: 1, Lon: 3}
	segs := trail.Split([]domain.GeoPoint{p, p, q, q, p})
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if len(segs[0]) != 3 {
		t.Errorf("expected 3 points after collapsing duplicates, got %d", len(segs[0]))
	}
}

func TestSplit_NoSegmentHasWideJump(t *testing.T) {
	lons := []float64{-170, -175, 178, 170, 160, -179, -160, 179, 0, 90, -120}
	for _, s := range trail.Split(pts(lons...)) {
		for i := 1; i < len(s); i++ {
			if trail.CrossesAntimeridian(s[i-1], s[i]) {
				t.Fatalf("segment contains a crossing between %v and %v", s[i-1], s[i])
			}
		}
	}
}

func TestLoad_NoCrossingsYieldsAtMostMaxPlusOne(t *testing.T) {
	tr := trail.New(4)
	tr.Load(pts(0, 10, 20, 30, 40, 50))

	if got := tr.SegmentCount(); got > 5 {
		t.Fatalf("expected <= 5 segments, got %d", got)
	}
	if got := len(tr.Historical()); got != 0 {
		t.Errorf("expected 0 historical segments, got %d", got)
	}
	if got := len(tr.Current()); got != 6 {
		t.Errorf("expected current segment of 6 points, got %d", got)
	}
}

func TestLoad_KeepsMostRecentSegments(t *testing.T) {
	// Eight crossings produce nine segments.
	lons := []float64{170, -170, 170, -170, 170, -170, 170, -170, 170}
	tr := trail.New(4)
	tr.Load(pts(lons...))

	hist := tr.Historical()
	if len(hist) != 4 {
		t.Fatalf("expected 4 historical segments, got %d", len(hist))
	}
	cur := tr.Current()
	if len(cur) != 1 || cur[0].Lat != 8 {
		t.Errorf("expected current to hold the last point, got %+v", cur)
	}
	if hist[0][0].Lat != 4 {
		t.Errorf("expected oldest kept segment to start at index 4, got %+v", hist[0])
	}
}

func TestLoad_ReplacesPriorState(t *testing.T) {
	tr := trail.New(2)
	tr.Load(pts(170, -170, 170))
	tr.Load(pts(1, 2))
	if len(tr.Historical()) != 0 || tr.PointCount() != 2 {
		t.Fatalf("expected fresh state, got %d historical, %d points", len(tr.Historical()), tr.PointCount())
	}
}

func TestAppend_StartsEmptyTrail(t *testing.T) {
	tr := trail.New(4)
	res := tr.Append(domain.GeoPoint{Lat: 1, Lon: 1})
	if res.Duplicate || res.Closed != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if tr.PointCount() != 1 {
		t.Errorf("expected 1 point, got %d", tr.PointCount())
	}
}

func TestAppend_DropsDuplicate(t *testing.T) {
	tr := trail.New(4)
	p := domain.GeoPoint{Lat: 51.5, Lon: -0.1}
	tr.Append(p)
	res := tr.Append(p)
	if !res.Duplicate {
		t.Fatal("expected duplicate to be reported")
	}
	if tr.PointCount() != 1 {
		t.Errorf("expected duplicate not to be appended, got %d points", tr.PointCount())
	}
}

func TestAppend_CrossingClosesSegment(t *testing.T) {
	tr := trail.New(4)
	tr.Append(domain.GeoPoint{Lat: 0, Lon: 175})
	tr.Append(domain.GeoPoint{Lat: 1, Lon: 179})
	res := tr.Append(domain.GeoPoint{Lat: 2, Lon: -179})

	if len(res.Closed) != 2 {
		t.Fatalf("expected closed segment of 2 points, got %+v", res.Closed)
	}
	if res.Evicted != nil {
		t.Errorf("expected no eviction, got %+v", res.Evicted)
	}
	if len(tr.Historical()) != 1 {
		t.Errorf("expected 1 historical segment, got %d", len(tr.Historical()))
	}
	cur := tr.Current()
	if len(cur) != 1 || cur[0].Lon != -179 {
		t.Errorf("expected new current at -179, got %+v", cur)
	}
}

func TestAppend_EvictsOldest(t *testing.T) {
	tr := trail.New(2)
	lons := []float64{170, -170, 170, -170, 170}
	var evicted int
	for i, lon := range lons {
		res := tr.Append(domain.GeoPoint{Lat: float64(i), Lon: lon})
		if res.Evicted != nil {
			evicted++
			if res.Evicted[0].Lat != float64(evicted-1) {
				t.Errorf("evicted %+v, expected oldest first", res.Evicted)
			}
		}
		if n := len(tr.Historical()); n > tr.MaxSegments() {
			t.Fatalf("historical count %d exceeds limit %d", n, tr.MaxSegments())
		}
	}
	if evicted != 2 {
		t.Errorf("expected 2 evictions, got %d", evicted)
	}
}

func TestAppend_ZeroLimitKeepsOnlyCurrent(t *testing.T) {
	tr := trail.New(0)
	tr.Append(domain.GeoPoint{Lon: 170})
	res := tr.Append(domain.GeoPoint{Lon: -170})
	if res.Evicted == nil {
		t.Fatal("expected the closed segment to be evicted immediately")
	}
	if len(tr.Historical()) != 0 {
		t.Errorf("expected no historical segments, got %d", len(tr.Historical()))
	}
}

func TestPoints_OldestFirst(t *testing.T) {
	tr := trail.New(4)
	tr.Load(pts(170, -170, -160))
	got := tr.Points()
	if len(got) != 3 || got[0].Lon != 170 || got[2].Lon != -160 {
		t.Fatalf("unexpected points %+v", got)
	}
	if last, ok := tr.Last(); !ok || last.Lon != -160 {
		t.Errorf("unexpected last point %+v", last)
	}
}
