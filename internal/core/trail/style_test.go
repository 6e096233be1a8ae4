package trail_test

import (
	"testing"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/trail"
)

func TestColorForRank_Tiers(t *testing.T) {
	seen := map[string]bool{trail.CurrentStyle.Color: true}
	for rank := 0; rank < 4; rank++ {
		s := trail.ColorForRank(rank)
		if seen[s.Color] {
			t.Errorf("rank %d reuses colour %s", rank, s.Color)
		}
		seen[s.Color] = true
		if s.Opacity >= trail.CurrentStyle.Opacity {
			t.Errorf("rank %d opacity %.2f not dimmer than current", rank, s.Opacity)
		}
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 brightness levels, got %d", len(seen))
	}
}

func TestColorForRank_MonotonicFade(t *testing.T) {
	prev := trail.CurrentStyle.Opacity
	for rank := 0; rank < 8; rank++ {
		s := trail.ColorForRank(rank)
		if s.Opacity > prev {
			t.Fatalf("rank %d opacity %.2f brighter than rank %d", rank, s.Opacity, rank-1)
		}
		prev = s.Opacity
	}
	if trail.ColorForRank(10) != trail.ColorForRank(3) {
		t.Error("expected ranks past the last tier to share the dimmest style")
	}
}

func TestStyled_RanksFollowRecency(t *testing.T) {
	tr := trail.New(4)
	tr.Load(pts(170, -170, 170, -170))

	styled := tr.Styled()
	if len(styled) != 4 {
		t.Fatalf("expected 4 styled segments, got %d", len(styled))
	}
	wantRanks := []int{2, 1, 0, -1}
	for i, s := range styled {
		if s.Rank != wantRanks[i] {
			t.Errorf("segment %d rank = %d, want %d", i, s.Rank, wantRanks[i])
		}
	}
	if !styled[3].Current || styled[3].Style != trail.CurrentStyle {
		t.Errorf("expected last segment to be current at full brightness, got %+v", styled[3])
	}

	// A new crossing shifts every rank by one.
	tr.Append(domain.GeoPoint{Lat: 9, Lon: 170})
	styled = tr.Styled()
	if styled[len(styled)-2].Rank != 0 || styled[len(styled)-2].Style != trail.ColorForRank(0) {
		t.Errorf("expected newly closed segment at rank 0, got %+v", styled[len(styled)-2])
	}
	if styled[0].Rank != 3 {
		t.Errorf("expected oldest segment at rank 3, got %d", styled[0].Rank)
	}
}

func TestFeatureCollection(t *testing.T) {
	tr := trail.New(4)
	tr.Load([]domain.GeoPoint{
		{Lat: 10, Lon: 170}, {Lat: 11, Lon: 175},
		{Lat: 12, Lon: -175},
	})

	fc := tr.FeatureCollection()
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	first := fc.Features[0]
	if first.Geometry.GeoJSONType() != "LineString" {
		t.Errorf("expected LineString, got %s", first.Geometry.GeoJSONType())
	}
	if first.Properties["kind"] != trail.KindHistory {
		t.Errorf("expected history kind, got %v", first.Properties["kind"])
	}
	last := fc.Features[1]
	if last.Geometry.GeoJSONType() != "Point" {
		t.Errorf("expected single-point current segment as Point, got %s", last.Geometry.GeoJSONType())
	}
	if last.Properties["color"] != trail.CurrentStyle.Color {
		t.Errorf("expected current colour, got %v", last.Properties["color"])
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty GeoJSON")
	}
}

func TestMarkerFeature(t *testing.T) {
	f := trail.MarkerFeature(domain.NewPosition(1700000000, 12.5, -45.25))
	if f.Properties["kind"] != trail.KindMarker {
		t.Errorf("expected marker kind, got %v", f.Properties["kind"])
	}
	if f.Geometry.GeoJSONType() != "Point" {
		t.Fatalf("expected Point, got %s", f.Geometry.GeoJSONType())
	}
}
