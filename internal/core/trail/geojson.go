package trail

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// Feature kinds written to the "kind" property.
const (
	KindHistory = "history"
	KindCurrent = "current"
	KindMarker  = "marker"
)

// FeatureCollection renders the trail as GeoJSON line strings, oldest
// first. Single-point segments are rendered as points.
func (t *Trail) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range t.Styled() {
		f := geojson.NewFeature(segmentGeometry(s.Points))
		kind := KindHistory
		if s.Current {
			kind = KindCurrent
		}
		f.Properties["kind"] = kind
		f.Properties["rank"] = s.Rank
		f.Properties["color"] = s.Style.Color
		f.Properties["opacity"] = s.Style.Opacity
		f.Properties["weight"] = s.Style.Weight
		fc.Append(f)
	}
	return fc
}

// MarkerFeature renders a position as the marker point.
func MarkerFeature(p domain.Position) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{p.Longitude, p.Latitude})
	f.Properties["kind"] = KindMarker
	f.Properties["datetime"] = p.Datetime
	return f
}

func segmentGeometry(s domain.Segment) orb.Geometry {
	if len(s) == 1 {
		return orb.Point{s[0].Lon, s[0].Lat}
	}
	ls := make(orb.LineString, len(s))
	for i, p := range s {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return ls
}
