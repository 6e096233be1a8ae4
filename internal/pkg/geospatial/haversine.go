package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// GroundSpeedKmh returns the average ground speed between two fixes taken
// seconds apart. ok is false when seconds is not positive.
func GroundSpeedKmh(lat1, lon1, lat2, lon2 float64, seconds int64) (kmh float64, ok bool) {
	if seconds <= 0 {
		return 0, false
	}
	meters := Haversine(lat1, lon1, lat2, lon2)
	return meters / 1000 / (float64(seconds) / 3600), true
}

// NormalizeLon wraps a longitude into [-180, 180).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
