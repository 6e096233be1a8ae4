package domain

import (
	"time"
)

// Position is a single ISS fix as reported by the tracker API.
type Position struct {
	Timestamp int64     `json:"timestamp"`
	Datetime  time.Time `json:"datetime"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// Point returns the position as a GeoPoint.
func (p Position) Point() GeoPoint {
	return GeoPoint{Lat: p.Latitude, Lon: p.Longitude}
}

// NewPosition builds a Position from a unix timestamp, normalising the
// datetime to UTC.
func NewPosition(ts int64, lat, lon float64) Position {
	return Position{
		Timestamp: ts,
		Datetime:  time.Unix(ts, 0).UTC(),
		Latitude:  lat,
		Longitude: lon,
	}
}

// TrackerStatus describes the tracker's buffer and poll settings.
type TrackerStatus struct {
	PositionsStored int        `json:"positions_stored"`
	MaxPositions    int        `json:"max_positions"`
	UpdateInterval  int        `json:"update_interval"` // seconds
	LastUpdate      *time.Time `json:"last_update"`
}

// ArchivedSegment is a closed trail segment handed off for archival.
type ArchivedSegment struct {
	ID       string     `json:"id"`
	ClosedAt time.Time  `json:"closed_at"`
	Points   []GeoPoint `json:"points"`
}

// ConnectionState is the viewer's backend connection indicator.
type ConnectionState string

const (
	Connected    ConnectionState = "connected"
	Disconnected ConnectionState = "disconnected"
)

// TileLayer selects the base map tiles shown by the viewer.
type TileLayer string

const (
	StreetLayer  TileLayer = "street"
	TerrainLayer TileLayer = "terrain"
)

// ViewState is the viewer's map camera and base layer.
type ViewState struct {
	Center  GeoPoint  `json:"center"`
	Zoom    int       `json:"zoom"`
	Layer   TileLayer `json:"layer"`
	TileURL string    `json:"tile_url"`
}

// StatusPanel is the textual status shown next to the map.
type StatusPanel struct {
	Connection    ConnectionState `json:"connection"`
	Latitude      *float64        `json:"latitude,omitempty"`
	Longitude     *float64        `json:"longitude,omitempty"`
	Datetime      *time.Time      `json:"datetime,omitempty"`
	PositionCount int             `json:"position_count"`
	SegmentCount  int             `json:"segment_count"`
	GroundSpeed   *float64        `json:"ground_speed_kmh,omitempty"`
}
