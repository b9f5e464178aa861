package models

import "fmt"

// RawRecord is one matched log payload split on commas, untrimmed
type RawRecord struct {
	Line   int      `json:"line"`
	Fields []string `json:"fields"`
}

// TrackPoint represents a single validated GPS fix
type TrackPoint struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedKmh  *float64 `json:"speed_kmh,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// HasSpeed reports whether the point came from an extended record
func (p TrackPoint) HasSpeed() bool {
	return p.SpeedKmh != nil
}

// Speed returns the recorded speed, or 0 for basic points
func (p TrackPoint) Speed() float64 {
	if p.SpeedKmh == nil {
		return 0
	}
	return *p.SpeedKmh
}

// Clone returns a copy that shares no memory with p
func (p TrackPoint) Clone() TrackPoint {
	p.SpeedKmh = copySpeed(p.SpeedKmh)
	return p
}

// Equal compares points by value, including speed
func (p TrackPoint) Equal(o TrackPoint) bool {
	if p.HasSpeed() != o.HasSpeed() || (p.HasSpeed() && *p.SpeedKmh != *o.SpeedKmh) {
		return false
	}
	return p.Latitude == o.Latitude && p.Longitude == o.Longitude && p.Timestamp == o.Timestamp
}

func copySpeed(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// RGB is an 8-bit color. It encodes as a #rrggbb string.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// Segment is the directed edge between two consecutive points.
// Color, speed and timestamp belong to the origin point.
type Segment struct {
	From      TrackPoint `json:"from"`
	To        TrackPoint `json:"to"`
	Color     RGB        `json:"color"`
	SpeedKmh  *float64   `json:"speed_kmh,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
}

// Bounds is the minimal lat/lon rectangle containing a trajectory
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Terminal is the last known position shown as a marker
type Terminal struct {
	TrackPoint
	Label string `json:"label"`
}

// Trajectory is the full result of one parse
type Trajectory struct {
	ID       string       `json:"id,omitempty"`
	Points   []TrackPoint `json:"points"`
	Segments []Segment    `json:"segments"`
	Bounds   Bounds       `json:"bounds"`
	Terminal Terminal     `json:"terminal"`
}
