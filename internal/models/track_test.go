package models

import "testing"

func TestTrackPointClone(t *testing.T) {
	v := 12.5
	p := TrackPoint{Latitude: 1, Longitude: 2, SpeedKmh: &v, Timestamp: "t0"}

	c := p.Clone()
	if c.SpeedKmh == p.SpeedKmh {
		t.Fatal("Expected clone to own its speed value")
	}
	v = 30
	if c.Speed() != 12.5 {
		t.Errorf("Expected cloned speed 12.5, got %v", c.Speed())
	}

	if (TrackPoint{Latitude: 1}).Clone().SpeedKmh != nil {
		t.Error("Expected basic point to stay without speed")
	}
}

func TestTrackPointEqual(t *testing.T) {
	a, b := 10.0, 10.0
	base := TrackPoint{Latitude: 1, Longitude: 2, SpeedKmh: &a, Timestamp: "t0"}

	if !base.Equal(TrackPoint{Latitude: 1, Longitude: 2, SpeedKmh: &b, Timestamp: "t0"}) {
		t.Error("Expected points with equal values to be equal")
	}
	if base.Equal(TrackPoint{Latitude: 1, Longitude: 2, Timestamp: "t0"}) {
		t.Error("Expected missing speed to differ")
	}
	c := 11.0
	if base.Equal(TrackPoint{Latitude: 1, Longitude: 2, SpeedKmh: &c, Timestamp: "t0"}) {
		t.Error("Expected different speed to differ")
	}
}
