package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tkrajina/gpxgo/gpx"

	"celemeter/internal/parser"
)

const sample = ">23|01:2024-01-01T00:00:00,,,,,,,,,46.0,7.0,0<\n" +
	">23|01:2024-01-01T00:00:10,,,,,,,,,46.1,7.2,30<\n" +
	">23|01:2024-01-01T00:00:20,,,,,,,,,45.9,7.1,15<\n"

func TestGeoJSON(t *testing.T) {
	tr, _, err := parser.NewParser(parser.ModeMixed).Parse(sample)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	fc := GeoJSON(tr)
	if len(fc.Features) != 3 {
		t.Fatalf("Expected 2 segments + 1 marker, got %d features", len(fc.Features))
	}

	first := fc.Features[0]
	line, ok := first.Geometry.(orb.LineString)
	if !ok {
		t.Fatalf("Expected LineString, got %T", first.Geometry)
	}
	if line[0] != (orb.Point{7.0, 46.0}) || line[1] != (orb.Point{7.2, 46.1}) {
		t.Errorf("Unexpected first segment %v", line)
	}
	if first.Properties.MustString("color") != "#00ff00" {
		t.Errorf("Expected #00ff00, got %v", first.Properties["color"])
	}
	if fc.Features[1].Properties.MustString("color") != "#ff0000" {
		t.Errorf("Expected #ff0000, got %v", fc.Features[1].Properties["color"])
	}

	marker := fc.Features[2]
	if marker.Properties.MustString("kind") != "terminal" {
		t.Errorf("Expected terminal marker last, got %v", marker.Properties["kind"])
	}
	if marker.Geometry.(orb.Point) != (orb.Point{7.1, 45.9}) {
		t.Errorf("Unexpected marker position %v", marker.Geometry)
	}

	bound := fc.BBox.Bound()
	if bound.Min != (orb.Point{7.0, 45.9}) || bound.Max != (orb.Point{7.2, 46.1}) {
		t.Errorf("Unexpected bbox %v", fc.BBox)
	}

	var buf bytes.Buffer
	if err := Write(&buf, tr, FormatGeoJSON); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := geojson.UnmarshalFeatureCollection(buf.Bytes()); err != nil {
		t.Errorf("Expected valid geojson: %v", err)
	}
}

func TestGPX(t *testing.T) {
	tr, _, err := parser.NewParser(parser.ModeMixed).Parse(sample)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	data, err := GPX(tr, "trip")
	if err != nil {
		t.Fatalf("GPX failed: %v", err)
	}

	doc, err := gpx.ParseBytes(data)
	if err != nil {
		t.Fatalf("Expected readable gpx: %v", err)
	}
	if len(doc.Tracks) != 1 || len(doc.Tracks[0].Segments) != 1 {
		t.Fatalf("Expected one track with one segment")
	}
	points := doc.Tracks[0].Segments[0].Points
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}
	if points[1].Latitude != 46.1 || points[1].Longitude != 7.2 {
		t.Errorf("Unexpected point %v,%v", points[1].Latitude, points[1].Longitude)
	}
	if points[0].Timestamp.IsZero() {
		t.Error("Expected parsed timestamp on first point")
	}
}

func TestWriteJSON(t *testing.T) {
	tr, _, err := parser.NewParser(parser.ModeMixed).Parse(sample)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, tr, FormatJSON); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded struct {
		Segments []struct {
			Color string `json:"color"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded.Segments) != 2 || decoded.Segments[0].Color != "#00ff00" {
		t.Errorf("Unexpected segments %+v", decoded.Segments)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" GeoJSON "); err != nil || f != FormatGeoJSON {
		t.Errorf("Expected geojson, got %v (%v)", f, err)
	}
	if _, err := ParseFormat("kml"); err == nil || !strings.Contains(err.Error(), "kml") {
		t.Errorf("Expected unsupported format error, got %v", err)
	}
}
