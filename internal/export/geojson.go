package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"celemeter/internal/models"
	"celemeter/internal/trajectory"
)

// GeoJSON converts a trajectory into a feature collection: one LineString
// per colored segment followed by a Point feature for the terminal marker.
func GeoJSON(tr *models.Trajectory) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, seg := range tr.Segments {
		line := orb.LineString{point(seg.From), point(seg.To)}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "segment"
		f.Properties["index"] = i
		f.Properties["color"] = seg.Color.Hex()
		f.Properties["label"] = trajectory.SegmentLabel(seg)
		if seg.SpeedKmh != nil {
			f.Properties["speed_kmh"] = *seg.SpeedKmh
			f.Properties["timestamp"] = seg.Timestamp
		}
		fc.Append(f)
	}

	marker := geojson.NewFeature(point(tr.Terminal.TrackPoint))
	marker.Properties["kind"] = "terminal"
	marker.Properties["label"] = tr.Terminal.Label
	if tr.Terminal.HasSpeed() {
		marker.Properties["speed_kmh"] = tr.Terminal.Speed()
		marker.Properties["timestamp"] = tr.Terminal.Timestamp
	}
	fc.Append(marker)

	b := tr.Bounds
	fc.BBox = geojson.NewBBox(orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	})

	return fc
}

func point(p models.TrackPoint) orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}
