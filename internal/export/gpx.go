package export

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"celemeter/internal/models"
	"celemeter/internal/parser"
)

// GPX renders the trajectory points as a single-segment GPX 1.1 track.
// Speed is carried in the point comment; timestamps that do not parse are
// left out.
func GPX(tr *models.Trajectory, name string) ([]byte, error) {
	seg := gpx.GPXTrackSegment{}
	for _, p := range tr.Points {
		gp := gpx.GPXPoint{
			Point: gpx.Point{Latitude: p.Latitude, Longitude: p.Longitude},
		}
		if p.Timestamp != "" {
			if ts, err := parser.ParseTimestamp(p.Timestamp); err == nil {
				gp.Timestamp = ts
			}
		}
		if p.HasSpeed() {
			gp.Comment = fmt.Sprintf("%.1f km/h", p.Speed())
		}
		seg.Points = append(seg.Points, gp)
	}

	doc := &gpx.GPX{
		Creator: "celemeter",
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Segments: []gpx.GPXTrackSegment{seg},
		}},
	}

	data, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode gpx: %w", err)
	}
	return data, nil
}
