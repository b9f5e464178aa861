package trajectory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"celemeter/internal/gradient"
	"celemeter/internal/models"
)

// ErrEmptyTrajectory is returned when no valid point survived parsing.
// Its text is the notification shown to the user.
var ErrEmptyTrajectory = errors.New("no valid GPS data found")

// BasicColor draws segments whose origin point carries no speed
var BasicColor = models.RGB{R: 0, G: 0, B: 255}

// Options controls segment coloring
type Options struct {
	Gradient   gradient.Gradient
	BasicColor models.RGB
}

// DefaultOptions returns the fixed green to red ramp and blue basic color
func DefaultOptions() Options {
	return Options{
		Gradient:   gradient.Default(),
		BasicColor: BasicColor,
	}
}

// Build assembles points, in log order, into a Trajectory
func Build(points []models.TrackPoint, opts Options) (*models.Trajectory, error) {
	if len(points) == 0 {
		return nil, ErrEmptyTrajectory
	}

	tr := &models.Trajectory{
		Points:   make([]models.TrackPoint, len(points)),
		Segments: make([]models.Segment, 0, len(points)-1),
	}
	for i, p := range points {
		tr.Points[i] = p.Clone()
	}

	// every segment holds its own copies; nothing aliases tr.Points
	for i := 0; i < len(points)-1; i++ {
		from := points[i]
		seg := models.Segment{
			From:  from.Clone(),
			To:    points[i+1].Clone(),
			Color: opts.BasicColor,
		}
		if from.HasSpeed() {
			speed := from.Speed()
			seg.Color = opts.Gradient.Color(speed)
			seg.SpeedKmh = &speed
			seg.Timestamp = from.Timestamp
		}
		tr.Segments = append(tr.Segments, seg)
	}

	tr.Bounds = bounds(points)

	last := points[len(points)-1].Clone()
	tr.Terminal = models.Terminal{TrackPoint: last, Label: Label(last)}

	return tr, nil
}

// bounds computes the minimal lat/lon rectangle over all points
func bounds(points []models.TrackPoint) models.Bounds {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.Longitude, p.Latitude}
	}
	b := mp.Bound()
	return models.Bounds{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}

// Label renders the tooltip text for a point
func Label(p models.TrackPoint) string {
	var sb strings.Builder
	sb.WriteString("Last known position")
	fmt.Fprintf(&sb, "\nLat: %.6f, Lon: %.6f", p.Latitude, p.Longitude)
	if p.HasSpeed() {
		fmt.Fprintf(&sb, "\nSpeed: %.1f km/h", p.Speed())
	}
	if p.Timestamp != "" {
		fmt.Fprintf(&sb, "\nTime: %s", p.Timestamp)
	}
	return sb.String()
}

// SegmentLabel renders hover text for one segment
func SegmentLabel(s models.Segment) string {
	if s.SpeedKmh == nil {
		return fmt.Sprintf("Lat: %.6f, Lon: %.6f", s.From.Latitude, s.From.Longitude)
	}
	return fmt.Sprintf("Speed: %.1f km/h\nTime: %s\nLat: %.6f, Lon: %.6f",
		*s.SpeedKmh, s.Timestamp, s.From.Latitude, s.From.Longitude)
}
