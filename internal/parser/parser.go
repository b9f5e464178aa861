package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"celemeter/internal/models"
	"celemeter/internal/trajectory"
)

// ErrNoMatch means no line carried the telemetry marker. It is reported as
// an empty trajectory.
var ErrNoMatch = fmt.Errorf("no telemetry lines matched: %w", trajectory.ErrEmptyTrajectory)

// Stats aggregates the outcome of one parse
type Stats struct {
	Lines    int            `json:"lines"`
	Matched  int            `json:"matched"`
	Accepted int            `json:"accepted"`
	Rejected int            `json:"rejected"`
	Reasons  map[string]int `json:"reasons,omitempty"`
}

func (s *Stats) reject(err error) {
	s.Rejected++
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Reasons[reason(err)]++
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrTooFewFields):
		return "too_few_fields"
	case errors.Is(err, ErrBadLatitude):
		return "bad_latitude"
	case errors.Is(err, ErrBadLongitude):
		return "bad_longitude"
	case errors.Is(err, ErrBadSpeed):
		return "bad_speed"
	default:
		return "other"
	}
}

// Parser turns telemetry log text into a Trajectory
type Parser struct {
	mode RecordMode
	opts trajectory.Options
}

// NewParser creates a parser accepting the given record shapes
func NewParser(mode RecordMode) *Parser {
	return &Parser{mode: mode, opts: trajectory.DefaultOptions()}
}

// Mode returns the record mode the parser was built with
func (p *Parser) Mode() RecordMode {
	return p.mode
}

// ParseFile parses a telemetry log file
func (p *Parser) ParseFile(filename string) (*models.Trajectory, Stats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file)
}

// ParseReader reads r fully and parses it
func (p *Parser) ParseReader(r io.Reader) (*models.Trajectory, Stats, error) {
	records, lines, err := extract(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read log: %w", err)
	}
	return p.build(records, lines)
}

// Parse runs the whole pipeline over content. Malformed records are
// dropped and counted; only an empty result is reported as an error.
func (p *Parser) Parse(content string) (*models.Trajectory, Stats, error) {
	records, lines, err := extract(strings.NewReader(content))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read log: %w", err)
	}
	return p.build(records, lines)
}

// Points validates records and returns the surviving points in order
func (p *Parser) Points(records []models.RawRecord) ([]models.TrackPoint, Stats) {
	stats := Stats{Matched: len(records)}
	points := make([]models.TrackPoint, 0, len(records))

	for _, rec := range records {
		pt, err := Validate(rec, p.mode)
		if err != nil {
			stats.reject(err)
			continue
		}
		points = append(points, pt)
	}
	stats.Accepted = len(points)

	return points, stats
}

func (p *Parser) build(records []models.RawRecord, lines int) (*models.Trajectory, Stats, error) {
	if len(records) == 0 {
		return nil, Stats{Lines: lines}, ErrNoMatch
	}

	points, stats := p.Points(records)
	stats.Lines = lines
	tr, err := trajectory.Build(points, p.opts)
	if err != nil {
		return nil, stats, err
	}
	return tr, stats, nil
}

// ParseTimestamp tries the timestamp layouts seen in device logs
func ParseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02 15:04:05",
		"01/02/2006 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	// Try Unix timestamp
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(ts, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
