package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"celemeter/internal/models"
)

// Field positions within a payload
const (
	FieldTimestamp = 0
	FieldLatitude  = 9
	FieldLongitude = 10
	FieldSpeed     = 11
)

const (
	basicFields    = FieldLongitude + 1
	extendedFields = FieldSpeed + 1
)

var (
	// ErrMalformedRecord is wrapped by every per-record rejection
	ErrMalformedRecord = errors.New("malformed record")

	ErrTooFewFields = fmt.Errorf("%w: too few fields", ErrMalformedRecord)
	ErrBadLatitude  = fmt.Errorf("%w: invalid latitude", ErrMalformedRecord)
	ErrBadLongitude = fmt.Errorf("%w: invalid longitude", ErrMalformedRecord)
	ErrBadSpeed     = fmt.Errorf("%w: invalid speed", ErrMalformedRecord)
)

// RecordMode selects which record shapes are accepted
type RecordMode int

const (
	// ModeMixed accepts basic (coordinates only) and extended records
	ModeMixed RecordMode = iota
	// ModeExtended accepts only records carrying speed and timestamp
	ModeExtended
)

// String returns the configuration name of the mode
func (m RecordMode) String() string {
	switch m {
	case ModeExtended:
		return "extended"
	default:
		return "mixed"
	}
}

// ParseRecordMode converts a configuration name to a RecordMode
func ParseRecordMode(s string) (RecordMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mixed", "basic":
		return ModeMixed, nil
	case "extended":
		return ModeExtended, nil
	default:
		return ModeMixed, fmt.Errorf("unknown record mode: %s", s)
	}
}

// Validate converts a raw record into a TrackPoint. Any rejection discards
// the whole record.
func Validate(rec models.RawRecord, mode RecordMode) (models.TrackPoint, error) {
	var p models.TrackPoint
	fields := rec.Fields

	minFields := basicFields
	if mode == ModeExtended {
		minFields = extendedFields
	}
	if len(fields) < minFields {
		return p, ErrTooFewFields
	}

	lat, ok := parseNumber(fields[FieldLatitude])
	if !ok {
		return p, ErrBadLatitude
	}
	lon, ok := parseNumber(fields[FieldLongitude])
	if !ok {
		return p, ErrBadLongitude
	}
	p.Latitude = lat
	p.Longitude = lon

	if len(fields) >= extendedFields {
		speed, ok := parseNumber(fields[FieldSpeed])
		if !ok || speed < 0 {
			return models.TrackPoint{}, ErrBadSpeed
		}
		p.SpeedKmh = &speed
		p.Timestamp = strings.TrimSpace(fields[FieldTimestamp])
	}

	return p, nil
}

// parseNumber accepts finite decimal numbers only
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
