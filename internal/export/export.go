package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format names an output encoding for a trajectory
type Format string

const (
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
	FormatGPX     Format = "gpx"
)

// ParseFormat converts a flag value to a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatGeoJSON, FormatGPX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatGeoJSON:
		return "application/geo+json"
	case FormatGPX:
		return "application/gpx+xml"
	default:
		return "application/json"
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
