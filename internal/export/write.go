package export

import (
	"fmt"
	"io"

	"celemeter/internal/models"
)

// Write encodes tr to w in the given format
func Write(w io.Writer, tr *models.Trajectory, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, tr)
	case FormatGeoJSON:
		data, err := GeoJSON(tr).MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode geojson: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatGPX:
		data, err := GPX(tr, "")
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}
