package gradient

import (
	"math"

	"celemeter/internal/models"
)

// Gradient maps a speed range onto a linear two-color ramp
type Gradient struct {
	MinSpeed  float64 // km/h
	MaxSpeed  float64 // km/h
	LowColor  models.RGB
	HighColor models.RGB
}

// Default returns the green to red ramp over 0-30 km/h
func Default() Gradient {
	return Gradient{
		MinSpeed:  0,
		MaxSpeed:  30,
		LowColor:  models.RGB{R: 0, G: 255, B: 0},
		HighColor: models.RGB{R: 255, G: 0, B: 0},
	}
}

// Color returns the interpolated color for speed. Speeds outside
// [MinSpeed, MaxSpeed] saturate to the endpoint colors.
func (g Gradient) Color(speed float64) models.RGB {
	t := g.position(speed)
	return models.RGB{
		R: lerp(g.LowColor.R, g.HighColor.R, t),
		G: lerp(g.LowColor.G, g.HighColor.G, t),
		B: lerp(g.LowColor.B, g.HighColor.B, t),
	}
}

func (g Gradient) position(speed float64) float64 {
	span := g.MaxSpeed - g.MinSpeed
	if span <= 0 || math.IsNaN(speed) {
		return 0
	}
	t := (speed - g.MinSpeed) / span
	return math.Max(0, math.Min(1, t))
}

func lerp(low, high uint8, t float64) uint8 {
	return uint8(math.Round(float64(low) + t*(float64(high)-float64(low))))
}
