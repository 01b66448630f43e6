package stream

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Point that represents LED location
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CalibrationMessage base that indicates message type
type CalibrationMessage struct {
	Type string `json:"type"`
}

// AckMessage indicates that a frame has been displayed
type AckMessage struct {
	CalibrationMessage
	AckID uint8 `json:"ackID"`
}

// RawCalibrationData pairs pixel indexes with their measured locations.
type RawCalibrationData struct {
	Pixels    []int32 `json:"pixels"`
	Locations []Point `json:"locations"`
}

// Layout is the location of every pixel, indexed by pixel number.
type Layout []Point

// LoadLayout reads calibration data for a string of the given number of
// pixels. Pixels the calibration never resolved take the location of the
// nearest resolved pixel before them.
func LoadLayout(path string, pixels int) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout load failed (%s): %w", path, err)
	}

	var raw RawCalibrationData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("layout parse failed (%s): %w", path, err)
	}
	if len(raw.Pixels) != len(raw.Locations) {
		return nil, fmt.Errorf("layout %s: %d pixels but %d locations", path, len(raw.Pixels), len(raw.Locations))
	}

	layout := make(Layout, pixels)
	resolved := make([]bool, pixels)
	for i, p := range raw.Pixels {
		if p < 0 || int(p) >= pixels {
			return nil, fmt.Errorf("layout %s: pixel %d out of range", path, p)
		}
		layout[p] = raw.Locations[i]
		resolved[p] = true
	}

	for i := 1; i < pixels; i++ {
		if !resolved[i] && resolved[i-1] {
			layout[i] = layout[i-1]
			resolved[i] = true
		}
	}
	return layout, nil
}

// StrandLayout winds pixels up a cone of the given height, narrowing towards
// the top like a string of lights on a tree.
func StrandLayout(pixels int, height float64) Layout {
	layout := make(Layout, pixels)
	if pixels == 0 {
		return layout
	}

	const turns = 8.0
	base := height / 3
	for i := range layout {
		f := 0.0
		if pixels > 1 {
			f = float64(i) / float64(pixels-1)
		}
		layout[i] = Point{
			X: base * (1 - f) * math.Sin(2*math.Pi*turns*f),
			Y: height * f,
		}
	}
	return layout
}
