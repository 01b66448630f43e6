package util

import (
	"github.com/fogleman/ease"
)

// GenerateFalloff builds a look-up table that fades from 1 at index 0 to 0 at
// the last index along an in-out quad curve.
func GenerateFalloff(length int) []float64 {
	if length < 2 {
		return []float64{1}
	}

	lut := make([]float64, length)
	increment := 1.0 / float64(length-1)
	for i := 0; i < length; i++ {
		lut[i] = 1 - ease.InOutQuad(float64(i)*increment)
	}
	return lut
}

// Sample reads lut at x in [0, 1], clamping out-of-range values.
func Sample(lut []float64, x float64) float64 {
	if len(lut) == 0 {
		return 0
	}
	if x <= 0 {
		return lut[0]
	}
	if x >= 1 {
		return lut[len(lut)-1]
	}
	return lut[int(x*float64(len(lut)-1)+0.5)]
}
