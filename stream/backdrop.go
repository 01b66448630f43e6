package stream

import (
	"github.com/lucasb-eyer/go-colorful"
)

// A Backdrop colours every pixel before markers are drawn over it.
type Backdrop interface {
	Pixel(i int, loc Point) colorful.Color
}

// Solid is a backdrop of one colour.
type Solid colorful.Color

func (s Solid) Pixel(int, Point) colorful.Color {
	return colorful.Color(s)
}
