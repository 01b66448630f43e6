package stream

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/matt-g-everett/ledfx/fx"
	"github.com/matt-g-everett/ledfx/util"
)

// ErrDuplicateMarker is returned when a marker id is already in use.
var ErrDuplicateMarker = errors.New("stream: duplicate marker")

const falloffSize = 64

var modeNames = map[string]fx.ReferenceMode{
	"clampToGround":    fx.ClampToGround,
	"relativeToGround": fx.RelativeToGround,
	"absolute":         fx.Absolute,
	"clampToFloor":     fx.ClampToFloor,
	"relativeToFloor":  fx.RelativeToFloor,
}

// ParseMode parses a reference mode name. The empty name is relativeToGround.
func ParseMode(name string) (fx.ReferenceMode, error) {
	if strings.TrimSpace(name) == "" {
		return fx.RelativeToGround, nil
	}
	for k, m := range modeNames {
		if strings.EqualFold(k, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", name)
}

// MarkerPoint is the position of a marker above the ground or floor.
type MarkerPoint struct {
	altitude float64
	mode     fx.ReferenceMode
}

func (p *MarkerPoint) Altitude() float64                   { return p.altitude }
func (p *MarkerPoint) SetAltitude(v float64)               { p.altitude = v }
func (p *MarkerPoint) ReferenceMode() fx.ReferenceMode     { return p.mode }
func (p *MarkerPoint) SetReferenceMode(m fx.ReferenceMode) { p.mode = m }

// Property exposes altitude.
func (p *MarkerPoint) Property(name string) (fx.Property, bool) {
	if name != fx.AltitudeProperty {
		return fx.Property{}, false
	}
	return fx.Property{Get: p.Altitude, Set: p.SetAltitude}, true
}

// A Marker is a glowing spot drawn over the LEDs.
type Marker struct {
	id         string
	x          float64
	radius     float64
	brightness float64
	color      util.Color
	point      *MarkerPoint
}

func (m *Marker) ID() string              { return m.id }
func (m *Marker) X() float64              { return m.x }
func (m *Marker) SetX(v float64)          { m.x = v }
func (m *Marker) Radius() float64         { return m.radius }
func (m *Marker) SetRadius(v float64)     { m.radius = v }
func (m *Marker) Brightness() float64     { return m.brightness }
func (m *Marker) SetBrightness(v float64) { m.brightness = v }
func (m *Marker) Color() util.Color       { return m.color }
func (m *Marker) SetColor(c util.Color)   { m.color = c }
func (m *Marker) Point() *MarkerPoint     { return m.point }

// Geometry returns the marker's point.
func (m *Marker) Geometry() any {
	return m.point
}

// Property exposes x, radius, brightness and altitude.
func (m *Marker) Property(name string) (fx.Property, bool) {
	switch name {
	case "x":
		return fx.Property{Get: m.X, Set: m.SetX}, true
	case "radius":
		return fx.Property{Get: m.Radius, Set: m.SetRadius}, true
	case "brightness":
		return fx.Property{Get: m.Brightness, Set: m.SetBrightness}, true
	case fx.AltitudeProperty:
		return m.point.Property(name)
	}
	return fx.Property{}, false
}

type markerColor struct{ m *Marker }

func (c markerColor) Get() util.Color  { return c.m.color }
func (c markerColor) Set(v util.Color) { c.m.color = v }

// ColorProperty exposes color.
func (m *Marker) ColorProperty(name string) (fx.ColorProperty, bool) {
	if name != "color" {
		return nil, false
	}
	return markerColor{m}, true
}

// Scene holds the markers drawn over an LED layout.
type Scene struct {
	layout   Layout
	ground   float64
	view     float64
	backdrop Backdrop
	falloff  []float64
	markers  []*Marker
	byID     map[string]*Marker
}

// NewScene creates an instance of a Scene.
func NewScene(layout Layout, ground, viewDistance float64, background util.Color) *Scene {
	s := new(Scene)
	s.layout = layout
	s.ground = ground
	s.view = viewDistance
	s.backdrop = Solid(background.Colorful())
	s.falloff = util.GenerateFalloff(falloffSize)
	s.byID = make(map[string]*Marker)
	return s
}

// AddMarker creates a marker resting on the ground with full brightness.
func (s *Scene) AddMarker(id string) (*Marker, error) {
	if _, ok := s.byID[id]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateMarker, id)
	}

	m := &Marker{
		id:         id,
		radius:     0.1,
		brightness: 1,
		color:      util.RGB(0xff, 0xff, 0xff),
		point:      &MarkerPoint{mode: fx.RelativeToGround},
	}
	s.markers = append(s.markers, m)
	s.byID[id] = m
	return m, nil
}

// SetBackdrop replaces what is drawn behind the markers.
func (s *Scene) SetBackdrop(b Backdrop) {
	s.backdrop = b
}

// Pixels returns the number of pixels in the layout.
func (s *Scene) Pixels() int {
	return len(s.layout)
}

// Marker looks up a marker by id.
func (s *Scene) Marker(id string) (*Marker, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// Markers returns every marker in the order they were added.
func (s *Scene) Markers() []*Marker {
	return s.markers
}

// ViewDistance is how far the audience stands from the tree.
func (s *Scene) ViewDistance() float64 {
	return s.view
}

// Height returns where a point is drawn, taking its reference mode into
// account. The floor is at zero.
func (s *Scene) Height(p *MarkerPoint) float64 {
	switch p.mode {
	case fx.ClampToGround:
		return s.ground
	case fx.RelativeToGround:
		return s.ground + p.altitude
	case fx.ClampToFloor:
		return 0
	default:
		return p.altitude
	}
}

// Render draws every marker over the background.
func (s *Scene) Render() *Frame {
	f := NewFrame(len(s.layout))
	for i, loc := range s.layout {
		c := s.backdrop.Pixel(i, loc)
		for _, m := range s.markers {
			if m.radius <= 0 || m.brightness <= 0 {
				continue
			}

			d := math.Hypot(loc.X-m.x, loc.Y-s.Height(m.point))
			if d >= m.radius {
				continue
			}

			w := util.Sample(s.falloff, d/m.radius) * m.brightness * float64(m.color.A) / 255
			c = c.BlendRgb(m.color.Colorful(), math.Min(w, 1))
		}
		f.pixels[i] = c
	}
	return f
}
