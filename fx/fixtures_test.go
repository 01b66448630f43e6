package fx

import (
	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledfx/util"
)

type testEntity struct {
	value float64
	color util.Color
	sets  int
}

func (e *testEntity) Property(name string) (Property, bool) {
	if name != "value" {
		return Property{}, false
	}
	return Property{
		Get: func() float64 { return e.value },
		Set: func(v float64) { e.value = v; e.sets++ },
	}, true
}

type entityColor struct{ e *testEntity }

func (c entityColor) Get() util.Color  { return c.e.color }
func (c entityColor) Set(v util.Color) { c.e.color = v }

func (e *testEntity) ColorProperty(name string) (ColorProperty, bool) {
	if name != "color" {
		return nil, false
	}
	return entityColor{e}, true
}

type testPoint struct {
	altitude float64
	mode     ReferenceMode
}

func (p *testPoint) Property(name string) (Property, bool) {
	if name != AltitudeProperty {
		return Property{}, false
	}
	return Property{Get: p.Altitude, Set: p.SetAltitude}, true
}

func (p *testPoint) Altitude() float64                { return p.altitude }
func (p *testPoint) SetAltitude(v float64)            { p.altitude = v }
func (p *testPoint) ReferenceMode() ReferenceMode     { return p.mode }
func (p *testPoint) SetReferenceMode(m ReferenceMode) { p.mode = m }

type testFeature struct {
	point *testPoint
}

func (f *testFeature) Geometry() any {
	if f.point == nil {
		return nil
	}
	return f.point
}

type fixedViewer float64

func (v fixedViewer) ViewDistance() float64 { return float64(v) }

func newTestEffects(opts ...Option) (*Effects, *ManualClock) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())
	return New(m, opts...), clock
}
