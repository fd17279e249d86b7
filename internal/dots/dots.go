// Package dots simulates the grid of particles pushed around by a touch.
package dots

import "math"

const (
	DefaultSpacing  = 16.0
	DefaultLaziness = 20.0
	DefaultDotSize  = 4.0

	// pushDistance is how far a dot at the touch point is shoved, in px.
	pushDistance = 20.0
	damping      = 0.9
	returnRate   = 0.03
)

type Dot struct {
	X, Y             float64
	OriginX, OriginY float64
	VX, VY           float64
}

// Hue is the dot's colour on the hue wheel in [0,1), banded diagonally.
func (d Dot) Hue() float64 {
	return math.Mod(math.Abs(d.X+d.Y), 100) / 100
}

// Field is a grid of dots on springs. It is not safe for concurrent use.
type Field struct {
	Dots    []Dot
	spacing float64
}

// NewField lays dots out every spacing px across a width x height area.
func NewField(width, height, spacing float64) *Field {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	f := &Field{spacing: spacing}
	f.Resize(width, height)
	return f
}

// Resize rebuilds the grid at rest for a new area.
func (f *Field) Resize(width, height float64) {
	rows, cols := 0, 0
	if height > 0 && width > 0 {
		rows = int(height / f.spacing)
		cols = int(width / f.spacing)
	}
	f.Dots = f.Dots[:0]
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := float64(c)*f.spacing, float64(r)*f.spacing
			f.Dots = append(f.Dots, Dot{X: x, Y: y, OriginX: x, OriginY: y})
		}
	}
}

// Laziness maps the 0..100 user setting to a spring gain, shrinking
// toward 0.1 as effect intensity rises.
func Laziness(setting, intensity float64) float64 {
	setting = math.Max(0, math.Min(100, setting))
	intensity = math.Max(0, math.Min(1, intensity))
	mapped := 0.1 + setting/100*4.9
	return 0.1 + (mapped-0.1)*(1-intensity)
}

// Step advances the simulation one tick. Dots within impact px of the
// touch are pushed away from it; every dot is damped and drifts back to
// its origin.
func (f *Field) Step(touchX, touchY float64, touching bool, impact, laziness, intensity float64) {
	gain := Laziness(laziness, intensity)
	impact2 := impact * impact
	for i := range f.Dots {
		d := &f.Dots[i]
		if touching && impact > 0 {
			dx, dy := touchX-d.X, touchY-d.Y
			if dist2 := dx*dx + dy*dy; dist2 < impact2 {
				force := (impact - math.Sqrt(dist2)) / impact
				angle := math.Atan2(dy, dx)
				d.VX += -math.Cos(angle) * force * pushDistance * gain
				d.VY += -math.Sin(angle) * force * pushDistance * gain
			}
		}
		d.VX *= damping
		d.VY *= damping
		d.X += d.VX
		d.Y += d.VY

		dx, dy := d.OriginX-d.X, d.OriginY-d.Y
		if dx*dx+dy*dy > 1 {
			d.X += dx * returnRate
			d.Y += dy * returnRate
		}
	}
}

// Displacement is the largest distance of any dot from its origin.
func (f *Field) Displacement() float64 {
	var m float64
	for _, d := range f.Dots {
		m = math.Max(m, math.Hypot(d.X-d.OriginX, d.Y-d.OriginY))
	}
	return m
}
