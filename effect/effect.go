// Package effect provides the particle kinds drawn by the demo: sparks thrown
// out of an explosion, embers rising from a fire and smoke carried by a fluid.
package effect

import (
	"math"
	"math/rand/v2"

	"github.com/esimov/ascii-particles/particle"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Surface is the grid of glyphs particles are drawn onto. terminal.Canvas
// implements it.
type Surface interface {
	Set(x, y int, ch rune, col colorful.Color)
	Size() (int, int)
}

// Particle is a particle drawable on a Surface.
type Particle = particle.Particle[Surface]

// Range is a closed interval a random value is drawn from.
type Range struct {
	Min, Max float64
}

// Pick returns a uniformly distributed value in the range.
func (r Range) Pick(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// plot draws a glyph at a position rounded to the nearest cell.
func plot(s Surface, pos mgl64.Vec2, ch rune, col colorful.Color) {
	s.Set(int(math.Round(pos.X())), int(math.Round(pos.Y())), ch, col)
}

// ramp picks a glyph from a ramp ordered weakest first by t in [0, 1].
func ramp(glyphs []rune, t float64) rune {
	t = math.Max(0, math.Min(1, t))
	i := int(t * float64(len(glyphs)))
	if i >= len(glyphs) {
		i = len(glyphs) - 1
	}
	return glyphs[i]
}

// polar returns a vector of the given length pointing at angle radians.
func polar(angle, length float64) mgl64.Vec2 {
	return mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(length)
}
