package effect

import (
	fluid "github.com/esimov/ascii-particles/fluid-solver"
	"github.com/esimov/ascii-particles/particle"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

var smokeGlyphs = []rune{'.', ':', '-', '=', '+', '*', '#', '%', '@'}

// Smoke is a puff carried by a fluid velocity field. Its parcel lives in
// solver cells; Scale maps solver cells to surface cells when drawing.
type Smoke struct {
	particle.Lifetime
	fluid.Parcel

	Field *fluid.Solver
	Scale mgl64.Vec2
	Color colorful.Color
}

// Update advects the puff through the field and ages it. The field is only read;
// the host steps it once per frame before the particles are updated.
func (s *Smoke) Update(dt float64) {
	s.Advect(s.Field, dt)
	s.Advance(dt)
}

// Draw plots the puff with a glyph that thins out as it ages.
func (s *Smoke) Draw(surface Surface) {
	pos := mgl64.Vec2{s.Pos.X() * s.Scale.X(), s.Pos.Y() * s.Scale.Y()}
	fade := 1 - s.Percent()
	plot(surface, pos, ramp(smokeGlyphs, fade), s.Color.BlendRgb(colorful.Color{}, 1-fade).Clamped())
}

// IsAlive reports whether the puff has dissipated.
func (s *Smoke) IsAlive() bool {
	return s.Alive()
}

// SmokeFactory releases puffs at Origin, a position in solver cells.
type SmokeFactory struct {
	Field    *fluid.Solver
	Origin   mgl64.Vec2
	Scale    mgl64.Vec2
	Jitter   float64
	Gain     float64
	Drift    mgl64.Vec2
	Lifetime Range
	Color    colorful.Color
}

// New builds one puff near the origin.
func (f SmokeFactory) New(sp particle.Spawn) Particle {
	jx := (sp.Rand.Float64() - 0.5) * f.Jitter
	jy := (sp.Rand.Float64() - 0.5) * f.Jitter
	p := fluid.NewParcel(f.Origin.X()+jx, f.Origin.Y()+jy, f.Gain)
	p.Drift = f.Drift
	return &Smoke{
		Lifetime: particle.NewLifetime(f.Lifetime.Pick(sp.Rand)),
		Parcel:   p,
		Field:    f.Field,
		Scale:    f.Scale,
		Color:    f.Color,
	}
}
