package effect

import (
	"math"

	"github.com/esimov/ascii-particles/particle"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

var sparkGlyphs = []rune{'.', '+', '*'}

// Spark is a ballistic point that falls under gravity and dims as it ages.
type Spark struct {
	particle.Lifetime

	Pos     mgl64.Vec2
	Vel     mgl64.Vec2
	Gravity mgl64.Vec2
	Color   colorful.Color
}

// Update moves the spark and ages it.
func (s *Spark) Update(dt float64) {
	s.Vel = s.Vel.Add(s.Gravity.Mul(dt))
	s.Pos = s.Pos.Add(s.Vel.Mul(dt))
	s.Advance(dt)
}

// Draw plots the spark with a glyph that shrinks with age.
func (s *Spark) Draw(surface Surface) {
	plot(surface, s.Pos, ramp(sparkGlyphs, 1-s.Percent()), s.Color)
}

// IsAlive reports whether the spark has burned out.
func (s *Spark) IsAlive() bool {
	return s.Alive()
}

// SparkFactory throws sparks out of Origin in every direction.
type SparkFactory struct {
	Origin   mgl64.Vec2
	Speed    Range
	Lifetime Range
	Gravity  mgl64.Vec2
	Color    colorful.Color
}

// New builds one spark with a random heading, speed and lifetime.
func (f SparkFactory) New(sp particle.Spawn) Particle {
	angle := sp.Rand.Float64() * 2 * math.Pi
	return &Spark{
		Lifetime: particle.NewLifetime(f.Lifetime.Pick(sp.Rand)),
		Pos:      f.Origin,
		Vel:      polar(angle, f.Speed.Pick(sp.Rand)),
		Gravity:  f.Gravity,
		Color:    f.Color,
	}
}
