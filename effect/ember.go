package effect

import (
	"math"

	"github.com/esimov/ascii-particles/particle"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

var emberGlyphs = []rune{'.', ',', '\'', '`', 'o', '*'}

// Ember rises from a fire, swaying sideways and cooling from Hot to Cold.
type Ember struct {
	particle.Lifetime

	Pos   mgl64.Vec2
	Lift  float64
	Sway  float64
	Phase float64

	Hot, Cold colorful.Color
}

// Update lifts the ember and sways it on a sine of its own age.
func (e *Ember) Update(dt float64) {
	e.Advance(dt)
	vx := e.Sway * math.Sin(e.Phase+e.Age*4)
	e.Pos = e.Pos.Add(mgl64.Vec2{vx, -e.Lift}.Mul(dt))
}

// Draw plots the ember in a colour blended towards Cold over its life.
func (e *Ember) Draw(surface Surface) {
	t := math.Min(e.Percent(), 1)
	plot(surface, e.Pos, ramp(emberGlyphs, 1-t), e.Hot.BlendHcl(e.Cold, t).Clamped())
}

// IsAlive reports whether the ember is still glowing.
func (e *Ember) IsAlive() bool {
	return e.Alive()
}

// EmberFactory spawns embers along a horizontal line of Width cells centred on Origin.
type EmberFactory struct {
	Origin   mgl64.Vec2
	Width    float64
	Lift     Range
	Sway     Range
	Lifetime Range
	Hot      colorful.Color
	Cold     colorful.Color
}

// New builds one ember at a random spot along the fire line.
func (f EmberFactory) New(sp particle.Spawn) Particle {
	offset := (sp.Rand.Float64() - 0.5) * f.Width
	return &Ember{
		Lifetime: particle.NewLifetime(f.Lifetime.Pick(sp.Rand)),
		Pos:      f.Origin.Add(mgl64.Vec2{offset, 0}),
		Lift:     f.Lift.Pick(sp.Rand),
		Sway:     f.Sway.Pick(sp.Rand),
		Phase:    sp.Rand.Float64() * 2 * math.Pi,
		Hot:      f.Hot,
		Cold:     f.Cold,
	}
}
