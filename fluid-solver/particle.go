package fluid

import "github.com/go-gl/mathgl/mgl64"

// Parcel is a massless point carried along by a solver's velocity field.
// Positions are in solver cells.
type Parcel struct {
	Pos mgl64.Vec2
	Vel mgl64.Vec2

	// Drift is added to the sampled field velocity, in cells per second.
	Drift mgl64.Vec2
	// Gain scales the field velocity, in cells per second per unit of field.
	Gain float64
}

// NewParcel places a parcel at (x, y).
func NewParcel(x, y, gain float64) Parcel {
	return Parcel{Pos: mgl64.Vec2{x, y}, Gain: gain}
}

// Advect moves the parcel through the field of s for dt seconds. The field
// is only read.
func (p *Parcel) Advect(s *Solver, dt float64) {
	if s != nil {
		p.Vel = s.Velocity(p.Pos.X(), p.Pos.Y()).Mul(p.Gain).Add(p.Drift)
	} else {
		p.Vel = p.Drift
	}
	p.Pos = p.Pos.Add(p.Vel.Mul(dt))
}

// Cell returns the grid cell the parcel currently sits in.
func (p *Parcel) Cell() (int, int) {
	return int(p.Pos.X()), int(p.Pos.Y())
}
