// Package particle holds and drives heterogeneous collections of short-lived
// drawable entities, and spawns new ones at a configured rate.
//
// A host loop typically calls, once per frame:
//
//	emitter.Tick(dt)
//	system.Update(dt)
//	system.Draw(surface)
//
// Time steps are seconds. The surface type S is opaque to this package and is
// handed unchanged to every particle's Draw.
package particle

// Particle is the behaviour every entity stored in a System must provide.
//
// Update advances the particle's own state by dt seconds. Draw renders the
// current state onto the surface without changing simulation state. IsAlive
// reports whether the particle should stay in its system; once it returns false
// it must keep returning false.
type Particle[S any] interface {
	Update(dt float64)
	Draw(surface S)
	IsAlive() bool
}

// Lifetime tracks the age of a particle that expires after MaxAge seconds.
// Concrete particles embed it and call Advance from their Update.
type Lifetime struct {
	Age    float64
	MaxAge float64
}

// NewLifetime returns a Lifetime of the given length in seconds.
func NewLifetime(maxAge float64) Lifetime {
	return Lifetime{MaxAge: maxAge}
}

// Advance ages the particle by dt seconds.
func (l *Lifetime) Advance(dt float64) {
	l.Age += dt
}

// Percent returns the age as a fraction of MaxAge. A zero or negative MaxAge
// counts as fully aged.
func (l *Lifetime) Percent() float64 {
	if l.MaxAge <= 0 {
		return 1
	}
	return l.Age / l.MaxAge
}

// Remaining returns the seconds left before expiry, never below zero.
func (l *Lifetime) Remaining() float64 {
	if r := l.MaxAge - l.Age; r > 0 {
		return r
	}
	return 0
}

// Alive reports whether the age is still below MaxAge.
func (l *Lifetime) Alive() bool {
	return l.Percent() < 1
}
