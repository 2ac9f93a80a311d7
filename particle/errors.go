package particle

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrNegativeDelta is returned when a tick or update receives a negative,
	// NaN or infinite time step.
	ErrNegativeDelta = errors.New("negative or non-finite time delta")
	// ErrNegativeRate is returned when an emitter is configured with a negative,
	// NaN or infinite spawn rate.
	ErrNegativeRate = errors.New("negative or non-finite spawn rate")
	// ErrNegativeCap is returned when an emitter is configured with a negative population cap.
	ErrNegativeCap = errors.New("negative population cap")
	// ErrNegativeCount is returned when a burst is asked for a negative number of particles.
	ErrNegativeCount = errors.New("negative burst count")
	// ErrNilFactory is returned when an emitter is built without a particle factory.
	ErrNilFactory = errors.New("nil particle factory")
	// ErrNilSystem is returned when an emitter is built without a particle system.
	ErrNilSystem = errors.New("nil particle system")
)

func checkDelta(op string, dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return errors.Wrapf(ErrNegativeDelta, "%s: dt=%v", op, dt)
	}
	return nil
}

func checkRate(rate float64) error {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return errors.Wrapf(ErrNegativeRate, "rate=%v", rate)
	}
	return nil
}

func checkCap(c int) error {
	if c < 0 {
		return errors.Wrapf(ErrNegativeCap, "cap=%d", c)
	}
	return nil
}
