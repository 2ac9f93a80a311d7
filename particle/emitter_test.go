package particle

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmitterValidation(t *testing.T) {
	sys := NewSystem[*surface]()
	f := mortalFactory(1)

	tests := []struct {
		name    string
		sys     *System[*surface]
		rate    float64
		factory Factory[*surface]
		opts    []EmitterOption
		err     error
	}{
		{"Negative rate", sys, -1, f, nil, ErrNegativeRate},
		{"NaN rate", sys, math.NaN(), f, nil, ErrNegativeRate},
		{"Infinite rate", sys, math.Inf(1), f, nil, ErrNegativeRate},
		{"Negative cap", sys, 1, f, []EmitterOption{WithCap(-3)}, ErrNegativeCap},
		{"Nil factory", sys, 1, nil, nil, ErrNilFactory},
		{"Nil system", nil, 1, f, nil, ErrNilSystem},
		{"Zero rate", sys, 0, f, nil, nil},
		{"Zero cap", sys, 5, f, []EmitterOption{WithCap(0)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em, err := NewEmitter(tt.sys, tt.rate, tt.factory, tt.opts...)
			if tt.err == nil {
				require.NoError(t, err)
				require.NotNil(t, em)
				return
			}
			assert.Nil(t, em)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}

func TestEmitterTwoPerSecondScenario(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 2, mortalFactory(1))
	require.NoError(t, err)

	require.NoError(t, em.Tick(1))
	assert.Equal(t, 2, sys.Count())
	assert.Equal(t, uint64(2), em.Spawned())

	require.NoError(t, sys.Update(1))
	assert.Zero(t, sys.Count())
}

func TestEmitterCapScenario(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 10, mortalFactory(5), WithCap(3))
	require.NoError(t, err)

	require.NoError(t, em.Tick(1))

	assert.Equal(t, 3, sys.Count())
	assert.Equal(t, uint64(3), em.Spawned())
	assert.Equal(t, uint64(7), em.Dropped())
}

func TestEmitterCapNeverExceeded(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 1000, mortalFactory(0.3), WithCap(25))
	require.NoError(t, err)

	dts := []float64{0.016, 0.5, 0.033, 2, 0.001, 0.25, 1}
	for i := 0; i < 50; i++ {
		dt := dts[i%len(dts)]
		require.NoError(t, em.Tick(dt))
		assert.LessOrEqual(t, sys.Count(), 25)
		require.NoError(t, sys.Update(dt))
	}
}

func TestEmitterCapCountsForeignParticles(t *testing.T) {
	sys := NewSystem[*surface]()
	for i := 0; i < 4; i++ {
		sys.Add(&blinker{left: 10})
	}
	em, err := NewEmitter(sys, 10, mortalFactory(1), WithCap(5))
	require.NoError(t, err)

	require.NoError(t, em.Tick(1))
	assert.Equal(t, 5, sys.Count())
}

func TestEmitterNoBacklogAfterCap(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 10, mortalFactory(100), WithCap(0))
	require.NoError(t, err)

	require.NoError(t, em.Tick(5))
	assert.Zero(t, sys.Count())

	em.RemoveCap()
	require.NoError(t, em.Tick(0.1))
	assert.Equal(t, 1, sys.Count())
}

func TestEmitterSpawnConvergence(t *testing.T) {
	const rate, total = 7.3, 12.0

	splits := map[string][]float64{
		"single":  {total},
		"uniform": repeat(1.0/60, int(total*60)),
		"uneven":  uneven(total),
	}

	for name, dts := range splits {
		t.Run(name, func(t *testing.T) {
			sys := NewSystem[*surface]()
			em, err := NewEmitter(sys, rate, mortalFactory(1e9))
			require.NoError(t, err)

			var sum float64
			for _, dt := range dts {
				sum += dt
				require.NoError(t, em.Tick(dt))
				assert.GreaterOrEqual(t, em.Accumulator(), 0.0)
				assert.Less(t, em.Accumulator(), 1.0)
			}
			assert.InDelta(t, rate*sum, float64(em.Spawned()), 1.0)
			assert.Equal(t, int(em.Spawned()), sys.Count())
		})
	}
}

func TestEmitterFractionalCarry(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 1, mortalFactory(100))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, em.Tick(0.25))
	}
	assert.Zero(t, sys.Count())
	assert.InDelta(t, 0.75, em.Accumulator(), 1e-9)

	require.NoError(t, em.Tick(0.25))
	assert.Equal(t, 1, sys.Count())
}

func TestEmitterZeroRate(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 0, mortalFactory(1))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, em.Tick(10))
	}
	assert.Zero(t, sys.Count())
}

func TestEmitterReconfigure(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 1, mortalFactory(100))
	require.NoError(t, err)

	assert.True(t, errors.Is(em.SetRate(-2), ErrNegativeRate))
	assert.Equal(t, 1.0, em.Rate())
	assert.True(t, errors.Is(em.SetCap(-1), ErrNegativeCap))
	_, capped := em.Cap()
	assert.False(t, capped)

	require.NoError(t, em.SetRate(4))
	require.NoError(t, em.SetCap(2))
	c, capped := em.Cap()
	assert.True(t, capped)
	assert.Equal(t, 2, c)

	require.NoError(t, em.Tick(1))
	assert.Equal(t, 2, sys.Count())
}

func TestEmitterRejectsNegativeDelta(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 3, mortalFactory(1))
	require.NoError(t, err)
	require.NoError(t, em.Tick(0.5))

	err = em.Tick(-0.5)
	assert.True(t, errors.Is(err, ErrNegativeDelta))
	assert.InDelta(t, 0.5, em.Accumulator(), 1e-9)
	assert.Equal(t, 1, sys.Count())
}

func TestEmitterRejectsInfiniteDelta(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 3, mortalFactory(1))
	require.NoError(t, err)
	require.NoError(t, em.Tick(0.5))

	assert.True(t, errors.Is(em.Tick(math.Inf(1)), ErrNegativeDelta))
	assert.InDelta(t, 0.5, em.Accumulator(), 1e-9)

	require.NoError(t, em.Tick(0.5))
	assert.Equal(t, 3, sys.Count())
	assert.InDelta(t, 0, em.Accumulator(), 1e-9)
}

func TestEmitterHugeCredit(t *testing.T) {
	sys := NewSystem[*surface]()
	em, err := NewEmitter(sys, 1e19, mortalFactory(5), WithCap(3))
	require.NoError(t, err)

	require.NoError(t, em.Tick(1))
	assert.Equal(t, 3, sys.Count())
	assert.Equal(t, uint64(3), em.Spawned())
	assert.Greater(t, em.Dropped(), uint64(0))
	assert.GreaterOrEqual(t, em.Accumulator(), 0.0)
	assert.Less(t, em.Accumulator(), 1.0)

	// rate*dt overflows to +Inf
	require.NoError(t, em.SetRate(math.MaxFloat64))
	require.NoError(t, sys.Update(1))
	require.NoError(t, em.Tick(10))
	assert.Equal(t, 3, sys.Count())
	assert.False(t, math.IsNaN(em.Accumulator()))
	assert.Less(t, em.Accumulator(), 1.0)

	assert.True(t, errors.Is(em.SetRate(math.Inf(1)), ErrNegativeRate))
	assert.Equal(t, math.MaxFloat64, em.Rate())
}

func TestEmitterSpawnContext(t *testing.T) {
	sys := NewSystem[*surface]()
	var got []Spawn
	f := FactoryFunc[*surface](func(sp Spawn) Particle[*surface] {
		got = append(got, sp)
		return newMortal(sp.Index, 1)
	})
	em, err := NewEmitter(sys, 3, f, WithSeed(42))
	require.NoError(t, err)

	require.NoError(t, em.Tick(1))
	require.Len(t, got, 3)
	for i, sp := range got {
		assert.Equal(t, uint64(1), sp.Tick)
		assert.Equal(t, i, sp.Index)
		assert.Equal(t, 3, sp.Count)
		assert.NotNil(t, sp.Rand)
	}
}

func TestBurst(t *testing.T) {
	sys := NewSystem[*surface]()
	b, err := NewBurst(sys, 6, mortalFactory(1), WithCap(4))
	require.NoError(t, err)
	assert.True(t, b.IsAlive())

	require.NoError(t, b.Tick(0))
	assert.False(t, b.IsAlive())
	assert.Equal(t, 4, sys.Count())
	assert.Equal(t, uint64(2), b.Dropped())

	require.NoError(t, b.Tick(1))
	assert.Equal(t, 4, sys.Count())

	_, err = NewBurst(sys, -1, mortalFactory(1))
	assert.True(t, errors.Is(err, ErrNegativeCount))
}

func repeat(dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = dt
	}
	return out
}

func uneven(total float64) []float64 {
	var out []float64
	steps := []float64{0.001, 0.37, 0.016, 0.9, 0.05}
	var sum float64
	for i := 0; sum < total; i++ {
		dt := min(steps[i%len(steps)], total-sum)
		out = append(out, dt)
		sum += dt
	}
	return out
}
