package particle

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Spawn describes a single spawn event handed to a Factory.
type Spawn struct {
	// Tick is the number of the emitter tick that produced this spawn, starting at 1.
	Tick uint64
	// Index is the position of this spawn within the tick, in [0, Count).
	Index int
	// Count is the number of particles spawned by the tick.
	Count int
	// Rand is the emitter's random source.
	Rand *rand.Rand
}

// Factory produces new particles for an emitter.
type Factory[S any] interface {
	New(sp Spawn) Particle[S]
}

// FactoryFunc adapts a function that uses the spawn context to a Factory.
type FactoryFunc[S any] func(sp Spawn) Particle[S]

// New calls f(sp).
func (f FactoryFunc[S]) New(sp Spawn) Particle[S] { return f(sp) }

// Func adapts a function that takes no arguments to a Factory.
type Func[S any] func() Particle[S]

// New calls f().
func (f Func[S]) New(Spawn) Particle[S] { return f() }

// maxTickSpawn bounds the spawn credit a single tick can redeem. Credit above
// it is discarded along with the fractional remainder.
const maxTickSpawn = 1 << 20

// EmitterOption configures an Emitter or a Burst.
type EmitterOption func(*emitterConfig)

type emitterConfig struct {
	log    *zap.SugaredLogger
	cap    int
	capped bool
	seed   uint64
}

// WithCap limits the emitter so that it never grows its system beyond c particles.
// A negative c makes the constructor fail with ErrNegativeCap.
func WithCap(c int) EmitterOption {
	return func(cfg *emitterConfig) {
		cfg.cap = c
		cfg.capped = true
	}
}

// WithSeed seeds the random source handed to the factory.
func WithSeed(seed uint64) EmitterOption {
	return func(cfg *emitterConfig) {
		cfg.seed = seed
	}
}

// WithEmitterLogger sets the logger used for configuration diagnostics.
func WithEmitterLogger(log *zap.SugaredLogger) EmitterOption {
	return func(cfg *emitterConfig) {
		if log != nil {
			cfg.log = log
		}
	}
}

func buildEmitterConfig(opts []EmitterOption) (emitterConfig, error) {
	cfg := emitterConfig{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capped {
		if err := checkCap(cfg.cap); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// spawner is the state shared by Emitter and Burst: the bound system, the
// factory, the optional cap and the counters.
type spawner[S any] struct {
	system  *System[S]
	factory Factory[S]
	rng     *rand.Rand
	log     *zap.SugaredLogger

	cap    int
	capped bool

	ticks   uint64
	spawned uint64
	dropped uint64
}

func newSpawner[S any](sys *System[S], factory Factory[S], cfg emitterConfig) (spawner[S], error) {
	if sys == nil {
		return spawner[S]{}, ErrNilSystem
	}
	if factory == nil {
		return spawner[S]{}, ErrNilFactory
	}
	return spawner[S]{
		system:  sys,
		factory: factory,
		rng:     rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)),
		log:     cfg.log,
		cap:     cfg.cap,
		capped:  cfg.capped,
	}, nil
}

// spawn adds up to n particles, clamped by the cap. Clamped demand is dropped.
func (sp *spawner[S]) spawn(n int) int {
	if sp.capped {
		room := max(sp.cap-sp.system.Count(), 0)
		if n > room {
			sp.dropped += uint64(n - room)
			n = room
		}
	}

	for i := 0; i < n; i++ {
		sp.system.Add(sp.factory.New(Spawn{
			Tick:  sp.ticks,
			Index: i,
			Count: n,
			Rand:  sp.rng,
		}))
	}
	sp.spawned += uint64(n)
	return n
}

// Cap returns the population cap and whether one is set.
func (sp *spawner[S]) Cap() (int, bool) {
	return sp.cap, sp.capped
}

// SetCap sets the population cap, effective from the next tick.
func (sp *spawner[S]) SetCap(c int) error {
	if err := checkCap(c); err != nil {
		sp.log.Warnw("rejected cap", "cap", c)
		return err
	}
	sp.cap, sp.capped = c, true
	sp.log.Debugw("emitter cap set", "cap", c)
	return nil
}

// RemoveCap lifts the population cap, effective from the next tick.
func (sp *spawner[S]) RemoveCap() {
	sp.cap, sp.capped = 0, false
	sp.log.Debugw("emitter cap removed")
}

// Spawned returns the total number of particles this emitter has added.
func (sp *spawner[S]) Spawned() uint64 {
	return sp.spawned
}

// Dropped returns the total spawn demand discarded because of the cap.
func (sp *spawner[S]) Dropped() uint64 {
	return sp.dropped
}

// Emitter spawns particles into a System at a steady rate. Fractional spawn
// credit is carried between ticks so the long-run spawn count tracks rate*time
// regardless of how the time is split into ticks.
type Emitter[S any] struct {
	spawner[S]

	rate        float64
	accumulator float64
}

// NewEmitter binds an emitter to sys, spawning rate particles per second built
// by factory.
func NewEmitter[S any](sys *System[S], rate float64, factory Factory[S], opts ...EmitterOption) (*Emitter[S], error) {
	if err := checkRate(rate); err != nil {
		return nil, err
	}
	cfg, err := buildEmitterConfig(opts)
	if err != nil {
		return nil, err
	}
	sp, err := newSpawner(sys, factory, cfg)
	if err != nil {
		return nil, err
	}
	return &Emitter[S]{spawner: sp, rate: rate}, nil
}

// Tick accumulates rate*dt spawn credit and spawns the whole part of it.
func (e *Emitter[S]) Tick(dt float64) error {
	if err := checkDelta("tick", dt); err != nil {
		e.log.Warnw("rejected tick", "dt", dt)
		return err
	}
	e.ticks++

	e.accumulator += e.rate * dt
	if e.accumulator >= maxTickSpawn {
		e.accumulator = maxTickSpawn
	}
	whole := math.Floor(e.accumulator)
	e.accumulator -= whole

	e.spawn(int(whole))
	return nil
}

// Rate returns the spawn rate in particles per second.
func (e *Emitter[S]) Rate() float64 {
	return e.rate
}

// SetRate changes the spawn rate, effective from the next tick.
func (e *Emitter[S]) SetRate(r float64) error {
	if err := checkRate(r); err != nil {
		e.log.Warnw("rejected rate", "rate", r)
		return err
	}
	e.rate = r
	e.log.Debugw("emitter rate set", "rate", r)
	return nil
}

// Accumulator returns the carried fractional spawn credit, in [0, 1).
func (e *Emitter[S]) Accumulator() float64 {
	return e.accumulator
}

// IsAlive always reports true: an Emitter runs until its owner discards it.
func (e *Emitter[S]) IsAlive() bool {
	return true
}

// Burst spawns a fixed number of particles on its first tick and is then spent.
// Registered with System.AddEmitter it is dropped after that Step.
type Burst[S any] struct {
	spawner[S]

	count int
	fired bool
}

// NewBurst binds a one-shot emitter of count particles to sys.
func NewBurst[S any](sys *System[S], count int, factory Factory[S], opts ...EmitterOption) (*Burst[S], error) {
	if count < 0 {
		return nil, errors.Wrapf(ErrNegativeCount, "count=%d", count)
	}
	cfg, err := buildEmitterConfig(opts)
	if err != nil {
		return nil, err
	}
	sp, err := newSpawner(sys, factory, cfg)
	if err != nil {
		return nil, err
	}
	return &Burst[S]{spawner: sp, count: count}, nil
}

// Tick fires the burst the first time it is called and does nothing afterwards.
func (b *Burst[S]) Tick(dt float64) error {
	if err := checkDelta("tick", dt); err != nil {
		return err
	}
	if b.fired {
		return nil
	}
	b.ticks++
	b.fired = true
	b.spawn(b.count)
	return nil
}

// IsAlive reports whether the burst has yet to fire.
func (b *Burst[S]) IsAlive() bool {
	return !b.fired
}
