package main

import (
	"github.com/esimov/ascii-particles/config"
	"github.com/esimov/ascii-particles/effect"
	fluid "github.com/esimov/ascii-particles/fluid-solver"
	"github.com/esimov/ascii-particles/particle"
	"github.com/esimov/ascii-particles/terminal"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

const (
	// smokeGain converts field velocity into cells per second
	smokeGain = 20.0
	// smokeLift is the upward impulse injected at every smoke source per frame
	smokeLift = -40.0
	// smokeDensity is the density injected at every smoke source per frame
	smokeDensity = 50.0
	// gravity pulls sparks down, in cells per second squared
	gravity = 18.0
)

// placed pairs a configured emitter with the factory whose origin follows the screen size.
type placed struct {
	cfg    config.EmitterConfig
	spark  *effect.SparkFactory
	ember  *effect.EmberFactory
	smoke  *effect.SmokeFactory
	source mgl64.Vec2
}

// scene wires the configured emitters, the fluid field and the particle system
// into one frame function.
type scene struct {
	cfg    config.Config
	log    *zap.SugaredLogger
	system *particle.System[effect.Surface]
	field  *fluid.Solver
	placed []*placed

	w, h   int
	bursts uint64
}

func newScene(cfg config.Config, log *zap.SugaredLogger) *scene {
	sc := &scene{
		cfg: cfg,
		log: log,
		system: particle.NewSystem[effect.Surface](
			particle.WithLogger(log),
			particle.WithWorkers(cfg.Workers),
			particle.WithCapacity(1024),
		),
		field: fluid.NewSolver(cfg.Grid),
	}

	for i, ec := range cfg.Emitters {
		p, factory := sc.factory(ec)
		opts := []particle.EmitterOption{
			particle.WithSeed(cfg.Seed + uint64(i)),
			particle.WithEmitterLogger(log),
		}
		if ec.Cap != nil {
			opts = append(opts, particle.WithCap(*ec.Cap))
		}
		em, err := particle.NewEmitter(sc.system, ec.Rate, factory, opts...)
		if err != nil {
			log.Warnw("skipping emitter", "index", i, "kind", ec.Kind, "err", err)
			continue
		}
		id := sc.system.AddEmitter(em)
		sc.placed = append(sc.placed, p)
		log.Infow("emitter placed", "id", id, "kind", ec.Kind, "rate", ec.Rate)
	}
	return sc
}

func (sc *scene) factory(ec config.EmitterConfig) (*placed, particle.Factory[effect.Surface]) {
	col := sc.color(ec.Color, "kind", ec.Kind)
	p := &placed{cfg: ec}
	lifetime := effect.Range{Min: ec.Lifetime[0], Max: ec.Lifetime[1]}
	speed := effect.Range{Min: ec.Speed[0], Max: ec.Speed[1]}

	switch ec.Kind {
	case config.KindEmber:
		cold := sc.color(ec.ColorEnd, "kind", ec.Kind)
		p.ember = &effect.EmberFactory{
			Width:    ec.Width,
			Lift:     speed,
			Sway:     effect.Range{Min: 1, Max: 3},
			Lifetime: lifetime,
			Hot:      col,
			Cold:     cold,
		}
		return p, p.ember
	case config.KindSmoke:
		p.smoke = &effect.SmokeFactory{
			Field:    sc.field,
			Jitter:   1,
			Gain:     smokeGain,
			Drift:    mgl64.Vec2{0, -(speed.Min + speed.Max) / 2},
			Lifetime: lifetime,
			Color:    col,
		}
		return p, p.smoke
	default:
		p.spark = &effect.SparkFactory{
			Speed:    speed,
			Lifetime: lifetime,
			Gravity:  mgl64.Vec2{0, gravity},
			Color:    col,
		}
		return p, p.spark
	}
}

// color parses hex, falling back to white with a warning when it is malformed.
func (sc *scene) color(hex string, keysAndValues ...any) colorful.Color {
	col, err := config.ParseColor(hex)
	if err != nil {
		sc.log.Warnw("using white", append(keysAndValues, "err", err)...)
		col, _ = config.ParseColor("")
	}
	return col
}

// layout moves every emitter to its place on a w*h screen.
func (sc *scene) layout(w, h int) {
	sc.w, sc.h = w, h
	n := float64(sc.field.Size())
	scale := mgl64.Vec2{float64(w) / n, float64(h) / n}

	for _, p := range sc.placed {
		origin := mgl64.Vec2{p.cfg.X * float64(w), p.cfg.Y * float64(h)}
		switch {
		case p.spark != nil:
			p.spark.Origin = origin
		case p.ember != nil:
			p.ember.Origin = origin
		case p.smoke != nil:
			p.source = mgl64.Vec2{p.cfg.X * n, p.cfg.Y * n}
			p.smoke.Origin = p.source
			p.smoke.Scale = scale
		}
	}
	sc.log.Debugw("layout", "width", w, "height", h)
}

// frame advances the fluid, the emitters and the particles, then draws.
func (sc *scene) frame(dt float64, c *terminal.Canvas) error {
	if w, h := c.Size(); w != sc.w || h != sc.h {
		sc.layout(w, h)
	}

	for _, p := range sc.placed {
		if p.smoke == nil {
			continue
		}
		x, y := int(p.source.X()), int(p.source.Y())
		sc.field.AddDensity(x, y, smokeDensity)
		sc.field.AddVelocity(x, y, 0, smokeLift)
	}
	sc.field.Step(dt)

	if err := sc.system.Step(dt); err != nil {
		return err
	}
	sc.system.Draw(c)
	return nil
}

// burst throws a ring of sparks out of a clicked cell on the next frame.
func (sc *scene) burst(x, y int) {
	click := sc.cfg.Click
	if click.Count == 0 {
		return
	}
	col := sc.color(click.Color, "source", "click")
	f := effect.SparkFactory{
		Origin:   mgl64.Vec2{float64(x), float64(y)},
		Speed:    effect.Range{Min: click.Speed[0], Max: click.Speed[1]},
		Lifetime: effect.Range{Min: click.Lifetime[0], Max: click.Lifetime[1]},
		Gravity:  mgl64.Vec2{0, gravity},
		Color:    col,
	}
	sc.bursts++
	b, err := particle.NewBurst[effect.Surface](sc.system, click.Count, f,
		particle.WithSeed(sc.cfg.Seed^sc.bursts),
		particle.WithEmitterLogger(sc.log),
	)
	if err != nil {
		sc.log.Warnw("burst rejected", "err", err)
		return
	}
	sc.system.AddEmitter(b)
}
