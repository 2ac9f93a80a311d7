package particle

import (
	"iter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// minParallelBatch is the smallest number of particles handed to one worker.
// Below workers*minParallelBatch the update pass stays on the calling goroutine.
const minParallelBatch = 256

// Source is anything that feeds particles into a System on every Step.
// Emitter and Burst both satisfy it.
type Source interface {
	Tick(dt float64) error
	IsAlive() bool
}

// Stats holds cumulative counters of a System.
type Stats struct {
	Added   uint64
	Evicted uint64
	Cleared uint64
}

type sourceEntry struct {
	id  uuid.UUID
	src Source
}

// System owns a bag of particles of any concrete type. Order is not preserved:
// dead particles are removed by moving the last element into their slot.
//
// A System is not safe for concurrent use.
type System[S any] struct {
	particles []Particle[S]
	sources   []sourceEntry

	// alive flags for the parallel pass, reused between frames
	flags []bool

	workers int
	log     *zap.SugaredLogger
	stats   Stats
}

// SystemOption configures a System.
type SystemOption func(*systemConfig)

type systemConfig struct {
	log      *zap.SugaredLogger
	workers  int
	capacity int
}

// WithLogger sets the logger used for diagnostics. The default discards everything.
func WithLogger(log *zap.SugaredLogger) SystemOption {
	return func(c *systemConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithWorkers splits the particle update pass across n goroutines when the
// population is large enough. n <= 1 keeps the pass sequential.
func WithWorkers(n int) SystemOption {
	return func(c *systemConfig) {
		c.workers = n
	}
}

// WithCapacity preallocates room for n particles.
func WithCapacity(n int) SystemOption {
	return func(c *systemConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// NewSystem creates an empty particle system.
func NewSystem[S any](opts ...SystemOption) *System[S] {
	cfg := systemConfig{
		log:     zap.NewNop().Sugar(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	return &System[S]{
		particles: make([]Particle[S], 0, cfg.capacity),
		workers:   cfg.workers,
		log:       cfg.log,
	}
}

// Add hands ownership of p to the system. A particle that is already dead is
// accepted and dropped on the next Update without ever being drawn.
func (s *System[S]) Add(p Particle[S]) {
	if p == nil {
		return
	}
	s.particles = append(s.particles, p)
	s.stats.Added++
}

// Count returns the number of particles currently held.
func (s *System[S]) Count() int {
	return len(s.particles)
}

// Clear drops every particle unconditionally.
func (s *System[S]) Clear() {
	n := len(s.particles)
	clear(s.particles)
	s.particles = s.particles[:0]
	s.stats.Cleared += uint64(n)
	s.log.Debugw("particle system cleared", "dropped", n)
}

// Stats returns the cumulative counters.
func (s *System[S]) Stats() Stats {
	return s.stats
}

// All yields every particle currently held. The sequence must not be used to
// add or remove particles.
func (s *System[S]) All() iter.Seq[Particle[S]] {
	return func(yield func(Particle[S]) bool) {
		for _, p := range s.particles {
			if !yield(p) {
				return
			}
		}
	}
}

// Update advances every particle by dt seconds and evicts those that report
// they are no longer alive. Each particle present at the start of the call is
// updated exactly once.
func (s *System[S]) Update(dt float64) error {
	if err := checkDelta("update", dt); err != nil {
		s.log.Warnw("rejected update", "dt", dt)
		return err
	}

	if s.workers > 1 && len(s.particles) >= s.workers*minParallelBatch {
		s.updateParallel(dt)
		return nil
	}

	i := 0
	for i < len(s.particles) {
		p := s.particles[i]
		p.Update(dt)
		if p.IsAlive() {
			i++
			continue
		}
		// The element swapped in has not been updated yet, so i stays put.
		s.removeAt(i)
	}
	return nil
}

// updateParallel runs the update pass on disjoint chunks, then evicts on the
// calling goroutine once every worker has finished.
func (s *System[S]) updateParallel(dt float64) {
	n := len(s.particles)
	if cap(s.flags) < n {
		s.flags = make([]bool, n)
	}
	flags := s.flags[:n]

	chunk := (n + s.workers - 1) / s.workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		part := s.particles[lo:hi]
		alive := flags[lo:hi]
		g.Go(func() error {
			for j, p := range part {
				p.Update(dt)
				alive[j] = p.IsAlive()
			}
			return nil
		})
	}
	_ = g.Wait()

	i := 0
	for i < len(s.particles) {
		if flags[i] {
			i++
			continue
		}
		last := len(s.particles) - 1
		flags[i] = flags[last]
		s.removeAt(i)
	}
}

// removeAt swaps the last particle into slot i and shrinks the bag.
func (s *System[S]) removeAt(i int) {
	last := len(s.particles) - 1
	s.particles[i] = s.particles[last]
	s.particles[last] = nil
	s.particles = s.particles[:last]
	s.stats.Evicted++
}

// Draw hands the surface to every particle currently held.
func (s *System[S]) Draw(surface S) {
	for _, p := range s.particles {
		p.Draw(surface)
	}
}

// AddEmitter registers a source to be ticked by Step and returns its handle.
func (s *System[S]) AddEmitter(src Source) uuid.UUID {
	id := uuid.New()
	s.sources = append(s.sources, sourceEntry{id: id, src: src})
	s.log.Debugw("emitter added", "id", id)
	return id
}

// RemoveEmitter unregisters the source with the given handle.
func (s *System[S]) RemoveEmitter(id uuid.UUID) bool {
	for i, e := range s.sources {
		if e.id == id {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
			s.log.Debugw("emitter removed", "id", id)
			return true
		}
	}
	return false
}

// Emitters returns the number of registered sources.
func (s *System[S]) Emitters() int {
	return len(s.sources)
}

// Step runs one full frame of simulation: every registered source ticks, then
// the particles are updated, then sources that are no longer alive are dropped.
func (s *System[S]) Step(dt float64) error {
	if err := checkDelta("step", dt); err != nil {
		s.log.Warnw("rejected step", "dt", dt)
		return err
	}

	for _, e := range s.sources {
		if err := e.src.Tick(dt); err != nil {
			return err
		}
	}

	if err := s.Update(dt); err != nil {
		return err
	}

	kept := s.sources[:0]
	for _, e := range s.sources {
		if e.src.IsAlive() {
			kept = append(kept, e)
			continue
		}
		s.log.Debugw("emitter expired", "id", e.id)
	}
	clear(s.sources[len(kept):])
	s.sources = kept
	return nil
}
