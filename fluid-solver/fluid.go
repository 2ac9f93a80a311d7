package fluid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type grid []float64

// BoundaryType selects how a field is reflected at the walls.
type BoundaryType int

const (
	BoundaryNone BoundaryType = iota
	BoundaryLeftRight
	BoundaryTopBottom
)

// Solver is a stable-fluids solver on an n*n grid surrounded by a one cell border.
// Coordinates passed to its methods are in cells, [0, n) on both axes.
type Solver struct {
	n          int
	size       int
	diffusion  float64
	viscosity  float64
	iterations int

	Vorticity bool
	Buoyancy  bool

	u, v, d       grid
	uOld, vOld    grid
	dOld, curlBuf grid
}

// NewSolver allocates a solver with n interior cells per axis.
func NewSolver(n int) *Solver {
	if n < 2 {
		n = 2
	}
	size := (n + 2) * (n + 2)
	return &Solver{
		n:          n,
		size:       size,
		diffusion:  0.0002,
		viscosity:  0,
		iterations: 10,
		Vorticity:  true,
		Buoyancy:   true,
		u:          make(grid, size),
		v:          make(grid, size),
		d:          make(grid, size),
		uOld:       make(grid, size),
		vOld:       make(grid, size),
		dOld:       make(grid, size),
		curlBuf:    make(grid, size),
	}
}

// Size returns the number of interior cells per axis.
func (s *Solver) Size() int {
	return s.n
}

func (s *Solver) idx(i, j int) int {
	return i + (s.n+2)*j
}

// cell maps a cell coordinate to the interior grid index, or false if outside.
func (s *Solver) cell(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= s.n || y >= s.n {
		return 0, false
	}
	return s.idx(x+1, y+1), true
}

// AddVelocity queues a velocity impulse at a cell for the next Step.
func (s *Solver) AddVelocity(x, y int, vx, vy float64) {
	if i, ok := s.cell(x, y); ok {
		s.uOld[i] += vx
		s.vOld[i] += vy
	}
}

// AddDensity queues a density source at a cell for the next Step.
func (s *Solver) AddDensity(x, y int, amount float64) {
	if i, ok := s.cell(x, y); ok {
		s.dOld[i] += amount
	}
}

// Step advances the velocity and density fields by dt seconds.
func (s *Solver) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.velocityStep(dt)
	s.densityStep(dt)
}

// Reset zeroes every field and pending source.
func (s *Solver) Reset() {
	for _, g := range []grid{s.u, s.v, s.d, s.uOld, s.vOld, s.dOld} {
		clear(g)
	}
}

// Density returns the density at a cell, zero outside the grid.
func (s *Solver) Density(x, y int) float64 {
	if i, ok := s.cell(x, y); ok {
		return s.d[i]
	}
	return 0
}

// Velocity samples the velocity field at a point in cell coordinates with
// bilinear interpolation. Points outside the grid are clamped to its edge.
func (s *Solver) Velocity(x, y float64) mgl64.Vec2 {
	return mgl64.Vec2{s.sample(s.u, x, y), s.sample(s.v, x, y)}
}

func (s *Solver) sample(g grid, x, y float64) float64 {
	// shift into padded grid space where interior cell centres sit on integers 1..n
	x = clamp(x+1, 0.5, float64(s.n)+0.5)
	y = clamp(y+1, 0.5, float64(s.n)+0.5)

	i0, j0 := int(x), int(y)
	i1, j1 := i0+1, j0+1
	s1, t1 := x-float64(i0), y-float64(j0)
	s0, t0 := 1-s1, 1-t1

	return s0*(t0*g[s.idx(i0, j0)]+t1*g[s.idx(i0, j1)]) +
		s1*(t0*g[s.idx(i1, j0)]+t1*g[s.idx(i1, j1)])
}

func (s *Solver) densityStep(dt float64) {
	s.addSource(s.d, s.dOld, dt)

	s.d, s.dOld = s.dOld, s.d
	s.diffuse(BoundaryNone, s.d, s.dOld, s.diffusion, dt)

	s.d, s.dOld = s.dOld, s.d
	s.advect(BoundaryNone, s.d, s.dOld, s.u, s.v, dt)

	clear(s.dOld)
}

func (s *Solver) velocityStep(dt float64) {
	s.addSource(s.u, s.uOld, dt)
	s.addSource(s.v, s.vOld, dt)

	if s.Vorticity {
		s.vorticityConfinement(s.uOld, s.vOld)
		s.addSource(s.u, s.uOld, dt)
		s.addSource(s.v, s.vOld, dt)
	}

	if s.Buoyancy {
		s.buoyancy(s.vOld)
		s.addSource(s.v, s.vOld, dt)
	}

	s.u, s.uOld = s.uOld, s.u
	s.diffuse(BoundaryLeftRight, s.u, s.uOld, s.viscosity, dt)

	s.v, s.vOld = s.vOld, s.v
	s.diffuse(BoundaryTopBottom, s.v, s.vOld, s.viscosity, dt)

	s.project(s.u, s.v, s.uOld, s.vOld)

	s.u, s.uOld = s.uOld, s.u
	s.v, s.vOld = s.vOld, s.v

	s.advect(BoundaryLeftRight, s.u, s.uOld, s.uOld, s.vOld, dt)
	s.advect(BoundaryTopBottom, s.v, s.vOld, s.uOld, s.vOld, dt)

	s.project(s.u, s.v, s.uOld, s.vOld)

	clear(s.uOld)
	clear(s.vOld)
}

func (s *Solver) addSource(x, src grid, dt float64) {
	for i := range x {
		x[i] += src[i] * dt
	}
}

func (s *Solver) curl(i, j int) float64 {
	duDy := (s.u[s.idx(i, j+1)] - s.u[s.idx(i, j-1)]) * 0.5
	dvDx := (s.v[s.idx(i+1, j)] - s.v[s.idx(i-1, j)]) * 0.5
	return duDy - dvDx
}

// vorticityConfinement writes the confinement force into fx, fy.
func (s *Solver) vorticityConfinement(fx, fy grid) {
	for i := 1; i <= s.n; i++ {
		for j := 1; j <= s.n; j++ {
			s.curlBuf[s.idx(i, j)] = math.Abs(s.curl(i, j))
		}
	}

	for i := 2; i < s.n; i++ {
		for j := 2; j < s.n; j++ {
			dx := (s.curlBuf[s.idx(i+1, j)] - s.curlBuf[s.idx(i-1, j)]) * 0.5
			dy := (s.curlBuf[s.idx(i, j+1)] - s.curlBuf[s.idx(i, j-1)]) * 0.5

			norm := math.Hypot(dx, dy)
			if norm == 0 {
				norm = 1
			}
			dx /= norm
			dy /= norm

			w := s.curl(i, j)
			fx[s.idx(i, j)] = -dy * w
			fy[s.idx(i, j)] = dx * w
		}
	}
}

// buoyancy writes an upward force proportional to how far each cell's density
// sits above the grid average.
func (s *Solver) buoyancy(f grid) {
	const a, b = 0.000625, 0.015

	var ambient float64
	for _, d := range s.d {
		ambient += d
	}
	ambient /= float64(s.n * s.n)

	for i := 1; i <= s.n; i++ {
		for j := 1; j <= s.n; j++ {
			d := s.d[s.idx(i, j)]
			f[s.idx(i, j)] = a*d - b*(d-ambient)
		}
	}
}

func (s *Solver) diffuse(bound BoundaryType, x, x0 grid, rate, dt float64) {
	a := dt * rate * float64(s.n*s.n)
	s.linearSolve(bound, x, x0, a, 1+4*a)
}

// linearSolve runs Gauss-Seidel relaxation for a fixed number of iterations.
func (s *Solver) linearSolve(bound BoundaryType, x, x0 grid, a, c float64) {
	inv := 1 / c
	for k := 0; k < s.iterations; k++ {
		for i := 1; i <= s.n; i++ {
			for j := 1; j <= s.n; j++ {
				x[s.idx(i, j)] = (x0[s.idx(i, j)] + a*(x[s.idx(i-1, j)]+x[s.idx(i+1, j)]+x[s.idx(i, j-1)]+x[s.idx(i, j+1)])) * inv
			}
		}
		s.setBoundary(bound, x)
	}
}

// project removes the divergent part of (u, v), leaving a mass conserving field.
func (s *Solver) project(u, v, p, div grid) {
	h := 1 / float64(s.n)
	for i := 1; i <= s.n; i++ {
		for j := 1; j <= s.n; j++ {
			div[s.idx(i, j)] = -0.5 * h * (u[s.idx(i+1, j)] - u[s.idx(i-1, j)] + v[s.idx(i, j+1)] - v[s.idx(i, j-1)])
			p[s.idx(i, j)] = 0
		}
	}
	s.setBoundary(BoundaryNone, div)
	s.setBoundary(BoundaryNone, p)

	s.linearSolve(BoundaryNone, p, div, 1, 4)

	for i := 1; i <= s.n; i++ {
		for j := 1; j <= s.n; j++ {
			u[s.idx(i, j)] -= 0.5 * (p[s.idx(i+1, j)] - p[s.idx(i-1, j)]) / h
			v[s.idx(i, j)] -= 0.5 * (p[s.idx(i, j+1)] - p[s.idx(i, j-1)]) / h
		}
	}
	s.setBoundary(BoundaryLeftRight, u)
	s.setBoundary(BoundaryTopBottom, v)
}

// advect moves d0 along (u, v) into d by tracing each cell centre backwards.
func (s *Solver) advect(bound BoundaryType, d, d0, u, v grid, dt float64) {
	dt0 := dt * float64(s.n)
	hi := float64(s.n) + 0.5

	for i := 1; i <= s.n; i++ {
		for j := 1; j <= s.n; j++ {
			x := clamp(float64(i)-dt0*u[s.idx(i, j)], 0.5, hi)
			y := clamp(float64(j)-dt0*v[s.idx(i, j)], 0.5, hi)

			i0, j0 := int(x), int(y)
			i1, j1 := i0+1, j0+1
			s1, t1 := x-float64(i0), y-float64(j0)
			s0, t0 := 1-s1, 1-t1

			d[s.idx(i, j)] = s0*(t0*d0[s.idx(i0, j0)]+t1*d0[s.idx(i0, j1)]) +
				s1*(t0*d0[s.idx(i1, j0)]+t1*d0[s.idx(i1, j1)])
		}
	}
	s.setBoundary(bound, d)
}

func (s *Solver) setBoundary(bound BoundaryType, x grid) {
	n := s.n
	for i := 1; i <= n; i++ {
		if bound == BoundaryLeftRight {
			x[s.idx(0, i)] = -x[s.idx(1, i)]
			x[s.idx(n+1, i)] = -x[s.idx(n, i)]
		} else {
			x[s.idx(0, i)] = x[s.idx(1, i)]
			x[s.idx(n+1, i)] = x[s.idx(n, i)]
		}
		if bound == BoundaryTopBottom {
			x[s.idx(i, 0)] = -x[s.idx(i, 1)]
			x[s.idx(i, n+1)] = -x[s.idx(i, n)]
		} else {
			x[s.idx(i, 0)] = x[s.idx(i, 1)]
			x[s.idx(i, n+1)] = x[s.idx(i, n)]
		}
	}

	x[s.idx(0, 0)] = 0.5 * (x[s.idx(1, 0)] + x[s.idx(0, 1)])
	x[s.idx(0, n+1)] = 0.5 * (x[s.idx(1, n+1)] + x[s.idx(0, n)])
	x[s.idx(n+1, 0)] = 0.5 * (x[s.idx(n, 0)] + x[s.idx(n+1, 1)])
	x[s.idx(n+1, n+1)] = 0.5 * (x[s.idx(n, n+1)] + x[s.idx(n+1, n)])
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
