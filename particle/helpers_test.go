package particle

// surface records draw calls by particle id.
type surface struct {
	drawn []int
}

// mortal lives for a fixed number of seconds and counts its updates.
type mortal struct {
	Lifetime

	id      int
	updates int
	dead    bool
}

func newMortal(id int, life float64) *mortal {
	return &mortal{Lifetime: NewLifetime(life), id: id}
}

func (m *mortal) Update(dt float64) {
	m.updates++
	m.Advance(dt)
	if !m.Alive() {
		m.dead = true
	}
}

func (m *mortal) Draw(s *surface) {
	s.drawn = append(s.drawn, m.id)
}

func (m *mortal) IsAlive() bool {
	return !m.dead && m.Alive()
}

// blinker is a second concrete kind that dies after a set number of updates.
type blinker struct {
	left int
}

func (b *blinker) Update(float64) {
	if b.left > 0 {
		b.left--
	}
}

func (b *blinker) Draw(s *surface) {
	s.drawn = append(s.drawn, -1)
}

func (b *blinker) IsAlive() bool {
	return b.left > 0
}

func mortalFactory(life float64) Factory[*surface] {
	n := 0
	return Func[*surface](func() Particle[*surface] {
		n++
		return newMortal(n, life)
	})
}
