package terminal

import (
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(4, 3)
	w, h := c.Size()
	require.Equal(t, 4, w)
	require.Equal(t, 3, h)

	red := colorful.Color{R: 1}
	c.Set(2, 1, '*', red)

	cell, ok := c.Cell(2, 1)
	require.True(t, ok)
	assert.Equal(t, '*', cell.Ch)
	assert.Equal(t, Attribute(red), cell.Fg)

	c.Clear()
	cell, _ = c.Cell(2, 1)
	assert.Equal(t, ' ', cell.Ch)
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	tests := []struct {
		name string
		x, y int
	}{
		{"Left", -1, 0},
		{"Top", 0, -1},
		{"Right", 2, 0},
		{"Bottom", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Set(tt.x, tt.y, '#', colorful.Color{G: 1})
			_, ok := c.Cell(tt.x, tt.y)
			assert.False(t, ok)
		})
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			cell, _ := c.Cell(x, y)
			assert.Equal(t, ' ', cell.Ch)
		}
	}
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(1, 1, 'x', colorful.Color{B: 1})
	c.Resize(5, 1)

	w, h := c.Size()
	assert.Equal(t, 5, w)
	assert.Equal(t, 1, h)
	cell, ok := c.Cell(4, 0)
	require.True(t, ok)
	assert.Equal(t, ' ', cell.Ch)

	c.Resize(-3, 2)
	w, _ = c.Size()
	assert.Zero(t, w)
}

func TestAttribute(t *testing.T) {
	tests := []struct {
		name string
		col  colorful.Color
		want termbox.Attribute
	}{
		{"Black", colorful.Color{}, 17},
		{"White", colorful.Color{R: 1, G: 1, B: 1}, 232},
		{"Red", colorful.Color{R: 1}, 16 + 36*5 + 1},
		{"Green", colorful.Color{G: 1}, 16 + 6*5 + 1},
		{"Blue", colorful.Color{B: 1}, 16 + 5 + 1},
		{"Mid grey", colorful.Color{R: 0.5, G: 0.5, B: 0.5}, 232 + 12 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Attribute(tt.col))
		})
	}
}

func TestHandleEvents(t *testing.T) {
	term := New(0, nil)
	term.canvas = NewCanvas(10, 10)

	var clicks [][2]int
	term.OnClick(func(x, y int) {
		clicks = append(clicks, [2]int{x, y})
	})

	assert.True(t, term.handle(termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}))
	assert.True(t, term.handle(termbox.Event{Type: termbox.EventKey, Ch: 'q'}))
	assert.False(t, term.handle(termbox.Event{Type: termbox.EventKey, Ch: 'a'}))

	assert.False(t, term.handle(termbox.Event{Type: termbox.EventMouse, Key: termbox.MouseLeft, MouseX: 3, MouseY: 4}))
	assert.Equal(t, [][2]int{{3, 4}}, clicks)

	assert.False(t, term.handle(termbox.Event{Type: termbox.EventResize, Width: 20, Height: 5}))
	w, h := term.Canvas().Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 5, h)
}

// fakeInput mimics termbox: interrupt blocks until poll receives it.
type fakeInput struct {
	feed chan termbox.Event
	intr chan struct{}
}

func newFakeInput(n int) *fakeInput {
	in := &fakeInput{feed: make(chan termbox.Event, n), intr: make(chan struct{})}
	for i := 0; i < n; i++ {
		in.feed <- termbox.Event{Type: termbox.EventKey, Ch: 'a'}
	}
	return in
}

func (in *fakeInput) poll() termbox.Event {
	select {
	case <-in.intr:
		return termbox.Event{Type: termbox.EventInterrupt}
	case ev := <-in.feed:
		return ev
	}
}

func (in *fakeInput) interrupt() {
	in.intr <- struct{}{}
}

func TestPumpForwardsEvents(t *testing.T) {
	in := newFakeInput(1)
	p := startPump(in.poll, in.interrupt)

	select {
	case ev := <-p.events:
		assert.Equal(t, 'a', ev.Ch)
	case <-time.After(2 * time.Second):
		t.Fatal("no event forwarded")
	}
	p.stop()

	_, ok := <-p.events
	assert.False(t, ok)
}

func TestPumpStopsWithFullBuffer(t *testing.T) {
	in := newFakeInput(64)
	p := startPump(in.poll, in.interrupt)
	require.Eventually(t, func() bool { return len(p.events) == cap(p.events) }, 2*time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		p.stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return")
	}
}
