package terminal

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nsf/termbox-go"
)

// Canvas is an off-screen buffer of terminal cells that particles draw onto.
// Flush copies it to the termbox back buffer.
type Canvas struct {
	backbuf []termbox.Cell
	w, h    int
	bg      termbox.Attribute
}

// NewCanvas allocates a w*h canvas.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{bg: termbox.ColorDefault}
	c.Resize(w, h)
	return c
}

// Resize reallocates the buffer, dropping its contents.
func (c *Canvas) Resize(w, h int) {
	c.w, c.h = max(w, 0), max(h, 0)
	c.backbuf = make([]termbox.Cell, c.w*c.h)
	c.Clear()
}

// Size returns the canvas width and height in cells.
func (c *Canvas) Size() (int, int) {
	return c.w, c.h
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.backbuf {
		c.backbuf[i] = termbox.Cell{Ch: ' ', Fg: termbox.ColorDefault, Bg: c.bg}
	}
}

// Set writes a glyph in the given colour. Writes outside the canvas are ignored.
func (c *Canvas) Set(x, y int, ch rune, col colorful.Color) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.backbuf[y*c.w+x] = termbox.Cell{Ch: ch, Fg: Attribute(col), Bg: c.bg}
}

// Cell returns the cell at (x, y) and whether it lies on the canvas.
func (c *Canvas) Cell(x, y int) (termbox.Cell, bool) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return termbox.Cell{}, false
	}
	return c.backbuf[y*c.w+x], true
}

// Flush copies the canvas into the termbox back buffer and presents it.
func (c *Canvas) Flush() error {
	w, h := termbox.Size()
	buf := termbox.CellBuffer()
	for y := 0; y < min(h, c.h); y++ {
		copy(buf[y*w:y*w+min(w, c.w)], c.backbuf[y*c.w:])
	}
	return termbox.Flush()
}

// Attribute maps a colour onto the xterm 256 colour cube as used by
// termbox.Output256. Attribute values are palette index + 1.
func Attribute(col colorful.Color) termbox.Attribute {
	r, g, b := col.Clamped().RGB255()
	if r == g && g == b {
		// grey ramp 232..255 covers 8..238
		if r < 8 {
			return termbox.Attribute(16 + 1)
		}
		if r > 238 {
			return termbox.Attribute(231 + 1)
		}
		k := min(int(math.Round(float64(r-8)/10)), 23)
		return termbox.Attribute(232 + k + 1)
	}
	level := func(v uint8) int {
		return int(math.Round(float64(v) / 255 * 5))
	}
	return termbox.Attribute(16 + 36*level(r) + 6*level(g) + level(b) + 1)
}
