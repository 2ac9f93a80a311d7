package terminal

import (
	"context"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FrameFunc renders one frame. dt is the time since the previous frame in seconds.
type FrameFunc func(dt float64, c *Canvas) error

// ClickFunc is called with the cell coordinates of a left mouse click.
type ClickFunc func(x, y int)

// Terminal drives a fixed-rate frame loop on top of termbox.
type Terminal struct {
	fps     int
	log     *zap.SugaredLogger
	onClick ClickFunc
	canvas  *Canvas
}

// New returns a terminal running at fps frames per second.
func New(fps int, log *zap.SugaredLogger) *Terminal {
	if fps <= 0 {
		fps = 30
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Terminal{fps: fps, log: log}
}

// OnClick registers the left mouse button handler.
func (t *Terminal) OnClick(fn ClickFunc) {
	t.onClick = fn
}

// Canvas returns the drawing surface, nil before Run has initialised the screen.
func (t *Terminal) Canvas() *Canvas {
	return t.canvas
}

// Run initialises the screen and calls frame at the configured rate until Esc,
// q or Ctrl-C is pressed, ctx is cancelled or frame returns an error.
func (t *Terminal) Run(ctx context.Context, frame FrameFunc) error {
	if err := termbox.Init(); err != nil {
		return errors.Wrap(err, "init termbox")
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	termbox.SetOutputMode(termbox.Output256)
	t.canvas = NewCanvas(termbox.Size())

	pump := startPump(termbox.PollEvent, termbox.Interrupt)
	defer pump.stop()

	ticker := time.NewTicker(time.Second / time.Duration(t.fps))
	defer ticker.Stop()

	last := time.Now()
	t.log.Infow("frame loop started", "fps", t.fps, "width", t.canvas.w, "height", t.canvas.h)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-pump.events:
			if !ok {
				return nil
			}
			if t.handle(ev) {
				t.log.Infow("quit requested")
				return nil
			}

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt < 0 {
				dt = 0
			}
			t.canvas.Clear()
			if err := frame(dt, t.canvas); err != nil {
				return err
			}
			if err := t.canvas.Flush(); err != nil {
				return errors.Wrap(err, "flush")
			}
		}
	}
}

// eventPump forwards input events from a blocking poll until the poll
// reports an interrupt.
type eventPump struct {
	events    chan termbox.Event
	interrupt func()
}

func startPump(poll func() termbox.Event, interrupt func()) *eventPump {
	p := &eventPump{events: make(chan termbox.Event, 16), interrupt: interrupt}
	go func() {
		defer close(p.events)
		for {
			ev := poll()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			p.events <- ev
		}
	}()
	return p
}

// stop interrupts the poll and discards pending events until the pump
// goroutine has exited. interrupt blocks until poll receives it, so it runs
// alongside the drain.
func (p *eventPump) stop() {
	go p.interrupt()
	for range p.events {
	}
}

// handle processes one input event and reports whether the loop should stop.
func (t *Terminal) handle(ev termbox.Event) bool {
	switch ev.Type {
	case termbox.EventKey:
		if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
			return true
		}
	case termbox.EventMouse:
		if ev.Key == termbox.MouseLeft && t.onClick != nil {
			t.log.Debugw("click", "x", ev.MouseX, "y", ev.MouseY)
			t.onClick(ev.MouseX, ev.MouseY)
		}
	case termbox.EventResize:
		t.canvas.Resize(ev.Width, ev.Height)
		t.log.Debugw("resize", "width", ev.Width, "height", ev.Height)
	case termbox.EventError:
		t.log.Warnw("input error", "err", ev.Err)
	}
	return false
}
