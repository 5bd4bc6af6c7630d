// Package progress renders a live terminal status line from the driver's
// bus events. A dedicated goroutine taps the bus and is the sole writer
// to the terminal, so it never competes with (or blocks) the enumeration
// core.
package progress

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/omenforge/omen/internal/bus"
	"github.com/omenforge/omen/internal/types"
)

// Display renders ChainAdvanced/TargetCracked/RunFinished events as a
// single overwritten status line.
type Display struct {
	w    io.Writer
	tap  <-chan types.Event
	done chan struct{}

	lastLine string
}

// New attaches a Display to b and starts its rendering goroutine. Call
// Stop to detach.
func New(b *bus.Bus, w io.Writer) *Display {
	d := &Display{
		w:    w,
		tap:  b.NewTap(),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

// Stop ends the rendering goroutine.
func (d *Display) Stop() { close(d.done) }

func (d *Display) run() {
	for {
		select {
		case evt, ok := <-d.tap:
			if !ok {
				return
			}
			d.render(evt)
		case <-d.done:
			return
		}
	}
}

func (d *Display) render(evt types.Event) {
	var line string
	switch p := evt.Payload.(type) {
	case types.ChainAdvanced:
		line = fmt.Sprintf("length=%-3d target_level=%-4d", p.Length, p.TargetLevel)
	case types.TargetCracked:
		line = fmt.Sprintf("cracked %q (length %d) at attempt %d", p.Target, p.Length, p.AttemptsAtHit)
	case types.RunFinished:
		line = fmt.Sprintf("finished: %s (attempts=%d cracked=%d)", p.State, p.AttemptsTotal, p.CrackedCount)
	default:
		return
	}
	d.writeLine(line)
}

// writeLine overwrites the previous status line, padding with spaces to
// go-runewidth's display width so a shorter line doesn't leave stray
// trailing characters from a longer previous one.
func (d *Display) writeLine(line string) {
	pad := 0
	if prev := runewidth.StringWidth(d.lastLine); prev > runewidth.StringWidth(line) {
		pad = prev - runewidth.StringWidth(line)
	}
	fmt.Fprintf(d.w, "\r%s%*s", line, pad, "")
	d.lastLine = line
}
