// Package pointer contains utilities for handling pointer input.
package pointer

// Button indicates a mouse button.
type Button uint32

// These values were pulled from linux/input-event-codes.h.
const (
	ButtonLeft Button = 0x110 + iota
	ButtonRight
	ButtonMiddle
	ButtonSide
	ButtonExtra
	ButtonForward
	ButtonBack
	ButtonTask
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	case ButtonSide:
		return "side"
	case ButtonExtra:
		return "extra"
	case ButtonForward:
		return "forward"
	case ButtonBack:
		return "back"
	case ButtonTask:
		return "task"
	}

	return "unknown"
}

// ScrollDelta is an accumulated scroll amount for one pointer frame.
// Wheels report whole lines while touchpads report surface-local
// pixels.
type ScrollDelta struct {
	Lines  bool
	X, Y   float64
	active bool
}

// AddPixels accumulates a continuous axis value.
func (d *ScrollDelta) AddPixels(horizontal bool, v float64) {
	d.active = true
	if d.Lines {
		return
	}
	if horizontal {
		d.X += v
		return
	}
	d.Y += v
}

// AddLines accumulates a discrete axis value. Once a discrete value
// has been seen in a frame, the whole frame is reported in lines.
func (d *ScrollDelta) AddLines(horizontal bool, steps int32) {
	if !d.Lines {
		d.X, d.Y = 0, 0
	}
	d.Lines = true
	d.active = true
	if horizontal {
		d.X += float64(steps)
		return
	}
	d.Y += float64(steps)
}

// Take returns the accumulated delta and resets d. The second return
// is false if nothing was accumulated.
func (d *ScrollDelta) Take() (ScrollDelta, bool) {
	r := *d
	*d = ScrollDelta{}
	return ScrollDelta{Lines: r.Lines, X: r.X, Y: r.Y}, r.active
}
