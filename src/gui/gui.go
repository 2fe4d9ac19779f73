package gui

import (
	"fmt"
	"image"

	"screen-translate/src/screenshot"
)

// SelectorTitle is the caption of the selection surface before the first drag.
const SelectorTitle = "Select region to translate"

// Tracker follows one press/drag/release gesture on the selection surface.
// Inputs are client coordinates of the surface; outputs are absolute screen
// coordinates obtained by adding the surface origin.
type Tracker struct {
	origin   image.Point
	start    image.Point
	current  image.Point
	dragging bool
}

// NewTracker returns a tracker for a surface whose client area starts at
// origin in screen space.
func NewTracker(origin image.Point) *Tracker {
	return &Tracker{origin: origin}
}

func (t *Tracker) abs(x, y int) image.Point {
	return image.Pt(x, y).Add(t.origin)
}

// Press starts a drag at the given client point.
func (t *Tracker) Press(x, y int) {
	t.start = t.abs(x, y)
	t.current = t.start
	t.dragging = true
}

// Move records the pointer position and returns it in screen space. Moves
// outside a drag are tracked too so the coordinate label stays live.
func (t *Tracker) Move(x, y int) image.Point {
	t.current = t.abs(x, y)
	return t.current
}

// Release ends the drag and returns the normalized rectangle spanned by the
// press and release points. ok is false when no press preceded it.
func (t *Tracker) Release(x, y int) (screenshot.Rect, bool) {
	if !t.dragging {
		return screenshot.Rect{}, false
	}
	t.current = t.abs(x, y)
	t.dragging = false
	return screenshot.NewRect(t.start.X, t.start.Y, t.current.X, t.current.Y), true
}

// Dragging reports whether a press is in progress.
func (t *Tracker) Dragging() bool { return t.dragging }

// Current is the last known pointer position in screen space.
func (t *Tracker) Current() image.Point { return t.current }

// Outline returns the rectangle to draw, in client coordinates.
func (t *Tracker) Outline() (image.Rectangle, bool) {
	if !t.dragging {
		return image.Rectangle{}, false
	}
	return image.Rectangle{Min: t.start.Sub(t.origin), Max: t.current.Sub(t.origin)}.Canon(), true
}

// CoordinateLabel formats a screen position as shown on the surface.
func CoordinateLabel(p image.Point) string {
	return fmt.Sprintf("%d × %d", p.X, p.Y)
}

// Title is the surface caption while the pointer is at p.
func Title(p image.Point) string {
	return SelectorTitle + " | " + CoordinateLabel(p)
}
