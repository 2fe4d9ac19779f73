package overlay

import (
	"context"
	"image"

	"screen-translate/src/gui"
	"screen-translate/src/screenshot"
)

// Margin is the gap kept between a relocated panel and its region or the screen edge.
const Margin = 10

// Selector defines a synchronous region-selection API.
// The call is blocking and MUST be invoked on the UI thread.
// Returns (rect, ok, error). ok == false with a nil error means the user
// closed the surface without selecting.
type Selector interface {
	Select(ctx context.Context) (screenshot.Rect, bool, error)
}

// Presenter shows translated text anchored to the region it came from.
// Present MUST be invoked on the UI thread.
type Presenter interface {
	Present(text string, rect screenshot.Rect)
}

// NewSelector returns the platform region selector.
func NewSelector() Selector { return regionSelector{} }

type regionSelector struct{}

func (regionSelector) Select(ctx context.Context) (screenshot.Rect, bool, error) {
	return gui.SelectRegion(ctx)
}

// Place computes the panel bounds for a translation of rect on a display of
// the given size. The panel covers rect exactly unless it would cross the
// right or bottom edge, in which case it moves to the other side of the
// region, never closer than Margin to the left or top edge.
func Place(rect screenshot.Rect, display image.Point) image.Rectangle {
	w, h := rect.Width(), rect.Height()
	x, y := rect.MinX, rect.MinY
	if x+w > display.X {
		x = max(rect.MinX-w-Margin, Margin)
	}
	if y+h > display.Y {
		y = max(rect.MinY-h-Margin, Margin)
	}
	return image.Rect(x, y, x+w, y+h)
}
