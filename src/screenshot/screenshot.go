package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/kbinani/screenshot"
)

// Rect is a selection rectangle in absolute screen coordinates.
// MinX <= MaxX and MinY <= MaxY always hold for values built with NewRect.
type Rect struct {
	MinX int
	MinY int
	MaxX int
	MaxY int
}

// NewRect normalizes two corner points into a Rect.
func NewRect(x0, y0, x1, y1 int) Rect {
	return Rect{
		MinX: min(x0, x1),
		MinY: min(y0, y1),
		MaxX: max(x0, x1),
		MaxY: max(y0, y1),
	}
}

func (r Rect) Width() int  { return r.MaxX - r.MinX }
func (r Rect) Height() int { return r.MaxY - r.MinY }

// Empty reports whether the rectangle has zero width or height.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle { return image.Rect(r.MinX, r.MinY, r.MaxX, r.MaxY) }

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// Capture holds the pixels grabbed for one selection. Image is opaque and
// its bounds start at (0,0).
type Capture struct {
	Image *image.RGBA
	Rect  Rect
}

// CaptureError reports a degenerate rectangle or a failing screen grab.
type CaptureError struct {
	Rect Rect
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Rect, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// GrabFunc grabs the pixels inside bounds.
type GrabFunc func(bounds image.Rectangle) (image.Image, error)

// Grabber turns selection rectangles into captures.
type Grabber struct {
	grab GrabFunc
}

// NewGrabber returns a Grabber backed by the native screen grab.
func NewGrabber() *Grabber {
	return &Grabber{grab: func(b image.Rectangle) (image.Image, error) {
		return screenshot.CaptureRect(b)
	}}
}

// NewGrabberWith returns a Grabber using a custom grab primitive.
func NewGrabberWith(fn GrabFunc) *Grabber {
	return &Grabber{grab: fn}
}

// Grab captures the pixels of rect.
func (g *Grabber) Grab(rect Rect) (*Capture, error) {
	if rect.Empty() {
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("invalid region dimensions: width=%d, height=%d", rect.Width(), rect.Height())}
	}

	img, err := g.grab(rect.Bounds())
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("failed to capture region: %w", err)}
	}
	if img == nil {
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("screen grab returned no image")}
	}

	return &Capture{Image: ToRGB(img), Rect: rect}, nil
}

// ToRGB copies img into an opaque RGBA buffer whose bounds start at (0,0).
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// EncodePNG encodes a capture for engines that take encoded images.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// PrimaryDisplay returns the bounds of the primary display.
func PrimaryDisplay() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}
