package gui

import (
	"context"
	"image"
	"os"
	"runtime"
	"testing"

	"screen-translate/src/screenshot"
)

func TestTrackerNormalizesEveryDragDirection(t *testing.T) {
	tests := []struct {
		name       string
		start, end image.Point
	}{
		{"down-right", image.Pt(100, 100), image.Pt(400, 300)},
		{"up-left", image.Pt(400, 300), image.Pt(100, 100)},
		{"up-right", image.Pt(100, 300), image.Pt(400, 100)},
		{"down-left", image.Pt(400, 100), image.Pt(100, 300)},
	}
	want := screenshot.Rect{MinX: 100, MinY: 100, MaxX: 400, MaxY: 300}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(image.Point{})
			tr.Press(tt.start.X, tt.start.Y)
			tr.Move((tt.start.X+tt.end.X)/2, (tt.start.Y+tt.end.Y)/2)
			got, ok := tr.Release(tt.end.X, tt.end.Y)
			if !ok {
				t.Fatal("Release after Press reported no selection")
			}
			if got != want {
				t.Fatalf("Release = %v, want %v", got, want)
			}
			if got.MinX > got.MaxX || got.MinY > got.MaxY {
				t.Fatalf("rectangle not normalized: %v", got)
			}
		})
	}
}

func TestTrackerAddsSurfaceOrigin(t *testing.T) {
	tr := NewTracker(image.Pt(-1920, 40))
	tr.Press(10, 20)
	if p := tr.Move(30, 60); p != image.Pt(-1890, 100) {
		t.Fatalf("Move = %v", p)
	}
	got, _ := tr.Release(50, 70)
	want := screenshot.Rect{MinX: -1910, MinY: 60, MaxX: -1870, MaxY: 110}
	if got != want {
		t.Fatalf("Release = %v, want %v", got, want)
	}
}

func TestTrackerReleaseWithoutPress(t *testing.T) {
	tr := NewTracker(image.Point{})
	tr.Move(5, 5)
	if _, ok := tr.Release(10, 10); ok {
		t.Fatal("Release without Press should yield no selection")
	}
}

func TestTrackerOutlineIsClientSpace(t *testing.T) {
	tr := NewTracker(image.Pt(100, 100))
	if _, ok := tr.Outline(); ok {
		t.Fatal("outline reported before press")
	}
	tr.Press(50, 50)
	tr.Move(10, 20)
	got, ok := tr.Outline()
	if !ok || got != image.Rect(10, 20, 50, 50) {
		t.Fatalf("Outline = %v, %v", got, ok)
	}
}

func TestTitleShowsCoordinates(t *testing.T) {
	if got := Title(image.Pt(120, 45)); got != SelectorTitle+" | 120 × 45" {
		t.Fatalf("Title = %q", got)
	}
}

func TestSelectRegion(t *testing.T) {
	if runtime.GOOS != "windows" {
		if _, ok, err := SelectRegion(context.Background()); err == nil || ok {
			t.Fatal("expected unsupported platform error")
		}
		return
	}
	if os.Getenv("SCREEN_TRANSLATE_INTERACTIVE_TESTS") != "1" {
		t.Skip("set SCREEN_TRANSLATE_INTERACTIVE_TESTS=1 to run interactive region selection test")
	}

	rect, ok, err := SelectRegion(context.Background())
	if err != nil {
		t.Fatalf("SelectRegion failed: %v", err)
	}
	if ok && rect.Empty() {
		t.Error("Expected valid region with non-zero dimensions")
	}
}
