package clipboard

import (
	"testing"
)

func TestWrite(t *testing.T) {
	// Needs a desktop session; headless runners only check it does not panic.
	if err := Write("test text"); err != nil {
		t.Logf("Failed to write to clipboard: %v", err)
	}
}

func TestInitIsMemoized(t *testing.T) {
	first := Init()
	if second := Init(); second != first {
		t.Fatalf("Init returned %v then %v", first, second)
	}
}
