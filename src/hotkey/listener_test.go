package hotkey

import (
	"testing"

	gohook "github.com/robotn/gohook"
)

const (
	vkLCtrl  = 162
	vkLShift = 160
	vkT      = 84
	vkY      = 89
)

func press(l *Listener, codes ...uint16) {
	for _, c := range codes {
		l.handle(gohook.Event{Kind: gohook.KeyDown, Rawcode: c})
	}
}

func release(l *Listener, codes ...uint16) {
	for _, c := range codes {
		l.handle(gohook.Event{Kind: gohook.KeyUp, Rawcode: c})
	}
}

func TestListenerFiresOnLastKeyWithModifiersHeld(t *testing.T) {
	l := NewListener()
	fired := 0
	l.Bind("ctrl+shift+t", func() { fired++ })

	press(l, vkLCtrl, vkT)
	if fired != 0 {
		t.Fatal("fired without shift held")
	}
	press(l, vkLShift)
	if fired != 0 {
		t.Fatal("fired when a modifier went down last")
	}

	release(l, vkT)
	press(l, vkT)
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

func TestListenerRepeatsWhileModifiersHeld(t *testing.T) {
	l := NewListener()
	fired := 0
	l.Bind("ctrl+shift+t", func() { fired++ })

	press(l, vkLShift, vkLCtrl, vkT)
	release(l, vkT)
	press(l, vkT)
	if fired != 2 {
		t.Fatalf("fired %d times, want 2", fired)
	}
}

func TestListenerReleaseClearsState(t *testing.T) {
	l := NewListener()
	fired := 0
	l.Bind("ctrl+shift+t", func() { fired++ })

	press(l, vkLCtrl, vkLShift)
	release(l, vkLShift)
	press(l, vkT)
	if fired != 0 {
		t.Fatal("fired after shift was released")
	}
}

func TestListenerRebindSwitchesCombination(t *testing.T) {
	l := NewListener()
	var oldFired, newFired int
	l.Bind("ctrl+shift+t", func() { oldFired++ })

	press(l, vkLCtrl, vkLShift, vkT)
	release(l, vkT, vkLShift, vkLCtrl)
	if oldFired != 1 {
		t.Fatalf("original combination fired %d times, want 1", oldFired)
	}

	l.Bind("ctrl+shift+y", func() { newFired++ })
	if got := l.Combo(); got != "ctrl+shift+y" {
		t.Fatalf("Combo() = %q", got)
	}

	press(l, vkLCtrl, vkLShift, vkT)
	release(l, vkT, vkLShift, vkLCtrl)
	if oldFired != 1 || newFired != 0 {
		t.Fatalf("old combination still fires after rebind: old=%d new=%d", oldFired, newFired)
	}

	press(l, vkLCtrl, vkLShift, vkY)
	if newFired != 1 {
		t.Fatalf("new combination fired %d times, want 1", newFired)
	}
}

func TestListenerUnknownComboNeverFires(t *testing.T) {
	l := NewListener()
	fired := false
	l.Bind("hyper+meta", func() { fired = true })

	press(l, vkLCtrl, vkLShift, vkT, vkY)
	if fired {
		t.Fatal("combination without known keys fired")
	}
}

func TestListenerComboWithUnknownKeyNeverFires(t *testing.T) {
	tests := []string{"ctrl+shift+tt", "ctrl+foo"}
	for _, combo := range tests {
		t.Run(combo, func(t *testing.T) {
			l := NewListener()
			fired := false
			l.Bind(combo, func() { fired = true })

			press(l, vkLCtrl, vkLShift)
			press(l, vkT)
			if fired {
				t.Fatalf("%q fired on its known keys alone", combo)
			}
		})
	}
}

func TestListenerIgnoresMouseEvents(t *testing.T) {
	l := NewListener()
	fired := false
	l.Bind("t", func() { fired = true })

	l.handle(gohook.Event{Kind: gohook.MouseDown, Rawcode: vkT})
	if fired {
		t.Fatal("mouse event triggered hotkey")
	}
}
