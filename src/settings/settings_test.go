package settings

import (
	"errors"
	"testing"
)

type fakeStore struct {
	saved []string
	err   error
}

func (f *fakeStore) SetHotkey(combo string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, combo)
	return nil
}

func TestApplyTrimsPersistsAndRebinds(t *testing.T) {
	store := &fakeStore{}
	var rebound string

	got, err := Apply("  ctrl+shift+y \n", store, func(c string) { rebound = c })
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "ctrl+shift+y" {
		t.Fatalf("Apply = %q", got)
	}
	if len(store.saved) != 1 || store.saved[0] != "ctrl+shift+y" {
		t.Fatalf("saved = %v", store.saved)
	}
	if rebound != "ctrl+shift+y" {
		t.Fatalf("rebound = %q", rebound)
	}
}

func TestApplyRejectsBlankInput(t *testing.T) {
	store := &fakeStore{}
	rebound := false

	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := Apply(in, store, func(string) { rebound = true }); !errors.Is(err, ErrEmptyHotkey) {
			t.Fatalf("Apply(%q) err = %v, want ErrEmptyHotkey", in, err)
		}
	}
	if len(store.saved) != 0 || rebound {
		t.Fatal("blank input must not be persisted or bound")
	}
}

func TestApplyAcceptsUnvalidatedCombo(t *testing.T) {
	store := &fakeStore{}
	if _, err := Apply("hyper+q", store, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatal("combo without grammar check was not saved")
	}
}

func TestApplyDoesNotRebindWhenSaveFails(t *testing.T) {
	store := &fakeStore{err: errors.New("read-only")}
	rebound := false

	if _, err := Apply("ctrl+y", store, func(string) { rebound = true }); err == nil {
		t.Fatal("expected save error")
	}
	if rebound {
		t.Fatal("rebound despite save failure")
	}
}
