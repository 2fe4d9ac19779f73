// Package settings implements the "Change hotkey" dialog.
package settings

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrEmptyHotkey is returned when the submitted field is blank after trimming.
var ErrEmptyHotkey = errors.New("hotkey must not be empty")

// HotkeyStore persists the hotkey.
type HotkeyStore interface {
	SetHotkey(combo string) error
}

// Apply commits a submitted hotkey: the trimmed value is persisted first,
// then rebind installs it. The combination grammar is not checked here; an
// unknown key simply never matches.
func Apply(input string, store HotkeyStore, rebind func(combo string)) (string, error) {
	combo := strings.TrimSpace(input)
	if combo == "" {
		return "", ErrEmptyHotkey
	}
	if err := store.SetHotkey(combo); err != nil {
		return "", fmt.Errorf("save hotkey: %w", err)
	}
	if rebind != nil {
		rebind(combo)
	}
	log.Printf("settings: hotkey changed to %q", combo)
	return combo, nil
}
