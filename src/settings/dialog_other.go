//go:build !windows

package settings

import (
	"log"
	"runtime"
)

// Show is only implemented on Windows; elsewhere edit config.json directly.
func Show(current string, onSave func(input string) error) {
	log.Printf("settings: dialog unsupported on %s (current hotkey %q)", runtime.GOOS, current)
}
