//go:build !windows

package tray

import (
	"fmt"
	"os"
)

// ShowMessage prints the notice to stderr.
func ShowMessage(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
