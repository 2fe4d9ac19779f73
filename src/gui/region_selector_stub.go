//go:build !windows

package gui

import (
	"context"
	"fmt"
	"runtime"

	"screen-translate/src/screenshot"
)

// SelectRegion is only implemented on Windows.
func SelectRegion(ctx context.Context) (screenshot.Rect, bool, error) {
	return screenshot.Rect{}, false, fmt.Errorf("interactive region selection not implemented for %s", runtime.GOOS)
}
