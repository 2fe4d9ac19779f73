//go:build !windows

package overlay

import (
	"log"
	"runtime"

	"screen-translate/src/logutil"
	"screen-translate/src/screenshot"
)

type logPresenter struct{}

// NewPresenter returns a presenter that only logs; panels need Win32.
func NewPresenter() Presenter { return logPresenter{} }

func (logPresenter) Present(text string, rect screenshot.Rect) {
	log.Printf("overlay: panels unsupported on %s, translation for %v: %q", runtime.GOOS, rect, logutil.SafeText(text))
}
