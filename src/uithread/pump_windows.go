//go:build windows

package uithread

import "github.com/lxn/win"

// pumpMessages dispatches every pending message for windows owned by this thread.
func pumpMessages() {
	var msg win.MSG
	for win.PeekMessage(&msg, 0, 0, 0, win.PM_REMOVE) {
		if msg.Message == win.WM_QUIT {
			continue
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}
