//go:build windows

package settings

import (
	"log"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

const (
	dialogClassName = "ScreenTranslateSettings"
	dialogWidth     = 320
	dialogHeight    = 130
	saveButtonID    = 1
	esAutoHScroll   = 0x0080
	bsDefPushButton = 0x0001
)

// dialog is the single open settings window. Only the UI thread touches it.
type dialog struct {
	hwnd   win.HWND
	edit   win.HWND
	onSave func(input string) error
}

var (
	current        *dialog
	dialogOnce     sync.Once
	dialogClassOK  bool
	dialogWndProcP = syscall.NewCallback(dialogWndProc)
)

func registerDialogClass() bool {
	dialogOnce.Do(func() {
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   dialogWndProcP,
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
			HbrBackground: win.HBRUSH(win.COLOR_BTNFACE + 1),
			LpszClassName: syscall.StringToUTF16Ptr(dialogClassName),
		}
		dialogClassOK = win.RegisterClassEx(&wc) != 0
		if !dialogClassOK {
			log.Printf("settings: failed to register dialog class")
		}
	})
	return dialogClassOK
}

// Show opens the hotkey dialog pre-filled with current. onSave receives the
// raw field text when Save is pressed; the dialog closes when it returns nil.
// Must be called on the UI thread. A second call focuses the open dialog.
func Show(currentHotkey string, onSave func(input string) error) {
	if current != nil {
		win.SetForegroundWindow(current.hwnd)
		return
	}
	if !registerDialogClass() {
		return
	}

	x := (win.GetSystemMetrics(win.SM_CXSCREEN) - dialogWidth) / 2
	y := (win.GetSystemMetrics(win.SM_CYSCREEN) - dialogHeight) / 2
	d := &dialog{onSave: onSave}
	current = d

	d.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		syscall.StringToUTF16Ptr(dialogClassName),
		syscall.StringToUTF16Ptr("Change hotkey"),
		win.WS_CAPTION|win.WS_SYSMENU|win.WS_VISIBLE,
		x, y, dialogWidth, dialogHeight,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if d.hwnd == 0 {
		log.Printf("settings: failed to create dialog window")
		current = nil
		return
	}

	d.edit = win.CreateWindowEx(
		win.WS_EX_CLIENTEDGE,
		syscall.StringToUTF16Ptr("EDIT"),
		syscall.StringToUTF16Ptr(currentHotkey),
		win.WS_CHILD|win.WS_VISIBLE|win.WS_TABSTOP|esAutoHScroll,
		12, 14, 280, 24,
		d.hwnd, 0, win.GetModuleHandle(nil), nil,
	)
	win.CreateWindowEx(
		0,
		syscall.StringToUTF16Ptr("BUTTON"),
		syscall.StringToUTF16Ptr("Save"),
		win.WS_CHILD|win.WS_VISIBLE|win.WS_TABSTOP|bsDefPushButton,
		212, 50, 80, 26,
		d.hwnd, win.HMENU(saveButtonID), win.GetModuleHandle(nil), nil,
	)

	win.ShowWindow(d.hwnd, win.SW_SHOW)
	win.SetForegroundWindow(d.hwnd)
	win.SetFocus(d.edit)
}

func (d *dialog) text() string {
	n := win.SendMessage(d.edit, win.WM_GETTEXTLENGTH, 0, 0)
	buf := make([]uint16, n+1)
	win.SendMessage(d.edit, win.WM_GETTEXT, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	return syscall.UTF16ToString(buf)
}

func (d *dialog) save() {
	if err := d.onSave(d.text()); err != nil {
		log.Printf("settings: not saved: %v", err)
		win.SetFocus(d.edit)
		return
	}
	win.DestroyWindow(d.hwnd)
}

func dialogWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	d := current
	if d == nil || d.hwnd != hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_COMMAND:
		if win.LOWORD(uint32(wParam)) == saveButtonID {
			d.save()
			return 0
		}
	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0
	case win.WM_DESTROY:
		current = nil
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
