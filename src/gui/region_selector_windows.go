//go:build windows

package gui

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"screen-translate/src/screenshot"

	"github.com/lxn/win"
)

const (
	selectorClassName    = "ScreenTranslateSelector"
	selectorAlpha        = 77 // 0.3 opacity
	lwaAlpha             = 0x2
	cancelPollTimerID    = 1
	cancelPollIntervalMs = 50
	labelOffset          = 16
	surfaceColor         = 0x202020
	outlineColor         = 0x0000FF // COLORREF is 0x00BBGGRR
	outlineWidth         = 2
)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow   = user32DLL.NewProc("AllowSetForegroundWindow")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
	procFillRect                   = user32DLL.NewProc("FillRect")

	gdi32DLL             = syscall.NewLazyDLL("gdi32.dll")
	procCreatePen        = gdi32DLL.NewProc("CreatePen")
	procCreateSolidBrush = gdi32DLL.NewProc("CreateSolidBrush")
	procRectangle        = gdi32DLL.NewProc("Rectangle")
)

// selection is the state of the one surface that may be open at a time.
// The window procedure cannot capture variables, so it reaches the state
// through activeSelection; both run on the UI thread.
type selection struct {
	hwnd    win.HWND
	tracker *Tracker
	rect    screenshot.Rect
	ok      bool
	done    bool
}

var (
	activeSelection *selection

	registerOnce sync.Once
	registerErr  error
	crossCursor  win.HCURSOR
)

func registerSelectorClass() error {
	registerOnce.Do(func() {
		crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			Style:         win.CS_HREDRAW | win.CS_VREDRAW,
			LpfnWndProc:   syscall.NewCallback(selectorWndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       crossCursor,
			LpszClassName: syscall.StringToUTF16Ptr(selectorClassName),
		}
		if win.RegisterClassEx(&wc) == 0 {
			registerErr = fmt.Errorf("failed to register selector window class")
		}
	})
	return registerErr
}

// SelectRegion shows a translucent full-screen surface over the primary
// display and blocks until the user drags a rectangle (ok == true) or
// dismisses the surface with ESC, a right click or a close request
// (ok == false). Must be called on the UI thread.
func SelectRegion(ctx context.Context) (screenshot.Rect, bool, error) {
	if activeSelection != nil {
		return screenshot.Rect{}, false, fmt.Errorf("region selection already in progress")
	}
	if err := registerSelectorClass(); err != nil {
		return screenshot.Rect{}, false, err
	}

	w := win.GetSystemMetrics(win.SM_CXSCREEN)
	h := win.GetSystemMetrics(win.SM_CYSCREEN)

	s := &selection{}
	activeSelection = s
	defer func() { activeSelection = nil }()

	s.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_LAYERED|win.WS_EX_TOOLWINDOW,
		syscall.StringToUTF16Ptr(selectorClassName),
		syscall.StringToUTF16Ptr(SelectorTitle),
		win.WS_POPUP,
		0, 0, w, h,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if s.hwnd == 0 {
		return screenshot.Rect{}, false, fmt.Errorf("failed to create selector window")
	}
	defer win.DestroyWindow(s.hwnd)

	var wr win.RECT
	win.GetWindowRect(s.hwnd, &wr)
	s.tracker = NewTracker(image.Pt(int(wr.Left), int(wr.Top)))
	log.Printf("selector: surface %dx%d at (%d,%d)", w, h, wr.Left, wr.Top)

	procSetLayeredWindowAttributes.Call(uintptr(s.hwnd), 0, selectorAlpha, lwaAlpha)
	win.ShowWindow(s.hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(s.hwnd)
	win.BringWindowToTop(s.hwnd)
	win.SetFocus(s.hwnd)
	win.UpdateWindow(s.hwnd)

	// The timer wakes GetMessage so a cancelled ctx closes the surface.
	win.SetTimer(s.hwnd, cancelPollTimerID, cancelPollIntervalMs, 0)
	defer win.KillTimer(s.hwnd, cancelPollTimerID)

	var msg win.MSG
	for !s.done {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			log.Printf("selector: message loop ended (ret=%d)", ret)
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
		if ctx.Err() != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return screenshot.Rect{}, false, err
	}
	if !s.ok {
		log.Printf("selector: closed without a selection")
		return screenshot.Rect{}, false, nil
	}
	log.Printf("selector: selected %v", s.rect)
	return s.rect, true, nil
}

func (s *selection) finish(rect screenshot.Rect, ok bool) {
	s.rect, s.ok, s.done = rect, ok, true
}

func selectorWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	s := activeSelection
	if s == nil || s.hwnd != hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	x := int(int16(win.LOWORD(uint32(lParam))))
	y := int(int16(win.HIWORD(uint32(lParam))))

	switch msg {
	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		s.tracker.Press(x, y)
		win.InvalidateRect(hwnd, nil, false)
		return 0

	case win.WM_MOUSEMOVE:
		p := s.tracker.Move(x, y)
		win.SendMessage(hwnd, win.WM_SETTEXT, 0, uintptr(unsafe.Pointer(syscall.StringToUTF16Ptr(Title(p)))))
		win.InvalidateRect(hwnd, nil, false)
		return 0

	case win.WM_LBUTTONUP:
		if !s.tracker.Dragging() {
			return 0
		}
		win.ReleaseCapture()
		rect, ok := s.tracker.Release(x, y)
		s.finish(rect, ok)
		return 0

	case win.WM_RBUTTONUP:
		win.ReleaseCapture()
		s.finish(screenshot.Rect{}, false)
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			s.finish(screenshot.Rect{}, false)
		}
		return 0

	case win.WM_CLOSE:
		// DestroyWindow happens in SelectRegion once the loop exits.
		s.finish(screenshot.Rect{}, false)
		return 0

	case win.WM_TIMER:
		return 0

	case win.WM_SETCURSOR:
		if crossCursor != 0 {
			win.SetCursor(crossCursor)
		}
		return 1

	case win.WM_ERASEBKGND:
		return 1

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		paintSelector(hwnd, hdc, s.tracker)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_NCHITTEST:
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		// No PostQuitMessage: a stray WM_QUIT would end the next selection
		// immediately.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func paintSelector(hwnd win.HWND, hdc win.HDC, t *Tracker) {
	var client win.RECT
	win.GetClientRect(hwnd, &client)

	brush, _, _ := procCreateSolidBrush.Call(surfaceColor)
	procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(&client)), brush)
	win.DeleteObject(win.HGDIOBJ(brush))

	if outline, ok := t.Outline(); ok {
		pen, _, _ := procCreatePen.Call(0, outlineWidth, outlineColor)
		oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
		oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))
		procRectangle.Call(uintptr(hdc),
			uintptr(outline.Min.X), uintptr(outline.Min.Y),
			uintptr(outline.Max.X), uintptr(outline.Max.Y))
		win.SelectObject(hdc, oldPen)
		win.SelectObject(hdc, oldBrush)
		win.DeleteObject(win.HGDIOBJ(pen))
	}

	label, err := syscall.UTF16FromString(CoordinateLabel(t.Current()))
	if err != nil {
		return
	}
	cur := t.Current().Sub(t.origin)
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(0xFFFFFF))
	win.TextOut(hdc, int32(cur.X+labelOffset), int32(cur.Y+labelOffset), &label[0], int32(len(label)-1))
}
