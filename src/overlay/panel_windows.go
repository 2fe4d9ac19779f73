//go:build windows

package overlay

import (
	"image"
	"log"
	"sync"
	"syscall"
	"unsafe"

	"screen-translate/src/screenshot"

	"github.com/lxn/win"
)

const (
	panelClassName  = "ScreenTranslatePanel"
	panelAlpha      = 217 // 0.85 opacity
	panelBackground = 0x333333
	panelPadding    = 8
	closeBoxSize    = 20
	lwaAlpha        = 0x2
	wsExNoActivate  = 0x08000000
	dtWordBreak     = 0x0010
	dtCenter        = 0x0001
	dtVCenter       = 0x0004
	dtSingleLine    = 0x0020
)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
	procFillRect                   = user32DLL.NewProc("FillRect")
	procDrawText                   = user32DLL.NewProc("DrawTextW")

	gdi32DLL             = syscall.NewLazyDLL("gdi32.dll")
	procCreateSolidBrush = gdi32DLL.NewProc("CreateSolidBrush")
)

// panels maps live panel windows to their text. Only the UI thread touches it.
var panels = map[win.HWND][]uint16{}

var (
	panelClassOnce sync.Once
	panelClassOK   bool
)

func registerPanelClass() bool {
	panelClassOnce.Do(func() {
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			Style:         win.CS_HREDRAW | win.CS_VREDRAW,
			LpfnWndProc:   syscall.NewCallback(panelWndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
			LpszClassName: syscall.StringToUTF16Ptr(panelClassName),
		}
		panelClassOK = win.RegisterClassEx(&wc) != 0
		if !panelClassOK {
			log.Printf("overlay: failed to register panel window class")
		}
	})
	return panelClassOK
}

type panelPresenter struct{}

// NewPresenter returns the Win32 panel presenter.
func NewPresenter() Presenter { return panelPresenter{} }

// Present opens a new topmost, non-activating panel. Panels stay until
// their close box is clicked; each is independent of the others.
func (panelPresenter) Present(text string, rect screenshot.Rect) {
	if !registerPanelClass() {
		return
	}
	display := image.Pt(
		int(win.GetSystemMetrics(win.SM_CXSCREEN)),
		int(win.GetSystemMetrics(win.SM_CYSCREEN)),
	)
	b := Place(rect, display)

	utf16Text, err := syscall.UTF16FromString(text)
	if err != nil {
		log.Printf("overlay: text not displayable: %v", err)
		return
	}

	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_LAYERED|wsExNoActivate,
		syscall.StringToUTF16Ptr(panelClassName),
		syscall.StringToUTF16Ptr("Translation"),
		win.WS_POPUP,
		int32(b.Min.X), int32(b.Min.Y), int32(b.Dx()), int32(b.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		log.Printf("overlay: failed to create panel window")
		return
	}
	panels[hwnd] = utf16Text
	procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, panelAlpha, lwaAlpha)
	win.ShowWindow(hwnd, win.SW_SHOWNOACTIVATE)
	win.UpdateWindow(hwnd)
	log.Printf("overlay: panel at %v (%d open)", b, len(panels))
}

func closeBox(hwnd win.HWND) win.RECT {
	var rc win.RECT
	win.GetClientRect(hwnd, &rc)
	return win.RECT{Left: rc.Right - closeBoxSize, Top: 0, Right: rc.Right, Bottom: closeBoxSize}
}

func inRect(rc win.RECT, x, y int32) bool {
	return x >= rc.Left && x < rc.Right && y >= rc.Top && y < rc.Bottom
}

func panelWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_NCHITTEST:
		pt := win.POINT{X: int32(int16(win.LOWORD(uint32(lParam)))), Y: int32(int16(win.HIWORD(uint32(lParam))))}
		win.ScreenToClient(hwnd, &pt)
		if inRect(closeBox(hwnd), pt.X, pt.Y) {
			return uintptr(win.HTCLIENT)
		}
		// The rest of the panel drags it around.
		return uintptr(win.HTCAPTION)

	case win.WM_LBUTTONUP:
		x := int32(int16(win.LOWORD(uint32(lParam))))
		y := int32(int16(win.HIWORD(uint32(lParam))))
		if inRect(closeBox(hwnd), x, y) {
			win.DestroyWindow(hwnd)
		}
		return 0

	case win.WM_ERASEBKGND:
		return 1

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		paintPanel(hwnd, hdc, panels[hwnd])
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_DESTROY:
		delete(panels, hwnd)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func paintPanel(hwnd win.HWND, hdc win.HDC, text []uint16) {
	var rc win.RECT
	win.GetClientRect(hwnd, &rc)

	brush, _, _ := procCreateSolidBrush.Call(panelBackground)
	procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(&rc)), brush)
	win.DeleteObject(win.HGDIOBJ(brush))

	win.SetBkMode(hdc, win.TRANSPARENT)

	if len(text) > 1 {
		body := win.RECT{
			Left:   rc.Left + panelPadding,
			Top:    rc.Top + panelPadding,
			Right:  rc.Right - closeBoxSize - panelPadding/2,
			Bottom: rc.Bottom - panelPadding,
		}
		win.SetTextColor(hdc, win.COLORREF(0xFFFFFF))
		procDrawText.Call(uintptr(hdc), uintptr(unsafe.Pointer(&text[0])), uintptr(len(text)-1),
			uintptr(unsafe.Pointer(&body)), dtWordBreak)
	}

	box := closeBox(hwnd)
	cross, _ := syscall.UTF16FromString("×")
	win.SetTextColor(hdc, win.COLORREF(0x0000FF))
	procDrawText.Call(uintptr(hdc), uintptr(unsafe.Pointer(&cross[0])), uintptr(len(cross)-1),
		uintptr(unsafe.Pointer(&box)), dtCenter|dtVCenter|dtSingleLine)
}
