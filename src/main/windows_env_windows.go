//go:build windows

package main

import (
	"log"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	shcore                 = windows.NewLazySystemDLL("Shcore.dll")
	user32                 = windows.NewLazySystemDLL("user32.dll")
	setProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
	setProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
)

// enableDPIAwareness makes screen coordinates physical pixels, so the
// selector, the capture and the panel agree on positions.
func enableDPIAwareness() {
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: Successfully set per-monitor DPI awareness")
		} else {
			log.Printf("DPI: Failed to set per-monitor DPI awareness, error code: %d", ret)
		}
		return
	}

	log.Printf("DPI: Shcore.SetProcessDpiAwareness not available, trying fallback")
	if err := setProcessDPIAware.Find(); err != nil {
		log.Printf("DPI: SetProcessDPIAware not available, no DPI awareness set")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret != 0 {
		log.Printf("DPI: Successfully set system DPI awareness (fallback)")
	} else {
		log.Printf("DPI: Failed to set system DPI awareness (fallback)")
	}
}

func logMonitorConfiguration() {
	const smCMonitors = 80
	log.Printf("MONITOR: Detected %d monitors", win.GetSystemMetrics(smCMonitors))
	log.Printf("MONITOR: Virtual screen - x:%d y:%d w:%d h:%d",
		win.GetSystemMetrics(win.SM_XVIRTUALSCREEN), win.GetSystemMetrics(win.SM_YVIRTUALSCREEN),
		win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN), win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN))
	log.Printf("MONITOR: Primary screen - w:%d h:%d",
		win.GetSystemMetrics(win.SM_CXSCREEN), win.GetSystemMetrics(win.SM_CYSCREEN))
}
