package tray

import (
	"log"
	"os"

	"github.com/getlantern/systray"
)

// Config describes the tray icon and its menu actions. Handlers run on the
// systray goroutine; anything touching windows must be posted to the UI thread.
type Config struct {
	Title          string
	Tooltip        string
	OnChangeHotkey func()
	OnExit         func()
}

type Tray struct {
	cfg Config
}

func New(cfg Config) *Tray {
	return &Tray{cfg: cfg}
}

// Run shows the icon and blocks until Exit is chosen.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	if icon := Icon(); icon != nil {
		systray.SetIcon(icon)
	}
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	mHotkey := systray.AddMenuItem("Change hotkey", "Change the capture hotkey")
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Quit the application")

	go func() {
		for {
			select {
			case <-mHotkey.ClickedCh:
				log.Printf("tray: change hotkey requested")
				if t.cfg.OnChangeHotkey != nil {
					t.cfg.OnChangeHotkey()
				}
			case <-mExit.ClickedCh:
				log.Printf("tray: exit requested")
				if t.cfg.OnExit != nil {
					t.cfg.OnExit()
				}
				systray.Quit()
				os.Exit(0)
			}
		}
	}()
}

func (t *Tray) onExit() {
	log.Printf("tray: exited")
}

// UpdateTooltip replaces the tray tooltip.
func UpdateTooltip(text string) {
	systray.SetTooltip(text)
}
