package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listener watches the global keyboard stream and fires the callback of the
// current binding when every key of its combination is held down.
// The binding can be replaced at any time; the old combination stops firing
// as soon as Bind returns.
type Listener struct {
	mu      sync.Mutex
	binding *binding

	startOnce sync.Once
}

type binding struct {
	combo    string
	keys     []keyState
	callback func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

func NewListener() *Listener {
	return &Listener{}
}

// Bind installs combo as the active hotkey. A combination containing a key
// that cannot be mapped is disabled as a whole and never fires.
func (l *Listener) Bind(combo string, callback func()) {
	b := &binding{combo: combo, callback: callback}
	for _, name := range parseHotkey(combo) {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			log.Printf("hotkey: cannot map key %q in %q, hotkey disabled", name, combo)
			b.keys = nil
			break
		}
		b.keys = append(b.keys, keyState{name: name, rawcodes: rawcodes})
	}
	if len(b.keys) == 0 {
		log.Printf("hotkey: no usable keys in %q, hotkey disabled", combo)
	}

	l.mu.Lock()
	l.binding = b
	l.mu.Unlock()
	log.Printf("hotkey: bound %q", combo)
}

// Combo returns the active combination string.
func (l *Listener) Combo() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.binding == nil {
		return ""
	}
	return l.binding.combo
}

// Start begins consuming the gohook event stream. Calling it again is a no-op.
func (l *Listener) Start() {
	l.startOnce.Do(func() {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("PANIC in hotkey goroutine: %v", r)
				}
			}()

			evChan := gohook.Start()
			if evChan == nil {
				log.Printf("ERROR: gohook.Start() returned nil channel")
				return
			}
			log.Printf("hotkey: keyboard hook started")
			for ev := range evChan {
				l.handle(ev)
			}
			log.Printf("hotkey: event channel closed")
		}()
	})
}

// Stop ends the keyboard hook.
func (l *Listener) Stop() {
	gohook.End()
}

func (l *Listener) handle(ev gohook.Event) {
	if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
		return
	}

	l.mu.Lock()
	b := l.binding
	if b == nil || len(b.keys) == 0 {
		l.mu.Unlock()
		return
	}

	down := ev.Kind == gohook.KeyDown
	for i := range b.keys {
		if b.keys[i].matches(ev.Rawcode) {
			b.keys[i].pressed = down
		}
	}
	// Only the last key of the combination triggers, with the others held.
	last := &b.keys[len(b.keys)-1]
	if !down || !last.matches(ev.Rawcode) || !b.allPressed() {
		l.mu.Unlock()
		return
	}

	last.pressed = false
	cb := b.callback
	l.mu.Unlock()

	log.Printf("hotkey: %s activated", b.combo)
	if cb != nil {
		cb()
	}
}

func (k keyState) matches(rawcode uint16) bool {
	for _, rc := range k.rawcodes {
		if rc == rawcode {
			return true
		}
	}
	return false
}

func (b *binding) allPressed() bool {
	for _, k := range b.keys {
		if !k.pressed {
			return false
		}
	}
	return true
}

// parseHotkey converts a hotkey string like "Ctrl+Shift+T" to normalized key names
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "control":
			part = "ctrl"
		case "win", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// Windows virtual-key codes for named keys. Modifiers list left and right variants.
var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to the virtual-key codes gohook reports
// as Rawcode on Windows.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	switch keyName {
	case "win", "super":
		keyName = "cmd"
	case "control":
		keyName = "ctrl"
	}
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}

	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65} // VK_A..VK_Z
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}

	// F1..F24 -> VK_F1 (112) .. VK_F24 (135)
	if len(keyName) >= 2 && keyName[0] == 'f' {
		n := 0
		for _, r := range keyName[1:] {
			if r < '0' || r > '9' {
				n = -1
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
