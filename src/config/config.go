package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	KeyHotkey        = "hotkey"
	KeyTargetLang    = "target_lang"
	KeyTesseractPath = "tesseract_path"

	DefaultHotkey     = "ctrl+shift+t"
	DefaultTargetLang = "en"
	DefaultFileName   = "config.json"
)

// Config is the persisted user configuration.
type Config struct {
	Hotkey        string
	TargetLang    string
	TesseractPath string
}

// DefaultTesseractPath returns the usual install location of the tesseract binary.
func DefaultTesseractPath() string {
	if runtime.GOOS == "windows" {
		return "C:/Program Files/Tesseract-OCR/tesseract.exe"
	}
	return "/usr/bin/tesseract"
}

// Defaults returns the configuration used on first run or when the file is unreadable.
func Defaults() Config {
	return Config{
		Hotkey:        DefaultHotkey,
		TargetLang:    DefaultTargetLang,
		TesseractPath: DefaultTesseractPath(),
	}
}

// Store owns the configuration file. Keys it does not know about are kept
// and written back on save.
type Store struct {
	path string

	mu    sync.RWMutex
	cfg   Config
	extra map[string]json.RawMessage
}

// DefaultPath returns config.json beside the executable, or in the working
// directory when the executable path cannot be resolved.
func DefaultPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(execPath), DefaultFileName)
}

// Open loads the configuration at path. Load problems never fail Open: a
// missing or malformed file yields defaults, and a parsed file missing keys
// gets them injected and persisted.
func Open(path string) *Store {
	s := &Store{path: path}
	s.load()
	return s
}

func (s *Store) load() {
	s.cfg = Defaults()
	s.extra = map[string]json.RawMessage{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("config: failed to read %s: %v; using defaults", s.path, err)
		}
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		log.Printf("config: failed to parse %s: %v; using defaults", s.path, err)
		return
	}

	var cfg Config
	missing, err := decodeKnown(raw, &cfg)
	if err != nil {
		log.Printf("config: invalid value in %s: %v; using defaults", s.path, err)
		return
	}

	for k, v := range raw {
		s.extra[k] = v
	}
	s.cfg = cfg

	if len(missing) > 0 {
		log.Printf("config: injecting defaults for %s", strings.Join(missing, ", "))
		if err := s.saveLocked(); err != nil {
			log.Printf("config: failed to persist defaults: %v", err)
		}
	}
}

// decodeKnown pulls the known keys out of raw, filling defaults for absent
// ones. It returns the names of keys that were absent.
func decodeKnown(raw map[string]json.RawMessage, cfg *Config) ([]string, error) {
	defaults := Defaults()
	fields := []struct {
		key string
		dst *string
		def string
	}{
		{KeyHotkey, &cfg.Hotkey, defaults.Hotkey},
		{KeyTargetLang, &cfg.TargetLang, defaults.TargetLang},
		{KeyTesseractPath, &cfg.TesseractPath, defaults.TesseractPath},
	}

	var missing []string
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			*f.dst = f.def
			missing = append(missing, f.key)
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
		delete(raw, f.key)
	}
	return missing, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Get returns a snapshot of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetHotkey updates the hotkey and persists the file immediately.
func (s *Store) SetHotkey(combo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Hotkey = combo
	return s.saveLocked()
}

// Save persists the current configuration.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	out := make(map[string]any, len(s.extra)+3)
	for k, v := range s.extra {
		out[k] = v
	}
	out[KeyHotkey] = s.cfg.Hotkey
	out[KeyTargetLang] = s.cfg.TargetLang
	out[KeyTesseractPath] = s.cfg.TesseractPath

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", s.path, err)
	}
	return nil
}
