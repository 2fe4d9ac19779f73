package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	logFileName  = "screen_translate.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
	maxLogText   = 100
)

// Setup enables file logging with size-based rotation (10MB, max 3 archives).
// When disabled, logs are discarded so the tray process stays silent.
func Setup(enableFileLogging bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	w, err := newRotatingWriter(logFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(w)
}

type rotatingWriter struct {
	mu   sync.Mutex
	name string
	f    *os.File
}

func newRotatingWriter(name string) (*rotatingWriter, error) {
	rotate(name)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return &rotatingWriter{name: name, f: f}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotate(w.name)
		nf, err := os.OpenFile(w.name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

// rotate shifts name -> name.1 -> name.2 ... once name exceeds the size cap.
func rotate(name string) {
	st, err := os.Stat(name)
	if err != nil || st.Size() <= maxSizeBytes {
		return
	}
	_ = os.Remove(archiveName(name, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(name, i), archiveName(name, i+1))
	}
	_ = os.Rename(name, archiveName(name, 1))
}

func archiveName(name string, n int) string {
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.%d", filepath.Base(name), n))
}

// SafeText prepares recognized or translated text for a single log line:
// truncated, with newlines and control characters escaped.
func SafeText(text string) string {
	runes := []rune(text)
	suffix := ""
	if len(runes) > maxLogText {
		runes = runes[:maxLogText]
		suffix = "..."
	}

	var b strings.Builder
	for _, r := range runes {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(suffix)
	return b.String()
}

// RedactKey masks an API key, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
