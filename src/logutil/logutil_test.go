package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hello", "Hello"},
		{"newlines", "line1\nline2\r\n", `line1\nline2\n\n`},
		{"tab and control", "a\tb\x01c", `a\tb?c`},
		{"cjk untouched", "你好", "你好"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeText(tt.in); got != tt.want {
				t.Errorf("SafeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafeTextTruncatesOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("字", maxLogText+5)
	got := SafeText(in)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation suffix, got %q", got)
	}
	if n := len([]rune(strings.TrimSuffix(got, "..."))); n != maxLogText {
		t.Fatalf("kept %d runes, want %d", n, maxLogText)
	}
}

func TestRedactKey(t *testing.T) {
	if got := RedactKey("short"); got != "********" {
		t.Errorf("RedactKey(short) = %q", got)
	}
	if got := RedactKey("sk-or-abcdefgh1234"); got != "sk-o...1234" {
		t.Errorf("RedactKey = %q", got)
	}
}

func TestRotate(t *testing.T) {
	name := filepath.Join(t.TempDir(), "app.log")
	big := make([]byte, maxSizeBytes+1)
	if err := os.WriteFile(name, big, 0644); err != nil {
		t.Fatal(err)
	}

	rotate(name)

	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be moved away, stat err = %v", name, err)
	}
	if _, err := os.Stat(archiveName(name, 1)); err != nil {
		t.Fatalf("expected archive .1: %v", err)
	}
}
