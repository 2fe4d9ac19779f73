package ocr

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeTesseract writes a shell script standing in for the tesseract binary.
func fakeTesseract(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tesseract script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testImage() image.Image { return image.NewRGBA(image.Rect(0, 0, 8, 8)) }

func TestExecEngineRecognize(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeTesseract(t, `echo "$@" > `+argsFile+`
cat > /dev/null
printf '  你好\n\n'`)

	r := New("exec")
	text, err := r.Recognize(context.Background(), testImage(), bin)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "你好" {
		t.Fatalf("Recognize = %q, want %q", text, "你好")
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(args)); got != "stdin stdout -l chi_sim+eng" {
		t.Fatalf("tesseract invoked with %q", got)
	}
}

func TestExecEngineBlankImage(t *testing.T) {
	bin := fakeTesseract(t, `cat > /dev/null
printf '\n \n'`)

	text, err := New("exec").Recognize(context.Background(), testImage(), bin)
	if err != nil {
		t.Fatalf("blank output must not be an error: %v", err)
	}
	if text != "" {
		t.Fatalf("Recognize = %q, want empty", text)
	}
}

func TestExecEngineFailures(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"empty path", func(*testing.T) string { return "" }},
		{"missing binary", func(*testing.T) string { return filepath.Join(dir, "nope") }},
		{"directory", func(*testing.T) string { return dir }},
		{"engine fault", func(t *testing.T) string {
			return fakeTesseract(t, `echo "Error opening data file chi_sim.traineddata" >&2
exit 1`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("exec").Recognize(context.Background(), testImage(), tt.path(t))
			var recErr *RecognitionError
			if !errors.As(err, &recErr) {
				t.Fatalf("expected *RecognitionError, got %v", err)
			}
		})
	}
}

func TestExecEngineHonorsDeadline(t *testing.T) {
	bin := fakeTesseract(t, `exec sleep 5`)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New("exec").Recognize(ctx, testImage(), bin)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("Recognize did not stop at the deadline")
	}
}

type stubEngine struct {
	text  string
	err   error
	paths []string
}

func (s *stubEngine) Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error) {
	s.paths = append(s.paths, binaryPath)
	return s.text, s.err
}

func TestRecognizerPassesPathEachCall(t *testing.T) {
	stub := &stubEngine{text: "abc"}
	r := NewWithEngine(stub)

	for _, p := range []string{"/a/tesseract", "/b/tesseract"} {
		if _, err := r.Recognize(context.Background(), testImage(), p); err != nil {
			t.Fatal(err)
		}
	}
	if len(stub.paths) != 2 || stub.paths[0] != "/a/tesseract" || stub.paths[1] != "/b/tesseract" {
		t.Fatalf("engine saw paths %v", stub.paths)
	}
}

func TestRecognizerWrapsEngineErrors(t *testing.T) {
	r := NewWithEngine(&stubEngine{err: errors.New("boom")})
	_, err := r.Recognize(context.Background(), testImage(), "/x")
	var recErr *RecognitionError
	if !errors.As(err, &recErr) || recErr.BinaryPath != "/x" {
		t.Fatalf("expected *RecognitionError for /x, got %v", err)
	}
}

func TestRecognizerNilImage(t *testing.T) {
	_, err := NewWithEngine(&stubEngine{}).Recognize(context.Background(), nil, "/x")
	var recErr *RecognitionError
	if !errors.As(err, &recErr) {
		t.Fatalf("expected *RecognitionError, got %v", err)
	}
}
