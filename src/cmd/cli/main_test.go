package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-translate-cli", "-file", "a.png", "-lang", "de"},
			out:  []string{"screen-translate-cli", "--file", "a.png", "--lang", "de"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-translate-cli", "-file=a.png", "-json=true"},
			out:  []string{"screen-translate-cli", "--file=a.png", "--json=true"},
		},
		{
			name: "Leaves short and double dash flags unchanged",
			in:   []string{"screen-translate-cli", "-v", "--file", "a.png", "-filex"},
			out:  []string{"screen-translate-cli", "-v", "--file", "a.png", "-filex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--file", "shot.png", "--lang", "de", "--json", "-v", "--tesseract", "/opt/t"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.filePath != "shot.png" || opts.lang != "de" || !opts.jsonOutput || !opts.verbose || opts.tesseract != "/opt/t" {
		t.Fatalf("unexpected options %+v", *opts)
	}
}

func TestRunRequiresFile(t *testing.T) {
	if err := runWithArgs([]string{"screen-translate-cli"}); err == nil {
		t.Fatal("expected error when --file is missing")
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "ok.png")
	empty := filepath.Join(dir, "empty.png")
	text := filepath.Join(dir, "note.txt")
	os.WriteFile(valid, pngBytes(t), 0644)
	os.WriteFile(empty, nil, 0644)
	os.WriteFile(text, []byte("not an image at all"), 0644)

	if _, err := readInput(valid, nil); err != nil {
		t.Errorf("valid PNG rejected: %v", err)
	}
	if _, err := readInput("-", bytes.NewReader(pngBytes(t))); err != nil {
		t.Errorf("PNG from stdin rejected: %v", err)
	}

	for _, tc := range []struct{ name, path, want string }{
		{"missing", filepath.Join(dir, "nope.png"), "failed to read file"},
		{"empty", empty, "empty"},
		{"not png", text, "not a valid PNG"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readInput(tc.path, nil)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("readInput err = %v, want %q", err, tc.want)
			}
		})
	}

	big := append(append([]byte{}, pngMagic...), make([]byte, maxFileSize)...)
	if _, err := readInput("-", bytes.NewReader(big)); err == nil || !strings.Contains(err.Error(), "maximum size") {
		t.Errorf("oversized stdin err = %v", err)
	}
}

type fakeRecognizer struct {
	text string
	err  error
	path string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error) {
	f.path = binaryPath
	return f.text, f.err
}

type fakeTranslator struct {
	calls int
	lang  string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	f.calls++
	f.lang = targetLang
	if text == "你好" {
		return "Hello", nil
	}
	return text, nil
}

func TestTranslateImage(t *testing.T) {
	r := &fakeRecognizer{text: "你好"}
	tr := &fakeTranslator{}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	res, err := translateImage(context.Background(), r, tr, img, "/opt/tesseract", "en")
	if err != nil {
		t.Fatalf("translateImage: %v", err)
	}
	if res.Text != "你好" || res.Translation != "Hello" || res.CharCount != 2 || res.TargetLang != "en" {
		t.Fatalf("unexpected result %+v", res)
	}
	if r.path != "/opt/tesseract" || tr.lang != "en" {
		t.Fatalf("adapters got path=%q lang=%q", r.path, tr.lang)
	}
}

func TestTranslateImageBlankTextSkipsTranslator(t *testing.T) {
	tr := &fakeTranslator{}
	res, err := translateImage(context.Background(), &fakeRecognizer{}, tr, image.NewRGBA(image.Rect(0, 0, 1, 1)), "/x", "en")
	if err != nil {
		t.Fatalf("translateImage: %v", err)
	}
	if tr.calls != 0 || res.Translation != "" {
		t.Fatalf("translator called %d times, result %+v", tr.calls, res)
	}
}

func TestTranslateImageRecognitionError(t *testing.T) {
	_, err := translateImage(context.Background(), &fakeRecognizer{err: errors.New("engine fault")}, &fakeTranslator{}, image.NewRGBA(image.Rect(0, 0, 1, 1)), "/x", "en")
	if err == nil || !strings.Contains(err.Error(), "OCR failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestOutputResult(t *testing.T) {
	res := Result{Text: "你好", Translation: "Hello", TargetLang: "en", Source: "shot.png", CharCount: 2}

	var plain bytes.Buffer
	if err := outputResult(&plain, res, false); err != nil {
		t.Fatal(err)
	}
	if plain.String() != "Hello" {
		t.Fatalf("plain output = %q", plain.String())
	}

	var js bytes.Buffer
	if err := outputResult(&js, res, true); err != nil {
		t.Fatal(err)
	}
	var decoded Result
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", js.String(), err)
	}
	if decoded.Translation != "Hello" || decoded.Source != "shot.png" || decoded.CharCount != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
}
