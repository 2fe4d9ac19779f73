package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"

	"screen-translate/src/logutil"
)

// Languages is the fixed tesseract language set: simplified Chinese plus Latin script.
const Languages = "chi_sim+eng"

// RecognitionError reports an unusable engine path or an engine fault.
type RecognitionError struct {
	BinaryPath string
	Err        error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognize with %s: %v", e.BinaryPath, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// Engine extracts text from an image. binaryPath locates the tesseract
// installation; it is passed on every call.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error)
}

// Recognizer wraps an Engine, normalizing its output and errors.
type Recognizer struct {
	engine Engine
}

// New returns a Recognizer for the named engine ("exec" or "gosseract").
// Unknown or unavailable engines fall back to the exec engine.
func New(name string) *Recognizer {
	if name == "gosseract" {
		if e := newGosseractEngine(); e != nil {
			return &Recognizer{engine: e}
		}
		log.Printf("ocr: gosseract engine not compiled in, using tesseract executable")
	}
	return &Recognizer{engine: ExecEngine{}}
}

// NewWithEngine returns a Recognizer using a custom engine.
func NewWithEngine(e Engine) *Recognizer {
	return &Recognizer{engine: e}
}

// Recognize returns the text found in img. An image without text yields "".
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error) {
	if img == nil {
		return "", &RecognitionError{BinaryPath: binaryPath, Err: fmt.Errorf("no image")}
	}
	text, err := r.engine.Recognize(ctx, img, binaryPath)
	if err != nil {
		if _, ok := err.(*RecognitionError); ok {
			return "", err
		}
		return "", &RecognitionError{BinaryPath: binaryPath, Err: err}
	}
	text = strings.TrimSpace(text)
	log.Printf("ocr: recognized %d chars: %q", len(text), logutil.SafeText(text))
	return text, nil
}
