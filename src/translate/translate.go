package translate

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"screen-translate/src/logutil"
)

const requestTimeout = 20 * time.Second

var langCodePattern = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z]{2,4})?$`)

// TranslationError reports a network fault, a malformed response or an
// unsupported target language.
type TranslationError struct {
	Backend    string
	TargetLang string
	Err        error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate to %q via %s: %v", e.TargetLang, e.Backend, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// Backend performs one translation request. The source language is always
// auto-detected.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Translator validates input and delegates to a Backend. It makes exactly
// one backend call per non-empty text and never retries.
type Translator struct {
	backend Backend
}

func New(b Backend) *Translator {
	return &Translator{backend: b}
}

// Translate returns text translated into targetLang. Blank text returns ""
// without contacting the backend.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if !langCodePattern.MatchString(targetLang) {
		return "", &TranslationError{Backend: t.backend.Name(), TargetLang: targetLang, Err: fmt.Errorf("unsupported target language code")}
	}

	start := time.Now()
	out, err := t.backend.Translate(ctx, text, targetLang)
	if err != nil {
		if _, ok := err.(*TranslationError); ok {
			return "", err
		}
		return "", &TranslationError{Backend: t.backend.Name(), TargetLang: targetLang, Err: err}
	}
	log.Printf("translate: %s -> %s in %v: %q", t.backend.Name(), targetLang, time.Since(start), logutil.SafeText(out))
	return out, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
