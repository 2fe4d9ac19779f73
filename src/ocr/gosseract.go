//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sync"

	"github.com/otiai10/gosseract"

	"screen-translate/src/screenshot"
)

// gosseractEngine talks to libtesseract in-process. The library wants a
// tessdata prefix rather than an executable, so the prefix derived from the
// binary path is memoized here and never leaves the adapter.
type gosseractEngine struct {
	mu         sync.Mutex
	lastPath   string
	lastPrefix string
}

func newGosseractEngine() Engine { return &gosseractEngine{} }

func (e *gosseractEngine) prefixFor(binaryPath string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if binaryPath != e.lastPath {
		e.lastPath = binaryPath
		e.lastPrefix = filepath.Join(filepath.Dir(binaryPath), "tessdata")
		log.Printf("ocr: gosseract tessdata prefix set to %s", e.lastPrefix)
	}
	return e.lastPrefix
}

func (e *gosseractEngine) Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error) {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	if err := configure(client, e.prefixFor(binaryPath), data); err != nil {
		_ = client.Close()
		return "", err
	}

	type result struct {
		text string
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		defer client.Close()
		text, err := client.Text()
		resCh <- result{text, err}
	}()

	select {
	case r := <-resCh:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func configure(client *gosseract.Client, prefix string, data []byte) error {
	if err := client.SetTessdataPrefix(prefix); err != nil {
		return fmt.Errorf("set tessdata prefix: %w", err)
	}
	if err := client.SetLanguage("chi_sim", "eng"); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}
