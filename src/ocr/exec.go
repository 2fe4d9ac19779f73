package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"
	"time"

	"screen-translate/src/screenshot"
)

// ExecEngine runs the tesseract executable, streaming a PNG on stdin and
// reading text from stdout.
type ExecEngine struct{}

func (ExecEngine) Recognize(ctx context.Context, img image.Image, binaryPath string) (string, error) {
	if strings.TrimSpace(binaryPath) == "" {
		return "", &RecognitionError{BinaryPath: binaryPath, Err: fmt.Errorf("tesseract path is empty")}
	}
	st, err := os.Stat(binaryPath)
	if err != nil {
		return "", &RecognitionError{BinaryPath: binaryPath, Err: fmt.Errorf("tesseract not found: %w", err)}
	}
	if st.IsDir() {
		return "", &RecognitionError{BinaryPath: binaryPath, Err: fmt.Errorf("tesseract path is a directory")}
	}

	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", &RecognitionError{BinaryPath: binaryPath, Err: err}
	}

	cmd := exec.CommandContext(ctx, binaryPath, "stdin", "stdout", "-l", Languages)
	cmd.WaitDelay = time.Second
	hideWindow(cmd)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", &RecognitionError{BinaryPath: binaryPath, Err: fmt.Errorf("%w: %s", err, msg)}
		}
		return "", &RecognitionError{BinaryPath: binaryPath, Err: err}
	}

	return stdout.String(), nil
}
