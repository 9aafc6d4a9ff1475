//go:build !ocr

package textextractor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// tesseractCLI pipes the image through the tesseract binary. It is the
// default engine when the binary is built without the ocr tag (no cgo).
type tesseractCLI struct {
	binary         string
	languages      []string
	tessdataPrefix string
}

func newDefaultOCR(languages []string, tessdataPrefix string) OCREngine {
	return &tesseractCLI{binary: "tesseract", languages: languages, tessdataPrefix: tessdataPrefix}
}

func (t *tesseractCLI) Recognize(ctx context.Context, image []byte) (string, error) {
	path, err := exec.LookPath(t.binary)
	if err != nil {
		return "", fmt.Errorf("tesseract not available: %w", err)
	}

	args := []string{"stdin", "stdout", "-l", strings.Join(t.languages, "+")}
	if t.tessdataPrefix != "" {
		args = append(args, "--tessdata-dir", t.tessdataPrefix)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
