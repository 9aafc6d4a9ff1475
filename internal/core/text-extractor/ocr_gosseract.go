//go:build ocr

package textextractor

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// gosseractEngine runs libtesseract in-process. A client is created per call
// because gosseract clients are not safe for concurrent use.
type gosseractEngine struct {
	languages      []string
	tessdataPrefix string
}

func newDefaultOCR(languages []string, tessdataPrefix string) OCREngine {
	return &gosseractEngine{languages: languages, tessdataPrefix: tessdataPrefix}
}

func (g *gosseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if g.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(g.tessdataPrefix); err != nil {
			return "", fmt.Errorf("tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(g.languages...); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	return client.Text()
}
