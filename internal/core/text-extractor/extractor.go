package textextractor

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/markdave123-py/quizsmith/internal/core"
)

// MIME types with a registered strategy.
const (
	MimePlain    = "text/plain"
	MimeMarkdown = "text/markdown"
	MimeDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePDF      = "application/pdf"
	MimePNG      = "image/png"
	MimeJPEG     = "image/jpeg"
)

type strategy func(ctx context.Context, data []byte) (string, error)

// Options configures the extractor. Languages and TessdataPrefix are passed
// to the OCR engine; OCR overrides the build-default engine.
type Options struct {
	Languages      []string
	TessdataPrefix string
	OCR            OCREngine
}

// Extractor dispatches on MIME type to a type-specific strategy.
type Extractor struct {
	strategies map[string]strategy
	ocr        OCREngine
}

var _ core.DocumentExtractor = (*Extractor)(nil)

// New builds an extractor with the plain text, DOCX, PDF and OCR strategies.
func New(opts Options) *Extractor {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	ocr := opts.OCR
	if ocr == nil {
		ocr = newDefaultOCR(opts.Languages, opts.TessdataPrefix)
	}
	e := &Extractor{ocr: ocr}
	e.strategies = map[string]strategy{
		MimePlain:    extractPlain,
		MimeMarkdown: extractPlain,
		MimeDocx:     extractDocx,
		MimePDF:      extractPDF,
		MimePNG:      e.extractImage,
		MimeJPEG:     e.extractImage,
	}
	return e
}

// Supports reports whether mimeType has a registered strategy.
func (e *Extractor) Supports(mimeType string) bool {
	_, ok := e.strategies[NormalizeMimeType(mimeType)]
	return ok
}

// ExtractText converts data to plain text using the strategy registered for mimeType.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	fn, ok := e.strategies[NormalizeMimeType(mimeType)]
	if !ok {
		return "", &core.UnsupportedMimeTypeError{MimeType: mimeType}
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrCancelled, err)
	}

	text, err := run(ctx, fn, data)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", core.ErrCancelled, err)
		}
		return "", &core.ExtractionError{Err: err}
	}
	return strings.TrimSpace(text), nil
}

// run calls fn and turns a parser panic into an error. Strategies may run on
// errgroup goroutines where an unrecovered panic ends the process.
func run(ctx context.Context, fn strategy, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return fn(ctx, data)
}

// NormalizeMimeType lower-cases the type and strips parameters such as charset.
func NormalizeMimeType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(mimeType)
}

// DetectMimeType returns declared unless it is empty or generic, in which
// case the type is sniffed from the content.
func DetectMimeType(data []byte, declared string) string {
	switch NormalizeMimeType(declared) {
	case "", "application/octet-stream", "binary/octet-stream":
		return NormalizeMimeType(mimetype.Detect(data).String())
	}
	return declared
}
