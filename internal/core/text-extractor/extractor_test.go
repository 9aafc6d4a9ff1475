package textextractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/quizsmith/internal/core"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestExtractText_PlainAndMarkdown(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{}})

	out, err := e.ExtractText(context.Background(), []byte("  The cat sat.\n"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "The cat sat.", out)

	out, err = e.ExtractText(context.Background(), []byte("# Title\n\nBody"), MimeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", out)
}

func TestExtractText_StripsByteOrderMark(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{}})

	out, err := e.ExtractText(context.Background(), append([]byte{0xEF, 0xBB, 0xBF}, "hello"...), MimePlain)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	utf16 := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	out, err = e.ExtractText(context.Background(), utf16, MimePlain)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestExtractText_InvalidUTF8IsReplaced(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{}})

	out, err := e.ExtractText(context.Background(), []byte{'a', 0xff, 'b'}, MimePlain)
	require.NoError(t, err)
	assert.Equal(t, "a�b", out)
}

func TestExtractText_UnsupportedMimeType(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{}})

	_, err := e.ExtractText(context.Background(), []byte("x"), "application/zip")
	require.Error(t, err)

	var unsupported *core.UnsupportedMimeTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "application/zip", unsupported.MimeType)
	assert.ErrorIs(t, err, core.ErrUnsupportedMimeType)
	assert.False(t, e.Supports("application/zip"))
	assert.True(t, e.Supports("IMAGE/PNG"))
}

func TestExtractText_ImageUsesOCR(t *testing.T) {
	ocr := &fakeOCR{text: "  recognized text \n"}
	e := New(Options{OCR: ocr})

	out, err := e.ExtractText(context.Background(), []byte{0x89, 'P', 'N', 'G'}, MimePNG)
	require.NoError(t, err)
	assert.Equal(t, "recognized text", out)
	assert.Equal(t, 1, ocr.calls)
}

func TestExtractText_OCRFailureIsExtractionError(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{err: errors.New("engine crashed")}})

	_, err := e.ExtractText(context.Background(), []byte{0xFF, 0xD8}, MimeJPEG)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtraction)
	assert.Equal(t, "extraction_error", core.Code(err))
}

func TestExtractText_CorruptDocumentsFail(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{}})

	for _, mt := range []string{MimePDF, MimeDocx} {
		_, err := e.ExtractText(context.Background(), []byte("definitely not a document"), mt)
		assert.ErrorIs(t, err, core.ErrExtraction, mt)
	}
}

func TestExtractText_CancelledContext(t *testing.T) {
	ocr := &fakeOCR{text: "x"}
	e := New(Options{OCR: ocr})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ExtractText(ctx, []byte{1}, MimePNG)
	assert.ErrorIs(t, err, core.ErrCancelled)
	assert.Zero(t, ocr.calls)
}

func TestDetectMimeType(t *testing.T) {
	pdfHeader := []byte("%PDF-1.4\n%âãÏÓ\n")

	assert.Equal(t, MimePDF, DetectMimeType(pdfHeader, ""))
	assert.Equal(t, MimePDF, DetectMimeType(pdfHeader, "application/octet-stream"))
	assert.Equal(t, MimePlain, DetectMimeType([]byte("just words"), ""))
	assert.Equal(t, "text/markdown", DetectMimeType([]byte("just words"), "text/markdown"))
}

func TestCollapseBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", collapseBlankLines("  a \n\n\n\n b"))
}

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	docxDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Hello quiz world</w:t></w:r></w:p></w:body></w:document>`
)

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText_Docx(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{}})
	data := zipArchive(t, map[string]string{
		"[Content_Types].xml": docxContentTypes,
		"word/document.xml":   docxDocument,
	})

	out, err := e.ExtractText(context.Background(), data, MimeDocx)
	require.NoError(t, err)
	assert.Equal(t, "Hello quiz world", out)
}

func TestExtractText_DocxWithoutContentTypes(t *testing.T) {
	e := New(Options{OCR: &fakeOCR{}})
	data := zipArchive(t, map[string]string{"word/document.xml": docxDocument})

	var err error
	require.NotPanics(t, func() {
		_, err = e.ExtractText(context.Background(), data, MimeDocx)
	})
	assert.ErrorIs(t, err, core.ErrExtraction)
	assert.Equal(t, "extraction_error", core.Code(err))
}

func TestExtractText_PDF(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "hello.pdf"))
	require.NoError(t, err)
	e := New(Options{OCR: &fakeOCR{}})

	out, err := e.ExtractText(context.Background(), data, MimePDF)
	require.NoError(t, err)
	assert.Equal(t, "Hello quiz world", out)
	assert.Equal(t, MimePDF, DetectMimeType(data, ""))
}

type panickyOCR struct{}

func (panickyOCR) Recognize(context.Context, []byte) (string, error) { panic("bad image header") }

func TestExtractText_StrategyPanicIsExtractionError(t *testing.T) {
	e := New(Options{OCR: panickyOCR{}})

	var err error
	require.NotPanics(t, func() {
		_, err = e.ExtractText(context.Background(), []byte{0x89, 'P', 'N', 'G'}, MimePNG)
	})
	assert.ErrorIs(t, err, core.ErrExtraction)
	assert.ErrorContains(t, err, "bad image header")
}
