package core

import "context"

// DocumentExtractor defines the interface for extracting text from various document types.
type DocumentExtractor interface {
	// ExtractText returns the plain text of data. The mimeType selects the parsing strategy.
	// Unknown types fail with *UnsupportedMimeTypeError, engine failures with *ExtractionError.
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}
