package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors shared across the pipeline. Typed errors below unwrap to them.
var (
	ErrMissingFields       = errors.New("missing fields")
	ErrInvalidCount        = errors.New("invalid question count")
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	ErrExtraction          = errors.New("extraction failed")
	ErrProvider            = errors.New("provider error")
	ErrRateLimited         = errors.New("rate limited")
	ErrCancelled           = errors.New("cancelled")
	ErrSourceNotAllowed    = errors.New("source not allowed")
)

// FieldError lists required inputs that were absent.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *FieldError) Unwrap() error { return ErrMissingFields }

// UnsupportedMimeTypeError carries the offending type string.
type UnsupportedMimeTypeError struct {
	MimeType string
}

func (e *UnsupportedMimeTypeError) Error() string {
	return fmt.Sprintf("unsupported mime type %q", e.MimeType)
}

func (e *UnsupportedMimeTypeError) Unwrap() error { return ErrUnsupportedMimeType }

// ExtractionError wraps an engine failure for one file.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() []error { return []error{ErrExtraction, e.Err} }

// ProviderError wraps a generative API failure for one batch.
type ProviderError struct {
	Batch int
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("batch %d: %v", e.Batch, e.Err)
}

func (e *ProviderError) Unwrap() []error { return []error{ErrProvider, e.Err} }

// Code maps an error to the short code used in logs and JSON responses.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrInvalidCount):
		return "invalid_count"
	case errors.Is(err, ErrUnsupportedMimeType):
		return "unsupported_mime_type"
	case errors.Is(err, ErrSourceNotAllowed):
		return "source_not_allowed"
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrExtraction):
		return "extraction_error"
	case errors.Is(err, ErrProvider):
		return "provider_error"
	default:
		return "internal"
	}
}

// HTTPStatus maps an error to the status the API returns for it.
// Client input problems are 400, refused sources 403, cancellation 408,
// everything else 500.
func HTTPStatus(err error) int {
	switch Code(err) {
	case "missing_fields", "invalid_count", "unsupported_mime_type":
		return http.StatusBadRequest
	case "source_not_allowed":
		return http.StatusForbidden
	case "cancelled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
