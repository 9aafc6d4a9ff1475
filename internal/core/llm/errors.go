package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/markdave123-py/quizsmith/internal/core"
)

// classify wraps a client error so it unwraps to core.ErrProvider, and to
// core.ErrRateLimited for quota errors. Context errors pass through.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isRateLimited(err) {
		return fmt.Errorf("%s: %w: %w: %w", op, core.ErrProvider, core.ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrProvider, err)
}

func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	var aerr genai.APIError
	if errors.As(err, &aerr) && (aerr.Code == http.StatusTooManyRequests || aerr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}
	var aerrPtr *genai.APIError
	if errors.As(err, &aerrPtr) && (aerrPtr.Code == http.StatusTooManyRequests || aerrPtr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}
