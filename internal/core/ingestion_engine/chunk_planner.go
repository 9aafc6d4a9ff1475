package ingestion_engine

import (
	"fmt"
	"strings"

	"github.com/markdave123-py/quizsmith/internal/core"
	"github.com/markdave123-py/quizsmith/internal/core/prompts"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// DefaultBatchCap applies to every subject/format without an override.
const DefaultBatchCap = 10

// MaxBatches bounds the number of generative calls one plan may produce.
const MaxBatches = 1000

// CapPolicy is the declared table of questions allowed per generative call.
type CapPolicy struct {
	Default   int
	Overrides map[string]int // keyed by canonical "subject|format"
}

// DefaultCapPolicy caps English grammar and idiom formats at 5 and everything else at 10.
func DefaultCapPolicy() CapPolicy {
	return CapPolicy{
		Default: DefaultBatchCap,
		Overrides: map[string]int{
			capKey(prompts.SubjectEnglish, prompts.FormatFourChoiceGrammar): 5,
			capKey(prompts.SubjectEnglish, prompts.FormatFourChoiceIdiom):   5,
		},
	}
}

// CapFor returns the per-call cap for subject and format, accepting aliases.
func (c CapPolicy) CapFor(subject, format string) int {
	if n, ok := c.Overrides[capKey(prompts.CanonicalSubject(subject), prompts.CanonicalFormat(format))]; ok && n > 0 {
		return n
	}
	if c.Default > 0 {
		return c.Default
	}
	return DefaultBatchCap
}

func capKey(subject, format string) string { return subject + "|" + format }

// Plan splits requestedCount into ceil(requestedCount/capPerRequest) batches.
// The whitespace tokens of sourceText are divided into contiguous slices of
// ceil(tokens/batches) tokens; trailing slices are empty when there are
// fewer tokens than batches. Batch i asks for min(cap, requestedCount-i*cap)
// questions, so the counts always sum to requestedCount.
func Plan(requestedCount, capPerRequest int, sourceText string) ([]models.Batch, error) {
	if requestedCount <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidCount, requestedCount)
	}
	if capPerRequest <= 0 {
		return nil, fmt.Errorf("batch cap must be positive, got %d", capPerRequest)
	}

	n := (requestedCount-1)/capPerRequest + 1
	if n > MaxBatches {
		return nil, fmt.Errorf("%w: %d questions need %d batches, limit is %d", core.ErrInvalidCount, requestedCount, n, MaxBatches)
	}
	tokens := strings.Fields(sourceText)
	chunkSize := (len(tokens) + n - 1) / n

	batches := make([]models.Batch, 0, n)
	for i := 0; i < n; i++ {
		lo := min(i*chunkSize, len(tokens))
		hi := min((i+1)*chunkSize, len(tokens))
		batches = append(batches, models.Batch{
			SequenceIndex:     i,
			TextSlice:         strings.Join(tokens[lo:hi], " "),
			CountForThisBatch: min(capPerRequest, requestedCount-i*capPerRequest),
		})
	}
	return batches, nil
}
