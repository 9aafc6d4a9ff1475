package core

import "context"

// LLMProvider completes a prompt. Implementations must return errors that
// unwrap to ErrProvider, and additionally to ErrRateLimited on quota errors.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// PromptBuilder renders the instruction for one generation batch.
type PromptBuilder interface {
	Build(subject, format string, count int, text string) (string, error)
}
