package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/markdave123-py/quizsmith/internal/core"
)

var requestedCount = regexp.MustCompile(`(?i)(?:create|generate) (\d+) `)

type mockQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	A        string `json:"a"`
	B        string `json:"b"`
	C        string `json:"c"`
}

// MockLLM answers without network access. It reads the requested count from
// the prompt and returns that many placeholder questions as a JSON array.
type MockLLM struct {
	Prefix string
}

var _ core.LLMProvider = (*MockLLM)(nil)

func NewMockLLM() *MockLLM { return &MockLLM{Prefix: "MOCK"} }

func (m *MockLLM) Close() error { return nil }

func (m *MockLLM) Generate(ctx context.Context, _ string, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := 1
	if match := requestedCount.FindStringSubmatch(userPrompt); match != nil {
		if v, err := strconv.Atoi(match[1]); err == nil && v > 0 {
			n = v
		}
	}

	items := make([]mockQuestion, n)
	for i := range items {
		items[i] = mockQuestion{
			Question: fmt.Sprintf("%s question %d", m.Prefix, i+1),
			Answer:   fmt.Sprintf("%s answer %d", m.Prefix, i+1),
			A:        fmt.Sprintf("%s distractor %d-a", m.Prefix, i+1),
			B:        fmt.Sprintf("%s distractor %d-b", m.Prefix, i+1),
			C:        fmt.Sprintf("%s distractor %d-c", m.Prefix, i+1),
		}
	}
	out, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("mock: %w: %w", core.ErrProvider, err)
	}
	return string(out), nil
}
