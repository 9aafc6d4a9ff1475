package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markdave123-py/quizsmith/internal/core"
	ingestion "github.com/markdave123-py/quizsmith/internal/core/ingestion_engine"
	"github.com/markdave123-py/quizsmith/internal/core/prompts"
	"github.com/markdave123-py/quizsmith/internal/core/replyparser"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// DefaultTopicQuestions is used when a topic request gives no count.
const DefaultTopicQuestions = 5

// TopicRequest asks for questions about a category with no source text.
type TopicRequest struct {
	Category          string `json:"category"`
	Difficulty        string `json:"difficulty"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
}

type QuestionService struct {
	llm          core.LLMProvider
	prompts      *prompts.Builder
	parser       *replyparser.Parser
	maxQuestions int
}

// NewQuestionService caps requests at maxQuestions, or at
// ingestion.DefaultMaxQuestions when it is not positive.
func NewQuestionService(llm core.LLMProvider, builder *prompts.Builder, maxQuestions int, logger *slog.Logger) *QuestionService {
	if maxQuestions <= 0 {
		maxQuestions = ingestion.DefaultMaxQuestions
	}
	return &QuestionService{llm: llm, prompts: builder, parser: replyparser.New(logger), maxQuestions: maxQuestions}
}

// Generate plans the count into batches like the file pipeline and calls
// the provider once per batch. Any provider failure fails the request.
func (s *QuestionService) Generate(ctx context.Context, req TopicRequest) ([]models.TopicQuestion, error) {
	count := req.NumberOfQuestions
	if count == 0 {
		count = DefaultTopicQuestions
	}
	if count > s.maxQuestions {
		return nil, fmt.Errorf("%w: %d exceeds the limit of %d", core.ErrInvalidCount, count, s.maxQuestions)
	}
	batches, err := ingestion.Plan(count, ingestion.DefaultBatchCap, "")
	if err != nil {
		return nil, err
	}

	var records []models.QuestionRecord
	for _, b := range batches {
		prompt, err := s.prompts.BuildTopic(req.Category, req.Difficulty, b.CountForThisBatch)
		if err != nil {
			return nil, err
		}
		reply, err := s.llm.Generate(ctx, s.prompts.SystemPrompt(), prompt)
		if err != nil {
			return nil, &core.ProviderError{Batch: b.SequenceIndex, Err: err}
		}
		records = append(records, s.parser.ParseReply(b.SequenceIndex, reply).Records...)
	}

	out := make([]models.TopicQuestion, len(records))
	for i, r := range records {
		out[i] = models.TopicQuestion{
			ID:      i + 1,
			Text:    r.Question,
			Options: []string{r.Answer, r.A, r.B, r.C},
			Answer:  r.Answer,
		}
	}
	return out, nil
}
