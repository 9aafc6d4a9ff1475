package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markdave123-py/quizsmith/internal/core"
	ingestion "github.com/markdave123-py/quizsmith/internal/core/ingestion_engine"
	"github.com/markdave123-py/quizsmith/internal/core/prompts"
	textextractor "github.com/markdave123-py/quizsmith/internal/core/text-extractor"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// DocumentService answers a free-form instruction about one uploaded file.
type DocumentService struct {
	extractor core.DocumentExtractor
	llm       core.LLMProvider
	prompts   *prompts.Builder
	tempDir   string
}

func NewDocumentService(extractor core.DocumentExtractor, llm core.LLMProvider, builder *prompts.Builder, tempDir string) *DocumentService {
	return &DocumentService{extractor: extractor, llm: llm, prompts: builder, tempDir: tempDir}
}

// Chat stages the file in temp storage, extracts its text and returns the
// model's answer. The temp file is removed on every path.
func (s *DocumentService) Chat(ctx context.Context, file *models.UploadedFile) (string, error) {
	if file == nil || len(file.Bytes) == 0 {
		return "", &core.FieldError{Fields: []string{"file"}}
	}

	store, err := ingestion.NewTempStore(s.tempDir)
	if err != nil {
		return "", err
	}
	defer store.Close()

	tmp, err := store.Acquire(file)
	if err != nil {
		return "", err
	}
	defer tmp.Release()

	data, err := tmp.ReadAll()
	if err != nil {
		return "", err
	}
	text, err := s.extractor.ExtractText(ctx, data, textextractor.DetectMimeType(data, file.MimeType))
	if err != nil {
		return "", err
	}

	prompt, err := s.prompts.BuildChat(text)
	if err != nil {
		return "", err
	}
	slog.Debug("chat with file", slog.String("name", file.Name), slog.Int("chars", len(text)))

	answer, err := s.llm.Generate(ctx, prompts.ChatSystemPrompt, prompt)
	if err != nil {
		return "", &core.ProviderError{Batch: 0, Err: fmt.Errorf("chat: %w", err)}
	}
	return answer, nil
}
