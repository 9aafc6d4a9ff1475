package ingestion_engine

import (
	"context"
	"log/slog"

	"github.com/markdave123-py/quizsmith/internal/core"
	"github.com/markdave123-py/quizsmith/internal/core/replyparser"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// Ingestor runs one quiz request end to end.
type Ingestor interface {
	Run(ctx context.Context, in Input) (*models.PipelineResult, error)
}

var _ Ingestor = (*QuizPipeline)(nil)

// NewQuizPipeline wires the pipeline. Zero-valued config fields fall back
// to one extraction worker, DefaultMaxQuestions and the default cap policy.
func NewQuizPipeline(extractor core.DocumentExtractor, llm core.LLMProvider, prompts core.PromptBuilder, cfg IngestConfig, logger *slog.Logger) *QuizPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ExtractWorkers < 1 {
		cfg.ExtractWorkers = 1
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultMaxQuestions
	}
	if cfg.Caps.Default == 0 && cfg.Caps.Overrides == nil {
		cfg.Caps = DefaultCapPolicy()
	}
	return &QuizPipeline{
		extractor: extractor,
		llm:       llm,
		prompts:   prompts,
		parser:    replyparser.New(logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// Config returns the effective configuration.
func (p *QuizPipeline) Config() IngestConfig { return p.cfg }
