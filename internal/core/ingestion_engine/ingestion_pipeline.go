package ingestion_engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/markdave123-py/quizsmith/internal/core"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// Run executes Received → Validated → Extracting → Planning → Generating →
// Aggregating → Completed. Any error moves the request to Errored.
func (p *QuizPipeline) Run(ctx context.Context, in Input) (*models.PipelineResult, error) {
	log := p.logger.With(slog.String("request_id", in.RequestID))
	p.enter(log, StageReceived, slog.Int("files", len(in.Files)))

	req, err := validate(in, p.cfg.MaxQuestions)
	if err != nil {
		return nil, p.fail(log, StageReceived, err)
	}
	p.enter(log, StageValidated,
		slog.String("subject", req.Subject),
		slog.String("format", req.Format),
		slog.Int("count", req.RequestedCount))

	p.enter(log, StageExtracting, slog.Int("workers", p.cfg.ExtractWorkers), slog.Bool("fail_fast", p.cfg.FailFast))
	ext, err := p.extractAll(ctx, log, in.Files)
	if err != nil {
		return nil, p.fail(log, StageExtracting, err)
	}
	req.SourceText = strings.Join(ext.texts, "\n")

	batchCap := p.cfg.Caps.CapFor(req.Subject, req.Format)
	p.enter(log, StagePlanning, slog.Int("cap", batchCap), slog.Int("source_chars", len(req.SourceText)))
	batches, err := Plan(req.RequestedCount, batchCap, req.SourceText)
	if err != nil {
		return nil, p.fail(log, StagePlanning, err)
	}

	result := &models.PipelineResult{
		Records:      []models.QuestionRecord{},
		Format:       req.Format,
		FileFailures: ext.failures,
	}
	if err := p.generate(ctx, log, req, batches, in.AllowPartial, result); err != nil {
		return nil, p.fail(log, StageGenerating, err)
	}

	p.enter(log, StageAggregating,
		slog.Int("records", len(result.Records)),
		slog.Int("dropped", len(result.Dropped)),
		slog.Int("failed_files", len(result.FileFailures)),
		slog.Int("failed_batches", len(result.BatchFailures)))
	p.enter(log, StageCompleted, slog.Bool("partial", result.Partial))
	return result, nil
}

// generate calls the provider once per batch in sequence order. Provider
// failures are recorded per batch unless fail-fast is set. Cancellation
// stops further calls.
func (p *QuizPipeline) generate(ctx context.Context, log *slog.Logger, req models.GenerationRequest, batches []models.Batch, allowPartial bool, result *models.PipelineResult) error {
	var firstErr error
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return p.cancelled(log, err, allowPartial, result)
		}

		p.enter(log, StageGenerating,
			slog.Int("batch", b.SequenceIndex),
			slog.Int("of", len(batches)),
			slog.Int("count", b.CountForThisBatch))
		if strings.TrimSpace(b.TextSlice) == "" {
			log.Warn("batch has empty source text", slog.Int("batch", b.SequenceIndex), slog.Int("count", b.CountForThisBatch))
		}

		prompt, err := p.prompts.Build(req.Subject, req.Format, b.CountForThisBatch, b.TextSlice)
		if err != nil {
			return fmt.Errorf("build prompt for batch %d: %w", b.SequenceIndex, err)
		}

		reply, err := p.llm.Generate(ctx, p.cfg.SystemPrompt, prompt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return p.cancelled(log, ctxErr, allowPartial, result)
			}
			perr := &core.ProviderError{Batch: b.SequenceIndex, Err: err}
			log.Error("batch generation failed",
				slog.Int("batch", b.SequenceIndex),
				slog.String("code", core.Code(perr)),
				slog.Any("err", err))
			if p.cfg.FailFast {
				return perr
			}
			if firstErr == nil {
				firstErr = perr
			}
			result.BatchFailures = append(result.BatchFailures, models.BatchFailure{
				SequenceIndex: b.SequenceIndex,
				Code:          core.Code(perr),
				Message:       err.Error(),
			})
			continue
		}

		parsed := p.parser.ParseReply(b.SequenceIndex, reply)
		result.Records = append(result.Records, parsed.Records...)
		result.Dropped = append(result.Dropped, parsed.Diagnostics...)
		log.Debug("batch parsed",
			slog.Int("batch", b.SequenceIndex),
			slog.Int("records", len(parsed.Records)),
			slog.Int("dropped", len(parsed.Diagnostics)))
	}

	if len(result.BatchFailures) == len(batches) {
		return firstErr
	}
	return nil
}

func (p *QuizPipeline) cancelled(log *slog.Logger, cause error, allowPartial bool, result *models.PipelineResult) error {
	if allowPartial {
		log.Warn("request cancelled, returning partial result", slog.Int("records", len(result.Records)))
		result.Partial = true
		return nil
	}
	return fmt.Errorf("%w: %w", core.ErrCancelled, cause)
}

// validate checks the Received → Validated transition.
func validate(in Input, maxQuestions int) (models.GenerationRequest, error) {
	var missing []string
	if strings.TrimSpace(in.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(in.Format) == "" {
		missing = append(missing, "format")
	}
	if strings.TrimSpace(in.NumQuestions) == "" {
		missing = append(missing, "numQuestions")
	}
	if len(in.Files) == 0 {
		missing = append(missing, "files")
	}
	if len(missing) > 0 {
		return models.GenerationRequest{}, &core.FieldError{Fields: missing}
	}

	count, err := strconv.Atoi(strings.TrimSpace(in.NumQuestions))
	if err != nil || count <= 0 {
		return models.GenerationRequest{}, fmt.Errorf("%w: %q", core.ErrInvalidCount, in.NumQuestions)
	}
	if count > maxQuestions {
		return models.GenerationRequest{}, fmt.Errorf("%w: %d exceeds the limit of %d", core.ErrInvalidCount, count, maxQuestions)
	}
	return models.GenerationRequest{
		Subject:        strings.TrimSpace(in.Subject),
		Format:         strings.TrimSpace(in.Format),
		RequestedCount: count,
	}, nil
}

func (p *QuizPipeline) enter(log *slog.Logger, stage Stage, attrs ...any) {
	log.Info("pipeline stage", append([]any{slog.String("stage", string(stage))}, attrs...)...)
}

func (p *QuizPipeline) fail(log *slog.Logger, from Stage, err error) error {
	level := slog.LevelError
	if core.HTTPStatus(err) < 500 {
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, "pipeline stage",
		slog.String("stage", string(StageErrored)),
		slog.String("from", string(from)),
		slog.String("code", core.Code(err)),
		slog.Any("err", err))
	return err
}
