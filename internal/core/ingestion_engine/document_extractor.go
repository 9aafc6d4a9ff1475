package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/quizsmith/internal/core"
	textextractor "github.com/markdave123-py/quizsmith/internal/core/text-extractor"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// extraction is the index-tagged output of the extraction stage.
type extraction struct {
	texts    []string // successful texts in upload order
	failures []models.FileFailure
}

// extractAll extracts every source with at most cfg.ExtractWorkers in
// flight. Results are merged back in upload order. In fail-fast mode the
// first failure (by upload index) aborts the stage; otherwise failed files
// are reported and skipped, and the stage only fails when no file succeeded.
func (p *QuizPipeline) extractAll(ctx context.Context, log *slog.Logger, sources []FileSource) (*extraction, error) {
	store, err := NewTempStore(p.cfg.TempDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("temp dir cleanup failed", slog.String("dir", store.Dir()), slog.Any("err", err))
		}
	}()

	texts := make([]string, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ExtractWorkers)
	for i, src := range sources {
		g.Go(func() error {
			text, err := p.extractOne(gctx, store, src)
			if err != nil {
				errs[i] = err
				log.Error("file extraction failed",
					slog.Int("file", i),
					slog.String("name", src.Name()),
					slog.String("code", core.Code(err)),
					slog.Any("err", err))
				if p.cfg.FailFast {
					return err
				}
				return nil
			}
			texts[i] = text
			log.Debug("file extracted", slog.Int("file", i), slog.String("name", src.Name()), slog.Int("chars", len(text)))
			return nil
		})
	}
	waitErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCancelled, err)
	}
	if waitErr != nil {
		return nil, firstFileError(errs, waitErr)
	}

	out := &extraction{}
	var first error
	for i, err := range errs {
		if err == nil {
			out.texts = append(out.texts, texts[i])
			continue
		}
		if first == nil {
			first = err
		}
		out.failures = append(out.failures, models.FileFailure{
			Index:   i,
			Name:    sources[i].Name(),
			Code:    core.Code(err),
			Message: err.Error(),
		})
	}
	if len(out.texts) == 0 && first != nil {
		return nil, first
	}
	return out, nil
}

// firstFileError prefers the lowest-index failure that is not a sibling
// cancelled by the errgroup.
func firstFileError(errs []error, fallback error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, core.ErrCancelled) {
			return err
		}
	}
	return fallback
}

// extractOne loads a source into scoped temp storage, extracts it and
// releases the temp file on every path.
func (p *QuizPipeline) extractOne(ctx context.Context, store *TempStore, src FileSource) (string, error) {
	file, err := src.Load(ctx)
	if err != nil {
		return "", classifyFileError(src.Name(), err)
	}
	if file.Name == "" {
		file.Name = src.Name()
	}

	tmp, err := store.Acquire(file)
	if err != nil {
		return "", &core.ExtractionError{File: file.Name, Err: err}
	}
	defer tmp.Release()

	data, err := tmp.ReadAll()
	if err != nil {
		return "", &core.ExtractionError{File: file.Name, Err: err}
	}

	text, err := p.extractor.ExtractText(ctx, data, textextractor.DetectMimeType(data, file.MimeType))
	if err != nil {
		return "", classifyFileError(file.Name, err)
	}
	return text, nil
}

// classifyFileError keeps typed pipeline errors and wraps anything else as
// an extraction failure for the named file.
func classifyFileError(name string, err error) error {
	var extErr *core.ExtractionError
	switch {
	case errors.As(err, &extErr):
		if extErr.File == "" {
			extErr.File = name
		}
		return err
	case errors.Is(err, core.ErrUnsupportedMimeType),
		errors.Is(err, core.ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &core.ExtractionError{File: name, Err: err}
	}
}
