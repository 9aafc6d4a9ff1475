package ingestion_engine

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/quizsmith/internal/core"
	"github.com/markdave123-py/quizsmith/internal/core/prompts"
	textextractor "github.com/markdave123-py/quizsmith/internal/core/text-extractor"
	"github.com/markdave123-py/quizsmith/internal/models"
)

type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	reply   func(call int, prompt string) (string, error)
}

func (f *fakeLLM) Generate(_ context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	call := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(call, prompt)
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func questionsJSON(prefix string, n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question":"%s-%d","answer":"r","a":"w1","b":"w2","c":"w3"}`, prefix, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

// countingReply answers every prompt with as many records as it asks for.
func countingReply(call int, prompt string) (string, error) {
	for n := 10; n >= 1; n-- {
		if strings.Contains(prompt, fmt.Sprintf("Please create %d ", n)) {
			return questionsJSON(fmt.Sprintf("b%d", call), n), nil
		}
	}
	return "[]", nil
}

type noOCR struct{}

func (noOCR) Recognize(context.Context, []byte) (string, error) { return "", errors.New("no ocr") }

func newTestPipeline(t *testing.T, llm core.LLMProvider, cfg IngestConfig) *QuizPipeline {
	t.Helper()
	builder, err := prompts.NewBuilder()
	require.NoError(t, err)
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	logger := slog.New(slog.DiscardHandler)
	return NewQuizPipeline(textextractor.New(textextractor.Options{OCR: noOCR{}}), llm, builder, cfg, logger)
}

func textFile(name, body string) FileSource {
	return NewBytesSource(name, "text/plain", []byte(body))
}

func TestRun_VocabularySingleBatch(t *testing.T) {
	llm := &fakeLLM{reply: func(int, string) (string, error) { return questionsJSON("v", 6), nil }}
	p := newTestPipeline(t, llm, IngestConfig{})

	res, err := p.Run(context.Background(), Input{
		Subject:      "English",
		Format:       "four-choice (vocabulary)",
		NumQuestions: "6",
		Files:        []FileSource{textFile("words.txt", "abundant scarce meticulous")},
	})
	require.NoError(t, err)

	require.Equal(t, 1, llm.calls())
	assert.Contains(t, llm.prompts[0], "vocabulary item")
	assert.Contains(t, llm.prompts[0], "abundant scarce meticulous")
	assert.Len(t, res.Records, 6)
	assert.Equal(t, "four-choice (vocabulary)", res.Format)
	assert.False(t, res.HasFailures())
}

func TestRun_GrammarBatches(t *testing.T) {
	llm := &fakeLLM{reply: countingReply}
	p := newTestPipeline(t, llm, IngestConfig{})

	res, err := p.Run(context.Background(), Input{
		Subject:      "英語",
		Format:       "四択（文法）",
		NumQuestions: "12",
		Files:        []FileSource{textFile("g.txt", "one two three four five six")},
	})
	require.NoError(t, err)

	require.Equal(t, 3, llm.calls())
	assert.Contains(t, llm.prompts[0], "Please create 5 ")
	assert.Contains(t, llm.prompts[1], "Please create 5 ")
	assert.Contains(t, llm.prompts[2], "Please create 2 ")
	assert.Contains(t, llm.prompts[0], "grammatical feature")
	require.Len(t, res.Records, 12)
	assert.Equal(t, "b0-0", res.Records[0].Question)
	assert.Equal(t, "b2-1", res.Records[11].Question)
}

func TestRun_UnsupportedMimeTypeSkipsGeneration(t *testing.T) {
	llm := &fakeLLM{reply: countingReply}
	p := newTestPipeline(t, llm, IngestConfig{})

	_, err := p.Run(context.Background(), Input{
		Subject:      "English",
		Format:       "four-choice",
		NumQuestions: "3",
		Files:        []FileSource{NewBytesSource("a.zip", "application/zip", []byte("PK\x03\x04"))},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedMimeType)
	assert.Equal(t, 400, core.HTTPStatus(err))
	assert.Zero(t, llm.calls())
}

func TestRun_FileFailurePolicy(t *testing.T) {
	files := func() []FileSource {
		return []FileSource{
			textFile("good.txt", "alpha beta"),
			NewBytesSource("bad.zip", "application/zip", []byte("PK")),
			textFile("also-good.txt", "gamma"),
		}
	}

	t.Run("resilient", func(t *testing.T) {
		llm := &fakeLLM{reply: countingReply}
		p := newTestPipeline(t, llm, IngestConfig{ExtractWorkers: 3})

		res, err := p.Run(context.Background(), Input{Subject: "Math", Format: "four-choice", NumQuestions: "2", Files: files()})
		require.NoError(t, err)

		require.Len(t, res.FileFailures, 1)
		assert.Equal(t, 1, res.FileFailures[0].Index)
		assert.Equal(t, "bad.zip", res.FileFailures[0].Name)
		assert.Equal(t, "unsupported_mime_type", res.FileFailures[0].Code)
		assert.Contains(t, llm.prompts[0], "alpha beta gamma")
		assert.Len(t, res.Records, 2)
	})

	t.Run("fail fast", func(t *testing.T) {
		llm := &fakeLLM{reply: countingReply}
		p := newTestPipeline(t, llm, IngestConfig{FailFast: true, ExtractWorkers: 3})

		_, err := p.Run(context.Background(), Input{Subject: "Math", Format: "four-choice", NumQuestions: "2", Files: files()})
		assert.ErrorIs(t, err, core.ErrUnsupportedMimeType)
		assert.Zero(t, llm.calls())
	})
}

func TestRun_AllFilesFailReturnsFirstError(t *testing.T) {
	llm := &fakeLLM{reply: countingReply}
	p := newTestPipeline(t, llm, IngestConfig{ExtractWorkers: 2})

	_, err := p.Run(context.Background(), Input{
		Subject:      "Math",
		Format:       "four-choice",
		NumQuestions: "2",
		Files: []FileSource{
			NewBytesSource("broken.pdf", "application/pdf", []byte("not a pdf")),
			NewBytesSource("x.zip", "application/zip", []byte("PK")),
		},
	})

	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "broken.pdf", extErr.File)
	assert.Equal(t, 500, core.HTTPStatus(err))
	assert.Zero(t, llm.calls())
}

type slowExtractor struct{}

func (slowExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	// Earlier files finish last.
	switch string(data) {
	case "first":
		time.Sleep(30 * time.Millisecond)
	case "second":
		time.Sleep(15 * time.Millisecond)
	}
	return string(data), nil
}

func TestRun_ConcurrentExtractionKeepsUploadOrder(t *testing.T) {
	llm := &fakeLLM{reply: countingReply}
	builder, err := prompts.NewBuilder()
	require.NoError(t, err)
	p := NewQuizPipeline(slowExtractor{}, llm, builder, IngestConfig{ExtractWorkers: 3, TempDir: t.TempDir()}, slog.New(slog.DiscardHandler))

	_, err = p.Run(context.Background(), Input{
		Subject:      "Math",
		Format:       "free input",
		NumQuestions: "1",
		Files:        []FileSource{textFile("1", "first"), textFile("2", "second"), textFile("3", "third")},
	})
	require.NoError(t, err)
	assert.Contains(t, llm.prompts[0], "first second third")
}

func TestRun_ProviderFailurePolicy(t *testing.T) {
	failSecond := func(call int, prompt string) (string, error) {
		if call == 1 {
			return "", errors.New("upstream 503")
		}
		return countingReply(call, prompt)
	}
	in := Input{
		Subject:      "English",
		Format:       "four-choice (grammar)",
		NumQuestions: "12",
		Files:        []FileSource{textFile("g.txt", "some grammar text")},
	}

	t.Run("resilient", func(t *testing.T) {
		llm := &fakeLLM{reply: failSecond}
		res, err := newTestPipeline(t, llm, IngestConfig{}).Run(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, 3, llm.calls())
		assert.Len(t, res.Records, 7)
		require.Len(t, res.BatchFailures, 1)
		assert.Equal(t, 1, res.BatchFailures[0].SequenceIndex)
		assert.Equal(t, "provider_error", res.BatchFailures[0].Code)
	})

	t.Run("fail fast", func(t *testing.T) {
		llm := &fakeLLM{reply: failSecond}
		_, err := newTestPipeline(t, llm, IngestConfig{FailFast: true}).Run(context.Background(), in)

		var perr *core.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 1, perr.Batch)
		assert.Equal(t, 2, llm.calls())
	})
}

func TestRun_AllBatchesFail(t *testing.T) {
	llm := &fakeLLM{reply: func(int, string) (string, error) {
		return "", fmt.Errorf("quota: %w", core.ErrRateLimited)
	}}

	_, err := newTestPipeline(t, llm, IngestConfig{}).Run(context.Background(), Input{
		Subject: "Math", Format: "four-choice", NumQuestions: "15",
		Files: []FileSource{textFile("m.txt", "numbers")},
	})

	assert.ErrorIs(t, err, core.ErrProvider)
	assert.Equal(t, "rate_limited", core.Code(err))
	assert.Equal(t, 2, llm.calls())
}

func TestRun_Cancellation(t *testing.T) {
	in := Input{
		Subject:      "English",
		Format:       "four-choice (grammar)",
		NumQuestions: "15",
		Files:        []FileSource{textFile("g.txt", "a b c d e f")},
	}

	run := func(t *testing.T, allowPartial bool) (*fakeLLM, *models.PipelineResult, error) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		llm := &fakeLLM{reply: func(call int, prompt string) (string, error) {
			if call == 0 {
				cancel()
			}
			return countingReply(call, prompt)
		}}
		in := in
		in.AllowPartial = allowPartial
		res, err := newTestPipeline(t, llm, IngestConfig{}).Run(ctx, in)
		return llm, res, err
	}

	t.Run("without partial results", func(t *testing.T) {
		llm, _, err := run(t, false)
		assert.ErrorIs(t, err, core.ErrCancelled)
		assert.Equal(t, 408, core.HTTPStatus(err))
		assert.Equal(t, 1, llm.calls())
	})

	t.Run("with partial results", func(t *testing.T) {
		llm, res, err := run(t, true)
		require.NoError(t, err)
		assert.True(t, res.Partial)
		assert.Len(t, res.Records, 5)
		assert.Equal(t, 1, llm.calls())
	})
}

func TestRun_EmptySliceStillRequestsCount(t *testing.T) {
	llm := &fakeLLM{reply: countingReply}
	res, err := newTestPipeline(t, llm, IngestConfig{}).Run(context.Background(), Input{
		Subject: "Math", Format: "four-choice", NumQuestions: "20",
		Files: []FileSource{textFile("one.txt", "single")},
	})
	require.NoError(t, err)

	require.Equal(t, 2, llm.calls())
	assert.Contains(t, llm.prompts[1], "Please create 10 ")
	assert.Len(t, res.Records, 20)
}

func TestRun_Validation(t *testing.T) {
	llm := &fakeLLM{reply: countingReply}
	p := newTestPipeline(t, llm, IngestConfig{})
	files := []FileSource{textFile("a.txt", "x")}

	_, err := p.Run(context.Background(), Input{Format: "four-choice", Files: files})
	var fieldErr *core.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, []string{"subject", "numQuestions"}, fieldErr.Fields)
	assert.Equal(t, 400, core.HTTPStatus(err))

	_, err = p.Run(context.Background(), Input{Subject: "Math", Format: "four-choice", NumQuestions: "3"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, []string{"files"}, fieldErr.Fields)

	for _, n := range []string{"0", "-2", "abc", "1.5", "201", "9223372036854775807", "99999999999999999999"} {
		_, err = p.Run(context.Background(), Input{Subject: "Math", Format: "four-choice", NumQuestions: n, Files: files})
		assert.ErrorIs(t, err, core.ErrInvalidCount, n)
		assert.Equal(t, 400, core.HTTPStatus(err), n)
	}
	assert.Zero(t, llm.calls())
}

func TestRun_MaxQuestionsConfigurable(t *testing.T) {
	llm := &fakeLLM{reply: countingReply}
	p := newTestPipeline(t, llm, IngestConfig{MaxQuestions: 4})
	files := []FileSource{textFile("a.txt", "x")}

	_, err := p.Run(context.Background(), Input{Subject: "Math", Format: "four-choice", NumQuestions: "5", Files: files})
	assert.ErrorIs(t, err, core.ErrInvalidCount)
	assert.Zero(t, llm.calls())

	res, err := p.Run(context.Background(), Input{Subject: "Math", Format: "four-choice", NumQuestions: "4", Files: files})
	require.NoError(t, err)
	assert.Len(t, res.Records, 4)
}

func TestRun_ReleasesTempFiles(t *testing.T) {
	root := t.TempDir()
	llm := &fakeLLM{reply: countingReply}
	p := newTestPipeline(t, llm, IngestConfig{TempDir: root})

	_, err := p.Run(context.Background(), Input{
		Subject: "Math", Format: "four-choice", NumQuestions: "1",
		Files: []FileSource{textFile("a.txt", "x"), NewBytesSource("b.zip", "application/zip", []byte("PK"))},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_CorruptDocxIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	llm := &fakeLLM{reply: countingReply}
	p := newTestPipeline(t, llm, IngestConfig{ExtractWorkers: 2})

	res, err := p.Run(context.Background(), Input{
		Subject:      "Math",
		Format:       "four-choice",
		NumQuestions: "2",
		Files: []FileSource{
			textFile("good.txt", "alpha beta"),
			NewBytesSource("broken.docx", textextractor.MimeDocx, buf.Bytes()),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.FileFailures, 1)
	assert.Equal(t, "broken.docx", res.FileFailures[0].Name)
	assert.Equal(t, "extraction_error", res.FileFailures[0].Code)
	assert.Len(t, res.Records, 2)
}
